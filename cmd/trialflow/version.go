package main

import (
	"fmt"
	"strings"

	"github.com/florandr/trialflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of trialflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trialflow version %s\n", strings.TrimSpace(trialflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
