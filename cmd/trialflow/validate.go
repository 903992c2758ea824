package main

import (
	"fmt"
	"os"

	"github.com/florandr/trialflow/internal/cli"
	"github.com/florandr/trialflow/pkg/schema"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <experiment.yaml>",
	Short: "Check an experiment file for consistency",
	Long:  `Parses the experiment file and verifies every trial references a known plugin and its static parameters match the plugin's schema.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.ValidateExperiment(args[0]); err != nil {
			if failures := schema.ValidationErrors(err); failures != nil {
				fmt.Printf("Validation failed: %d problem(s)\n", len(failures))
				for _, f := range failures {
					fmt.Printf("  - %v\n", f)
				}
			} else {
				fmt.Printf("Validation failed: %v\n", err)
			}
			os.Exit(1)
		}
		fmt.Println("Experiment is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
