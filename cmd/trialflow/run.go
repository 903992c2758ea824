package main

import (
	"fmt"
	"os"

	"github.com/florandr/trialflow/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <experiment.yaml>",
	Short: "Run an experiment timeline",
	Long:  `Loads an experiment file and runs its trials in order, collecting responses from the terminal (or a scripted response list in headless mode).`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := cli.RunOptions{ExperimentPath: args[0]}

		opts.RunID, _ = cmd.Flags().GetString("run-id")
		opts.Headless, _ = cmd.Flags().GetBool("headless")
		opts.Responses, _ = cmd.Flags().GetStringSlice("responses")
		opts.StoreKind, _ = cmd.Flags().GetString("store")
		opts.RedisAddr, _ = cmd.Flags().GetString("redis-addr")
		opts.MetricsAddr, _ = cmd.Flags().GetString("metrics-addr")
		opts.Out, _ = cmd.Flags().GetString("out")
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.Gap, _ = cmd.Flags().GetDuration("gap")
		opts.GapSet = cmd.Flags().Changed("gap")

		if len(opts.Responses) > 0 && !opts.Headless {
			fmt.Println("Error: --responses requires --headless.")
			os.Exit(1)
		}

		if err := cli.RunExperiment(opts); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("run-id", "", "Identifier used to persist and retrieve this run's data")
	runCmd.Flags().Bool("headless", false, "Run without terminal UI (scripted or piped responses)")
	runCmd.Flags().StringSlice("responses", nil, "Scripted key presses for headless replay (in order)")
	runCmd.Flags().String("store", "", "Persistence backend: memory or redis")
	runCmd.Flags().String("redis-addr", "localhost:6379", "Redis address for --store redis")
	runCmd.Flags().Duration("gap", 0, "Default post-trial gap (overrides the experiment file)")
	runCmd.Flags().String("metrics-addr", "", "Expose Prometheus metrics on this address (e.g. :2112)")
	runCmd.Flags().StringP("out", "o", "", "Write collected trial data as JSON ('-' for stdout)")
}
