// Command aiodemo exercises the aio runtime end to end: a producer/consumer
// pipeline over a bounded queue, a timer-ordering demo, and blocking-call
// offloading through a worker pool.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "aiodemo",
	Short: "Demos for the aio cooperative runtime",
	Long:  `aiodemo runs small scenarios on an aio event loop and prints what happened.`,
}

func main() {
	rootCmd.AddCommand(pipelineCmd)
	rootCmd.AddCommand(timersCmd)
	rootCmd.AddCommand(offloadCmd)

	rootCmd.PersistentFlags().String("config", "", "path to a TOML scenario file")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	cobra.OnInitialize(func() {
		if noColor, err := rootCmd.PersistentFlags().GetBool("no-color"); err == nil && noColor {
			color.NoColor = true
		}
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
