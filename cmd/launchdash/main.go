// Command launchdash serves the SpaceX launch records dashboard.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "launchdash",
	Short: "SpaceX launch records dashboard",
	Long: `launchdash loads a table of SpaceX launch records and serves an
interactive dashboard: a launch site dropdown, a success pie chart, a
payload range slider and a payload vs. outcome scatter chart.

Running launchdash without a subcommand starts the HTTP server.`,
	RunE:         runServe,
	SilenceUsage: true,
}

var globalFlags struct {
	config   string
	dataPath string
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVarP(&globalFlags.config, "config", "c", "", "YAML config file (overrides "+configEnvHint+")")
	rootCmd.PersistentFlags().StringVar(&globalFlags.dataPath, "data", "", "launch records CSV (overrides data_path)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(summaryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
