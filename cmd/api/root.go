package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jobfair-live",
	Short: "Job fair live calls: booth queues, video sessions, interpreter availability",
	Long:  `HTTP + WebSocket API. Commands: serve, sweep, migrate.`,
	RunE:  runServe, // default: same as "jobfair-live serve"
}

var seedDemo bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&seedDemo, "seed", false, "seed a demo booth directory before starting")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(migrateCmd)
}

// Execute runs the root command and returns the error for main to log.
func Execute() error {
	return rootCmd.Execute()
}
