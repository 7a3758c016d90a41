package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Force-end call sessions that stayed active past STALE_SESSION_AFTER",
	RunE:  runSweep,
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfg, l, err := loadConfig()
	if err != nil {
		return err
	}
	defer l.Sync()

	a, err := buildApp(cmd.Context(), cfg, l)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.interpreters.SweepStale(cmd.Context())
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}
	l.Logger.Info("stale sessions swept", zap.Int("count", n), zap.Duration("older_than", cfg.StaleSessionAfter))
	return nil
}
