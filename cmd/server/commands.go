package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/chama/internal/engine"
	"github.com/mmynk/chama/internal/notify"
	"github.com/mmynk/chama/internal/storage/sqlite"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		slog.Info("Database migrated", "database", cfg.DBPath)
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Mark overdue contributions late once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		eng := engine.New(store, notify.Discard{}, engine.WithLoanTermDays(cfg.LoanTermDays))
		n, err := eng.SweepLate(cmd.Context())
		if err != nil {
			return err
		}
		slog.Info("Late sweep finished", "marked_late", n)
		return nil
	},
}
