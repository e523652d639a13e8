package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/faithogundimu/core/internal/config"
	"github.com/faithogundimu/core/internal/coordinator"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last run's dashboard summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		path := filepath.Join(cfg.Data.OutputDir, "dashboard.json")
		dashboard, err := coordinator.LoadDashboard(path)
		if err != nil {
			return fmt.Errorf("no dashboard found (run `core run` first): %w", err)
		}

		printSummary(dashboard)
		fmt.Printf("\nRun %s generated at %s\n", dashboard.RunID, dashboard.GeneratedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}
