package main

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"lcmapper/internal/config"
	"lcmapper/internal/storage/sqlite"
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lcmapper",
		Short:         "Location/LC resolution and department classification for marine logistics records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		backfillCmd(),
		classifyCmd(),
		summaryCmd(),
		serveCmd(),
		reviewCmd(),
	)
	return root
}

// setup loads config and opens the database; shared by every subcommand.
func setup() (config.Config, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}
	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("opening database %s: %w", cfg.DBPath, err)
	}
	return cfg, db, nil
}
