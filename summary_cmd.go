package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lcmapper/internal/aggregate"
	"lcmapper/internal/classify"
	"lcmapper/internal/domain"
	"lcmapper/internal/ledger"
	"lcmapper/internal/storage/sqlite"
)

func summaryCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Aggregate classifications into the drilling/production demand report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()
			if outDir != "" {
				cfg.ReportDir = outDir
			}

			entries, err := sqlite.LoadLedger(db)
			if err != nil {
				return fmt.Errorf("loading ledger: %w", err)
			}
			records, err := sqlite.AllRecords(db)
			if err != nil {
				return fmt.Errorf("loading records: %w", err)
			}

			matcher := classify.NewMatcher(ledger.Build(entries), cfg.FuzzyAllocationPct)
			byLocation := make(map[string][]domain.Classification)
			for _, rec := range records {
				for _, c := range matcher.Match(rec).Classifications {
					key := c.MappedLocation
					if key == "" {
						key = "(unknown)"
					}
					byLocation[key] = append(byLocation[key], c)
				}
			}

			agg := aggregate.New(cfg.MixedDrillingShare)
			rollups, summary := agg.Summarize(byLocation)

			path, err := WriteSummaryReport(rollups, summary, cfg.ReportDir, time.Now().In(cfg.Location))
			if err != nil {
				return fmt.Errorf("writing report: %w", err)
			}

			fmt.Printf("Drilling demand:   %.1f\n", summary.TotalDrillingDemand)
			fmt.Printf("Production demand: %.1f\n", summary.TotalProductionDemand)
			fmt.Printf("Ratio:             %.2f\n", summary.DrillingRatio)
			fmt.Printf("Locations: %d drilling, %d production, %d mixed, %d unknown\n",
				summary.DrillingLocations, summary.ProductionLocations, summary.MixedLocations, summary.UnknownLocations)
			fmt.Printf("Report written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "report output directory (default from config)")
	return cmd
}
