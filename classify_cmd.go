package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lcmapper/internal/classify"
	"lcmapper/internal/ledger"
	"lcmapper/internal/storage/sqlite"
)

func classifyCmd() *cobra.Command {
	var recordID int64

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Dry-run the matcher against one record and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()

			rec, err := sqlite.GetRecord(db, recordID)
			if err != nil {
				return fmt.Errorf("loading record %d: %w", recordID, err)
			}
			entries, err := sqlite.LoadLedger(db)
			if err != nil {
				return fmt.Errorf("loading ledger: %w", err)
			}
			matcher := classify.NewMatcher(ledger.Build(entries), cfg.FuzzyAllocationPct)

			outcome := matcher.Match(rec)
			fmt.Printf("record %d (%s) location=%q charge_code=%q\n", rec.ID, rec.Kind, rec.EffectiveLocation(), rec.ChargeCodeText())
			fmt.Printf("tier: %s\n", outcome.Tier)
			for i, c := range outcome.Classifications {
				fmt.Printf("  [%d] lc=%q department=%s project=%s pct=%.2f mapped=%q confidence=%s source=%s\n",
					i+1, c.LCNumber, c.Department, c.ProjectType, c.AllocationPercentage, c.MappedLocation, c.Confidence, c.Source)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&recordID, "record", 0, "record id to classify")
	_ = cmd.MarkFlagRequired("record")
	return cmd
}
