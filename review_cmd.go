package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"lcmapper/internal/domain"
	"lcmapper/internal/review"
	"lcmapper/internal/storage/sqlite"
)

func reviewCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Ask the LLM for advisory second opinions on fallback-classified records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()

			if !cfg.ReviewConfigured() {
				return fmt.Errorf("anthropic_api_key is not configured; review is disabled")
			}

			records, err := sqlite.SelectFallbackClassified(db, limit)
			if err != nil {
				return fmt.Errorf("selecting review candidates: %w", err)
			}
			if len(records) == 0 {
				fmt.Println("No fallback-classified records to review.")
				return nil
			}

			reviewer := review.NewReviewer(cfg.AnthropicAPIKey, cfg.ReviewModel)
			ctx := context.Background()

			stored := 0
			for start := 0; start < len(records); start += cfg.ReviewBatchSize {
				end := start + cfg.ReviewBatchSize
				if end > len(records) {
					end = len(records)
				}
				suggestions, err := reviewer.Review(ctx, records[start:end])
				if err != nil {
					return fmt.Errorf("review batch at %d: %w", start, err)
				}
				for _, s := range suggestions {
					err := sqlite.InsertReviewSuggestion(db, domain.ReviewSuggestion{
						RecordID:            s.ID,
						SuggestedDepartment: s.Department,
						Confidence:          s.Confidence,
						Rationale:           s.Rationale,
						Model:               reviewer.Model(),
					})
					if err != nil {
						return fmt.Errorf("storing suggestion for record %d: %w", s.ID, err)
					}
					stored++
				}
			}

			fmt.Printf("Reviewed %d records, stored %d advisory suggestions. Nothing was reclassified.\n", len(records), stored)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 200, "maximum records to review")
	return cmd
}
