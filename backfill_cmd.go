package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lcmapper/internal/backfill"
	"lcmapper/internal/backup"
	"lcmapper/internal/domain"
	"lcmapper/internal/logging"
	"lcmapper/internal/notify"
	"lcmapper/internal/storage/sqlite"
)

func backfillCmd() *cobra.Command {
	var batchSize int
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Classify all historical records still missing a department",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()
			if batchSize > 0 {
				cfg.BatchSize = batchSize
			}

			pending, err := sqlite.CountUnclassified(db)
			if err != nil {
				return fmt.Errorf("counting records: %w", err)
			}
			if pending == 0 {
				fmt.Println("Nothing to do: every record already carries a department.")
				return nil
			}
			if !skipConfirm && !confirm(fmt.Sprintf("This will modify %d records. Continue? [y/N] ", pending)) {
				fmt.Println("Aborted.")
				return nil
			}

			runLog, err := logging.Open(cfg.LogPath, true)
			if err != nil {
				return err
			}
			defer runLog.Close()

			backupFn := func() (string, error) {
				return backup.Write(cfg.BackupDir, cfg.BackupPageSize, time.Now().In(cfg.Location), func(offset, limit int) ([]domain.OperationalRecord, error) {
					return sqlite.PageRecords(db, offset, limit)
				})
			}
			sched := backfill.Scheduler{
				BatchSize:     cfg.BatchSize,
				Delay:         time.Duration(cfg.BatchDelayMs) * time.Millisecond,
				ProgressEvery: cfg.ProgressLogEveryN,
			}
			pipeline := backfill.New(db, runLog, sched, backupFn, cfg.FuzzyAllocationPct)

			summary, err := pipeline.Run()
			if err != nil {
				return err
			}

			// Fallbacks and leftovers are warnings, not failures; the run
			// still exits zero.
			fmt.Printf("Backfill complete. Processed %d records (%d errors, %d remaining unclassified).\n",
				summary.Processed, summary.Errors, summary.Remaining)
			for tier, count := range summary.TierCounts {
				fmt.Printf("  %-16s %d\n", tier, count)
			}

			var notifier notify.Notifier = notify.Noop{}
			if cfg.SlackConfigured() {
				notifier = notify.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackChannelID)
			}
			if err := notifier.Notify("Backfill " + summary.String()); err != nil {
				runLog.Warnf("run summary notification failed: %v", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "records per transaction (default from config, 1000)")
	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "skip the interactive confirmation")
	return cmd
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
