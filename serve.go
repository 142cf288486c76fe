package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"lcmapper/internal/backfill"
	"lcmapper/internal/backup"
	"lcmapper/internal/domain"
	"lcmapper/internal/logging"
	"lcmapper/internal/notify"
	"lcmapper/internal/storage/sqlite"
)

// serveCmd runs the backfill on a cron schedule for deployments where new
// unclassified records trickle in continuously. The schedule is a standard
// 5-field cron expression (minute hour day-of-month month day-of-week).
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled backfill passes on the configured cron expression",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := setup()
			if err != nil {
				return err
			}
			defer db.Close()

			schedule := strings.TrimSpace(cfg.BackfillSchedule)
			if schedule == "" {
				return fmt.Errorf("backfill_schedule is not set; nothing to serve")
			}
			parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
			sched, err := parser.Parse(schedule)
			if err != nil {
				return fmt.Errorf("invalid backfill_schedule %q: %w", schedule, err)
			}

			runLog, err := logging.Open(cfg.LogPath, true)
			if err != nil {
				return err
			}
			defer runLog.Close()

			var notifier notify.Notifier = notify.Noop{}
			if cfg.SlackConfigured() {
				notifier = notify.NewSlackNotifier(cfg.SlackBotToken, cfg.SlackChannelID)
			}

			log.Printf("Scheduled backfill enabled (cron: %s)", schedule)
			for {
				now := time.Now().In(cfg.Location)
				next := sched.Next(now)
				log.Printf("Next backfill at %s (in %s)", next.Format("Mon Jan 2 15:04"), next.Sub(now).Round(time.Minute))
				time.Sleep(next.Sub(now))

				backupFn := func() (string, error) {
					return backup.Write(cfg.BackupDir, cfg.BackupPageSize, time.Now().In(cfg.Location), func(offset, limit int) ([]domain.OperationalRecord, error) {
						return sqlite.PageRecords(db, offset, limit)
					})
				}
				pipeline := backfill.New(db, runLog, backfill.Scheduler{
					BatchSize:     cfg.BatchSize,
					Delay:         time.Duration(cfg.BatchDelayMs) * time.Millisecond,
					ProgressEvery: cfg.ProgressLogEveryN,
				}, backupFn, cfg.FuzzyAllocationPct)

				summary, runErr := pipeline.Run()
				msg := "Backfill " + summary.String()
				if runErr != nil {
					// A failed scheduled run is reported and retried at the
					// next tick rather than killing the process.
					msg = fmt.Sprintf("Backfill run failed: %v", runErr)
					log.Print(msg)
				}
				if err := notifier.Notify(msg); err != nil {
					runLog.Warnf("run summary notification failed: %v", err)
				}
			}
		},
	}
}
