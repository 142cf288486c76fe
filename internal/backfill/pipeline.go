// Package backfill retroactively classifies the historical operational
// record set: backup, batched transactional writes, resumable progress.
package backfill

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lcmapper/internal/classify"
	"lcmapper/internal/domain"
	"lcmapper/internal/ledger"
	"lcmapper/internal/logging"
	"lcmapper/internal/storage/sqlite"
)

// State is where a run currently is. Failed is reachable from any step.
type State string

const (
	StateNotStarted    State = "not_started"
	StateBackingUp     State = "backing_up"
	StateLoadingLedger State = "loading_ledger"
	StateProcessing    State = "processing"
	StateVerifying     State = "verifying"
	StateDone          State = "done"
	StateFailed        State = "failed"
)

// Scheduler bounds how the pipeline walks the record set. Batches run
// sequentially; Delay throttles load on the backing store between them.
// ProgressEvery logs progress after every Nth batch (1 logs every batch).
type Scheduler struct {
	BatchSize     int
	Delay         time.Duration
	ProgressEvery int
}

// BackupFunc produces the pre-mutation snapshot and returns its path.
// Injected so tests can simulate backup failure.
type BackupFunc func() (string, error)

// Pipeline runs one backfill pass. Not safe for concurrent runs against the
// same database; single-writer deployment is assumed.
type Pipeline struct {
	db       *sql.DB
	log      *logging.Logger
	sched    Scheduler
	backup   BackupFunc
	fuzzyPct float64

	state State
}

func New(db *sql.DB, log *logging.Logger, sched Scheduler, backup BackupFunc, fuzzyPct float64) *Pipeline {
	if sched.BatchSize < 1 {
		sched.BatchSize = 1000
	}
	if sched.ProgressEvery < 1 {
		sched.ProgressEvery = 1
	}
	return &Pipeline{db: db, log: log, sched: sched, backup: backup, fuzzyPct: fuzzyPct, state: StateNotStarted}
}

// State returns the pipeline's current step.
func (p *Pipeline) State() State { return p.state }

// Summary is what a run reports back to the operator. A non-zero Remaining
// after a full run is a warning requiring follow-up, not a failure.
type Summary struct {
	RunID      string
	BackupPath string
	Total      int
	Processed  int
	Errors     int
	Remaining  int
	TierCounts map[domain.MatchTier]int
	Duration   time.Duration
}

func (s Summary) String() string {
	return fmt.Sprintf("run %s: processed=%d errors=%d remaining=%d duration=%s",
		s.RunID, s.Processed, s.Errors, s.Remaining, s.Duration.Round(time.Second))
}

// Run executes the full pass. Re-selection is "department still missing", so
// a second run over an already-classified dataset touches nothing and a
// terminated run resumes where it left off.
func (p *Pipeline) Run() (Summary, error) {
	start := time.Now()
	summary := Summary{
		RunID:      uuid.NewString(),
		TierCounts: make(map[domain.MatchTier]int),
	}

	total, err := sqlite.CountUnclassified(p.db)
	if err != nil {
		return p.fail(summary, fmt.Errorf("counting unclassified records: %w", err))
	}
	summary.Total = total
	p.log.Infof("backfill run %s: %d records need classification", summary.RunID, total)
	if total == 0 {
		p.setState(StateDone)
		summary.Duration = time.Since(start)
		return summary, nil
	}

	// Backup before any mutation. A failure here aborts the whole run.
	p.setState(StateBackingUp)
	backupPath, err := p.backup()
	if err != nil {
		return p.fail(summary, fmt.Errorf("backup failed, aborting before any mutation: %w", err))
	}
	summary.BackupPath = backupPath
	p.log.Infof("backup written to %s", backupPath)

	p.setState(StateLoadingLedger)
	entries, err := sqlite.LoadLedger(p.db)
	if err != nil {
		return p.fail(summary, fmt.Errorf("loading ledger: %w", err))
	}
	if len(entries) == 0 {
		return p.fail(summary, fmt.Errorf("ledger is empty; refusing to classify against nothing"))
	}
	idx := ledger.Build(entries)
	matcher := classify.NewMatcher(idx, p.fuzzyPct)
	p.log.Infof("ledger index built: %d entries, %d distinct LCs", len(entries), idx.LCCount())

	p.setState(StateProcessing)
	batchNum := 0
	for {
		records, err := sqlite.SelectUnclassifiedBatch(p.db, p.sched.BatchSize)
		if err != nil {
			return p.fail(summary, fmt.Errorf("selecting batch %d: %w", batchNum, err))
		}
		if len(records) == 0 {
			break
		}
		batchNum++

		attempts := make([]domain.MatchAttempt, 0, len(records))
		for i := range records {
			attempt := p.processRecord(matcher, &records[i], summary.RunID)
			if attempt.Error != "" {
				summary.Errors++
			}
			summary.TierCounts[attempt.Tier]++
			attempts = append(attempts, attempt)
		}

		// One transaction per batch. A write failure halts the run rather
		// than skipping the batch, so systemic failures surface immediately.
		if err := sqlite.WriteClassifications(p.db, records); err != nil {
			return p.fail(summary, fmt.Errorf("writing batch %d: %w", batchNum, err))
		}
		summary.Processed += len(records)

		if err := sqlite.AppendMatchAttempts(p.db, attempts); err != nil {
			p.log.Warnf("audit log append failed for batch %d: %v", batchNum, err)
		}

		if batchNum%p.sched.ProgressEvery == 0 {
			pct := float64(summary.Processed) / float64(total) * 100
			p.log.Infof("batch %d done: %d/%d (%.1f%%), errors=%d", batchNum, summary.Processed, total, pct, summary.Errors)
		}

		if p.sched.Delay > 0 {
			time.Sleep(p.sched.Delay)
		}
	}

	p.setState(StateVerifying)
	remaining, err := sqlite.CountUnclassified(p.db)
	if err != nil {
		return p.fail(summary, fmt.Errorf("verification recount: %w", err))
	}
	summary.Remaining = remaining
	if remaining > 0 {
		p.log.Warnf("%d records remain unclassified after full run", remaining)
	}

	p.setState(StateDone)
	summary.Duration = time.Since(start)
	p.log.Infof("backfill complete: %s", summary)
	return summary, nil
}

// processRecord computes derived fields, runs the matcher and writes the
// primary attribution onto the record in memory. A per-record failure is
// replaced with safe defaults so the batch continues.
func (p *Pipeline) processRecord(matcher *classify.Matcher, rec *domain.OperationalRecord, runID string) domain.MatchAttempt {
	attempt := domain.MatchAttempt{
		ID:          uuid.NewString(),
		RunID:       runID,
		RecordID:    rec.ID,
		AttemptedAt: time.Now().UTC(),
	}

	if err := deriveHours(rec); err != nil {
		p.log.Errorf("record %d: %v; writing default values", rec.ID, err)
		applyDefaults(rec)
		attempt.Tier = domain.TierFallback
		attempt.Error = err.Error()
		return attempt
	}

	outcome := matcher.Match(*rec)
	primary := outcome.Primary()
	applyClassification(rec, primary, outcome.Tier)

	// A written record must leave the "missing department" predicate, or the
	// batch loop would re-select it forever.
	if rec.Department == "" {
		p.log.Errorf("record %d: classification carried no department; writing default values", rec.ID)
		applyDefaults(rec)
		attempt.Tier = outcome.Tier
		attempt.Error = "classification carried no department"
		return attempt
	}

	attempt.Tier = outcome.Tier
	attempt.Matched = primary.Source == domain.SourceLedger
	attempt.LCNumber = primary.LCNumber
	return attempt
}

func applyClassification(rec *domain.OperationalRecord, c domain.Classification, tier domain.MatchTier) {
	rec.Department = string(c.Department)
	rec.LCNumber = c.LCNumber
	rec.LCPercentage = c.AllocationPercentage
	rec.MappedLocation = c.MappedLocation
	rec.FinalHours = rec.Hours * c.AllocationPercentage / 100

	switch tier {
	case domain.TierExactLC:
		rec.MappingStatus = domain.StatusLCMapped
		rec.DataIntegrity = domain.IntegrityValid
	default:
		rec.MappingStatus = domain.StatusLocationInferred
		rec.DataIntegrity = domain.IntegrityInferred
	}
}

func applyDefaults(rec *domain.OperationalRecord) {
	rec.Department = string(domain.DeptOperations)
	rec.LCNumber = ""
	rec.LCPercentage = 100
	rec.MappedLocation = ""
	rec.MappingStatus = domain.StatusErrorDefaults
	rec.DataIntegrity = domain.IntegrityInvalid
	rec.FinalHours = 0
}

// timestampLayouts covers the formats the upstream spreadsheets arrive in.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"01/02/2006 15:04",
	"01/02/2006 3:04 PM",
}

// deriveHours fills in Hours from the from/to timestamps when the source
// sheet left the hours column blank. A blank side skips derivation entirely;
// only non-empty unparseable text is a record-level failure.
func deriveHours(rec *domain.OperationalRecord) error {
	if rec.Kind != domain.KindVoyageEvent {
		return nil
	}
	if rec.From == "" || rec.To == "" {
		return nil
	}
	from, err := parseTimestamp(rec.From)
	if err != nil {
		return fmt.Errorf("unparseable from timestamp %q", rec.From)
	}
	to, err := parseTimestamp(rec.To)
	if err != nil {
		return fmt.Errorf("unparseable to timestamp %q", rec.To)
	}
	if rec.Hours == 0 && to.After(from) {
		rec.Hours = to.Sub(from).Hours()
	}
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no layout matched %q", s)
}

func (p *Pipeline) setState(s State) {
	p.state = s
	p.log.Infof("pipeline state: %s", s)
}

func (p *Pipeline) fail(summary Summary, err error) (Summary, error) {
	p.state = StateFailed
	p.log.Errorf("pipeline failed: %v", err)
	return summary, err
}
