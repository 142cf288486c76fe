// Package sqlite is the engine's record store: the cost-allocation ledger,
// the operational records being classified, and the append-only match audit.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"lcmapper/internal/domain"
)

// ErrNotFound is returned when a single-row lookup matches nothing.
var ErrNotFound = sql.ErrNoRows

func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		lc_number          TEXT DEFAULT '',
		rig_location       TEXT DEFAULT '',
		location_reference TEXT DEFAULT '',
		project_type       TEXT DEFAULT '',
		department         TEXT DEFAULT '',
		rig_reference      TEXT DEFAULT '',
		allocated_days     REAL DEFAULT 0,
		month_year         TEXT DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_ledger_lc ON ledger_entries(lc_number);

	CREATE TABLE IF NOT EXISTS operational_records (
		id                INTEGER PRIMARY KEY AUTOINCREMENT,
		kind              TEXT NOT NULL,
		vessel            TEXT DEFAULT '',
		mission_id        TEXT DEFAULT '',
		location          TEXT DEFAULT '',
		parent_event      TEXT DEFAULT '',
		event             TEXT DEFAULT '',
		remarks           TEXT DEFAULT '',
		port_type         TEXT DEFAULT '',
		cost_dedicated_to TEXT DEFAULT '',
		hours             REAL DEFAULT 0,
		start_time        TEXT DEFAULT '',
		end_time          TEXT DEFAULT '',
		transporter       TEXT DEFAULT '',
		offshore_location TEXT DEFAULT '',
		cost_code         TEXT DEFAULT '',
		department        TEXT DEFAULT '',
		lc_number         TEXT DEFAULT '',
		lc_percentage     REAL DEFAULT 0,
		mapped_location   TEXT DEFAULT '',
		mapping_status    TEXT DEFAULT '',
		data_integrity    TEXT DEFAULT '',
		final_hours       REAL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_records_department ON operational_records(department);
	CREATE INDEX IF NOT EXISTS idx_records_vessel ON operational_records(vessel);

	CREATE TABLE IF NOT EXISTS match_attempts (
		id           TEXT PRIMARY KEY,
		run_id       TEXT NOT NULL,
		record_id    INTEGER NOT NULL,
		lc_number    TEXT DEFAULT '',
		matched      INTEGER NOT NULL,
		tier         TEXT NOT NULL,
		error        TEXT DEFAULT '',
		attempted_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_attempts_run ON match_attempts(run_id);

	CREATE TABLE IF NOT EXISTS review_suggestions (
		id                   INTEGER PRIMARY KEY AUTOINCREMENT,
		record_id            INTEGER NOT NULL,
		suggested_department TEXT NOT NULL,
		confidence           REAL DEFAULT 0,
		rationale            TEXT DEFAULT '',
		model                TEXT DEFAULT '',
		created_at           DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_suggestions_record ON review_suggestions(record_id);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("bootstrapping schema: %w", err)
	}
	return db, nil
}

// ReplaceLedger reloads the cost-allocation ledger wholesale. The ledger is
// reference data reloaded per run, so the swap happens in one transaction.
func ReplaceLedger(db *sql.DB, entries []domain.LedgerEntry) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM ledger_entries`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(
		`INSERT INTO ledger_entries (lc_number, rig_location, location_reference, project_type, department, rig_reference, allocated_days, month_year)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(e.LCNumber, e.RigLocation, e.LocationReference, string(e.ProjectType), string(e.Department), e.RigReference, e.AllocatedDays, e.MonthYear); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func LoadLedger(db *sql.DB) ([]domain.LedgerEntry, error) {
	rows, err := db.Query(
		`SELECT id, lc_number, rig_location, location_reference, project_type, department, rig_reference, allocated_days, month_year
		 FROM ledger_entries ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var projectType, department string
		if err := rows.Scan(&e.ID, &e.LCNumber, &e.RigLocation, &e.LocationReference, &projectType, &department, &e.RigReference, &e.AllocatedDays, &e.MonthYear); err != nil {
			return nil, err
		}
		e.ProjectType = domain.ProjectType(projectType)
		e.Department = domain.Department(department)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

const recordColumns = `id, kind, vessel, mission_id, location, parent_event, event, remarks, port_type,
	cost_dedicated_to, hours, start_time, end_time, transporter, offshore_location, cost_code,
	department, lc_number, lc_percentage, mapped_location, mapping_status, data_integrity, final_hours`

func scanRecord(rows *sql.Rows) (domain.OperationalRecord, error) {
	var r domain.OperationalRecord
	var kind string
	err := rows.Scan(
		&r.ID, &kind, &r.Vessel, &r.MissionID, &r.Location, &r.ParentEvent, &r.Event, &r.Remarks, &r.PortType,
		&r.CostDedicatedTo, &r.Hours, &r.From, &r.To, &r.Transporter, &r.OffshoreLocation, &r.CostCode,
		&r.Department, &r.LCNumber, &r.LCPercentage, &r.MappedLocation, &r.MappingStatus, &r.DataIntegrity, &r.FinalHours,
	)
	r.Kind = domain.RecordKind(kind)
	return r, err
}

func queryRecords(db *sql.DB, query string, args ...any) ([]domain.OperationalRecord, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.OperationalRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func InsertOperationalRecords(db *sql.DB, records []domain.OperationalRecord) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO operational_records (kind, vessel, mission_id, location, parent_event, event, remarks, port_type,
			cost_dedicated_to, hours, start_time, end_time, transporter, offshore_location, cost_code,
			department, lc_number, lc_percentage, mapped_location, mapping_status, data_integrity, final_hours)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		_, err := stmt.Exec(string(r.Kind), r.Vessel, r.MissionID, r.Location, r.ParentEvent, r.Event, r.Remarks, r.PortType,
			r.CostDedicatedTo, r.Hours, r.From, r.To, r.Transporter, r.OffshoreLocation, r.CostCode,
			r.Department, r.LCNumber, r.LCPercentage, r.MappedLocation, r.MappingStatus, r.DataIntegrity, r.FinalHours)
		if err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, tx.Commit()
}

// CountUnclassified counts records still missing a department. This is the
// backfill pipeline's re-selection predicate, which is what makes repeated
// runs idempotent.
func CountUnclassified(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM operational_records WHERE department = ''`).Scan(&count)
	return count, err
}

// SelectUnclassifiedBatch returns the next batch of records missing a
// department, in stable id order.
func SelectUnclassifiedBatch(db *sql.DB, limit int) ([]domain.OperationalRecord, error) {
	return queryRecords(db,
		`SELECT `+recordColumns+` FROM operational_records WHERE department = '' ORDER BY id LIMIT ?`, limit)
}

func CountRecords(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM operational_records`).Scan(&count)
	return count, err
}

// PageRecords returns one fixed-size page of all records, for backup streaming.
func PageRecords(db *sql.DB, offset, limit int) ([]domain.OperationalRecord, error) {
	return queryRecords(db,
		`SELECT `+recordColumns+` FROM operational_records ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
}

func GetRecord(db *sql.DB, id int64) (domain.OperationalRecord, error) {
	records, err := queryRecords(db,
		`SELECT `+recordColumns+` FROM operational_records WHERE id = ?`, id)
	if err != nil {
		return domain.OperationalRecord{}, err
	}
	if len(records) == 0 {
		return domain.OperationalRecord{}, ErrNotFound
	}
	return records[0], nil
}

// AllClassified returns every record that already carries a department.
func AllClassified(db *sql.DB) ([]domain.OperationalRecord, error) {
	return queryRecords(db,
		`SELECT `+recordColumns+` FROM operational_records WHERE department != '' ORDER BY id`)
}

// AllRecords returns every operational record in id order.
func AllRecords(db *sql.DB) ([]domain.OperationalRecord, error) {
	return queryRecords(db, `SELECT `+recordColumns+` FROM operational_records ORDER BY id`)
}

// SelectFallbackClassified returns classified records that never got a ledger
// LC, the candidates for the advisory review pass.
func SelectFallbackClassified(db *sql.DB, limit int) ([]domain.OperationalRecord, error) {
	return queryRecords(db,
		`SELECT `+recordColumns+` FROM operational_records
		 WHERE department != '' AND lc_number = '' ORDER BY id LIMIT ?`, limit)
}

// WriteClassifications writes one batch's classification outputs in a single
// transaction. A failure rolls the whole batch back; no record in the batch
// is left half-written.
func WriteClassifications(db *sql.DB, records []domain.OperationalRecord) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`UPDATE operational_records
		 SET department = ?, lc_number = ?, lc_percentage = ?, mapped_location = ?, mapping_status = ?, data_integrity = ?, final_hours = ?, hours = ?
		 WHERE id = ?`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(r.Department, r.LCNumber, r.LCPercentage, r.MappedLocation, r.MappingStatus, r.DataIntegrity, r.FinalHours, r.Hours, r.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// AppendMatchAttempts records the audit trail for one batch.
func AppendMatchAttempts(db *sql.DB, attempts []domain.MatchAttempt) error {
	if len(attempts) == 0 {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO match_attempts (id, run_id, record_id, lc_number, matched, tier, error, attempted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range attempts {
		matched := 0
		if a.Matched {
			matched = 1
		}
		if _, err := stmt.Exec(a.ID, a.RunID, a.RecordID, a.LCNumber, matched, string(a.Tier), a.Error, a.AttemptedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// MatchAttemptsByRun returns the audit rows for one backfill run.
func MatchAttemptsByRun(db *sql.DB, runID string) ([]domain.MatchAttempt, error) {
	rows, err := db.Query(
		`SELECT id, run_id, record_id, lc_number, matched, tier, error, attempted_at
		 FROM match_attempts WHERE run_id = ? ORDER BY attempted_at, id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []domain.MatchAttempt
	for rows.Next() {
		var a domain.MatchAttempt
		var matched int
		var tier string
		var at time.Time
		if err := rows.Scan(&a.ID, &a.RunID, &a.RecordID, &a.LCNumber, &matched, &tier, &a.Error, &at); err != nil {
			return nil, err
		}
		a.Matched = matched != 0
		a.Tier = domain.MatchTier(tier)
		a.AttemptedAt = at
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func InsertReviewSuggestion(db *sql.DB, s domain.ReviewSuggestion) error {
	_, err := db.Exec(
		`INSERT INTO review_suggestions (record_id, suggested_department, confidence, rationale, model)
		 VALUES (?, ?, ?, ?, ?)`,
		s.RecordID, s.SuggestedDepartment, s.Confidence, s.Rationale, s.Model,
	)
	return err
}

func ReviewSuggestionsForRecord(db *sql.DB, recordID int64) ([]domain.ReviewSuggestion, error) {
	rows, err := db.Query(
		`SELECT id, record_id, suggested_department, confidence, rationale, model, created_at
		 FROM review_suggestions WHERE record_id = ? ORDER BY created_at`, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suggestions []domain.ReviewSuggestion
	for rows.Next() {
		var s domain.ReviewSuggestion
		if err := rows.Scan(&s.ID, &s.RecordID, &s.SuggestedDepartment, &s.Confidence, &s.Rationale, &s.Model, &s.CreatedAt); err != nil {
			return nil, err
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}
