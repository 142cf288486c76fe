// Package backup snapshots the operational record set before the backfill
// pipeline mutates anything.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lcmapper/internal/domain"
)

// Pager supplies records one fixed-size page at a time so the snapshot never
// holds the full dataset in memory.
type Pager func(offset, limit int) ([]domain.OperationalRecord, error)

// Write streams every record into a timestamped JSON array under dir and
// returns the artifact path. Any failure deletes the partial file; the
// pipeline treats a backup failure as fatal.
func Write(dir string, pageSize int, now time.Time, page Pager) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating backup dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("records_backup_%s.json", now.Format("20060102_150405")))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating backup file: %w", err)
	}

	if err := stream(f, pageSize, page); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func stream(f *os.File, pageSize int, page Pager) error {
	enc := json.NewEncoder(f)
	if _, err := f.WriteString("[\n"); err != nil {
		return err
	}
	first := true
	for offset := 0; ; offset += pageSize {
		records, err := page(offset, pageSize)
		if err != nil {
			return fmt.Errorf("reading backup page at offset %d: %w", offset, err)
		}
		if len(records) == 0 {
			break
		}
		for _, r := range records {
			if !first {
				if _, err := f.WriteString(",\n"); err != nil {
					return err
				}
			}
			first = false
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("encoding record %d: %w", r.ID, err)
			}
		}
	}
	_, err := f.WriteString("]\n")
	return err
}
