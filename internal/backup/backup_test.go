package backup

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lcmapper/internal/domain"
)

func pagerOver(records []domain.OperationalRecord) Pager {
	return func(offset, limit int) ([]domain.OperationalRecord, error) {
		if offset >= len(records) {
			return nil, nil
		}
		end := offset + limit
		if end > len(records) {
			end = len(records)
		}
		return records[offset:end], nil
	}
}

func TestWriteSnapshotsAllPages(t *testing.T) {
	dir := t.TempDir()
	records := []domain.OperationalRecord{
		{ID: 1, Kind: domain.KindVoyageEvent, Vessel: "A"},
		{ID: 2, Kind: domain.KindVoyageEvent, Vessel: "B"},
		{ID: 3, Kind: domain.KindManifestLine, Transporter: "C"},
	}

	now := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	path, err := Write(dir, 2, now, pagerOver(records))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if filepath.Base(path) != "records_backup_20240601_103000.json" {
		t.Fatalf("unexpected artifact name: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	var restored []domain.OperationalRecord
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}
	if len(restored) != 3 || restored[2].Transporter != "C" {
		t.Fatalf("restored records wrong: %+v", restored)
	}
}

func TestWriteEmptySet(t *testing.T) {
	path, err := Write(t.TempDir(), 10, time.Now(), pagerOver(nil))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	var restored []domain.OperationalRecord
	data, _ := os.ReadFile(path)
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("empty artifact invalid: %v", err)
	}
	if len(restored) != 0 {
		t.Fatalf("expected empty array, got %d", len(restored))
	}
}

func TestWritePagerErrorRemovesPartialFile(t *testing.T) {
	dir := t.TempDir()
	failing := func(offset, limit int) ([]domain.OperationalRecord, error) {
		return nil, errors.New("connection lost")
	}

	if _, err := Write(dir, 10, time.Now(), failing); err == nil {
		t.Fatalf("expected pager error to fail the backup")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("partial backup file left behind: %v", entries)
	}
}
