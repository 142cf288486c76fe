// Package ledger builds the lookup structures the record matcher runs against.
package ledger

import (
	"sort"
	"strings"

	"lcmapper/internal/domain"
	"lcmapper/internal/location"
)

// Index holds the two lookup maps built from the full cost-allocation ledger.
// Built once per processing run and read-only afterwards, so it is safe to
// share across concurrent matcher calls.
type Index struct {
	byLC       map[string][]domain.LedgerEntry
	byLocation map[string][]domain.LedgerEntry
	locKeys    []string // sorted, so fuzzy scans are deterministic
}

// Build constructs the index in one O(n) pass over the ledger.
//   - byLC only indexes entries carrying both an LC number and a department.
//   - byLocation only indexes entries whose normalized location is in the
//     known facility reference set.
func Build(entries []domain.LedgerEntry) *Index {
	idx := &Index{
		byLC:       make(map[string][]domain.LedgerEntry),
		byLocation: make(map[string][]domain.LedgerEntry),
	}
	for _, e := range entries {
		if e.LCNumber != "" && e.Department != "" {
			key := normalizeLC(e.LCNumber)
			idx.byLC[key] = append(idx.byLC[key], e)
		}
		if loc := location.Normalize(e.Location()); loc != "" && location.IsKnown(loc) {
			idx.byLocation[loc] = append(idx.byLocation[loc], e)
		}
	}
	for k := range idx.byLocation {
		idx.locKeys = append(idx.locKeys, k)
	}
	sort.Strings(idx.locKeys)
	return idx
}

// ByLC returns the ledger entries registered under an LC token.
func (idx *Index) ByLC(lc string) []domain.LedgerEntry {
	return idx.byLC[normalizeLC(lc)]
}

// ByLocation returns the ledger entries registered under a canonical location.
func (idx *Index) ByLocation(loc string) []domain.LedgerEntry {
	return idx.byLocation[loc]
}

// FuzzyLocation scans the indexed location keys for a bidirectional
// case-insensitive substring match against loc, returning the first hit.
func (idx *Index) FuzzyLocation(loc string) (string, []domain.LedgerEntry, bool) {
	if strings.TrimSpace(loc) == "" {
		return "", nil, false
	}
	lower := strings.ToLower(loc)
	for _, key := range idx.locKeys {
		keyLower := strings.ToLower(key)
		if strings.Contains(lower, keyLower) || strings.Contains(keyLower, lower) {
			return key, idx.byLocation[key], true
		}
	}
	return "", nil, false
}

// Locations returns the canonical location keys present in the index, sorted.
func (idx *Index) Locations() []string {
	keys := make([]string, len(idx.locKeys))
	copy(keys, idx.locKeys)
	return keys
}

// LCCount returns the number of distinct LC tokens indexed.
func (idx *Index) LCCount() int { return len(idx.byLC) }

func normalizeLC(lc string) string {
	return strings.ToUpper(strings.TrimSpace(lc))
}
