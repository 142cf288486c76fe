// Package classify resolves operational records against the cost-allocation
// ledger, falling back to rule-based inference when nothing matches.
package classify

import (
	"lcmapper/internal/chargecode"
	"lcmapper/internal/domain"
	"lcmapper/internal/ledger"
	"lcmapper/internal/location"
)

// DefaultFuzzyAllocationPct is the deliberately discounted weight given to
// fuzzy location matches. A business constant, not a derived value; see the
// config file to override.
const DefaultFuzzyAllocationPct = 30.0

// Outcome is the matcher's result for one record: the classifications plus
// which strategy tier produced them. Classifications always carry allocation
// percentages summing to 100.
type Outcome struct {
	Classifications []domain.Classification
	Tier            domain.MatchTier
}

// Primary returns the first classification, the one the backfill pipeline
// writes onto the record as its main attribution.
func (o Outcome) Primary() domain.Classification {
	if len(o.Classifications) == 0 {
		return domain.Classification{}
	}
	return o.Classifications[0]
}

// Matcher applies the matching strategies in priority order against a
// read-only ledger index. Safe for concurrent use.
type Matcher struct {
	idx      *ledger.Index
	fuzzyPct float64
}

// NewMatcher builds a matcher over idx. fuzzyPct <= 0 selects the default.
func NewMatcher(idx *ledger.Index, fuzzyPct float64) *Matcher {
	if fuzzyPct <= 0 {
		fuzzyPct = DefaultFuzzyAllocationPct
	}
	return &Matcher{idx: idx, fuzzyPct: fuzzyPct}
}

// Match classifies one operational record. Strategies run in priority order
// and the first that succeeds wins: exact LC, ledger location, fuzzy
// location, rule fallback. Malformed charge-code text never fails a record;
// it simply degrades to the later tiers.
func (m *Matcher) Match(rec domain.OperationalRecord) Outcome {
	if out, ok := m.matchByLC(rec); ok {
		return out
	}
	if out, ok := m.matchByLocation(rec); ok {
		return out
	}
	if out, ok := m.matchFuzzy(rec); ok {
		return out
	}
	return m.fallback(rec)
}

// matchByLC resolves the record's charge-code tokens against the ledger.
// When only some tokens are known to the ledger, shares are recomputed over
// the matched tokens so the percentages still sum to 100.
func (m *Matcher) matchByLC(rec domain.OperationalRecord) (Outcome, bool) {
	split := chargecode.Parse(rec.ChargeCodeText())
	if len(split.Tokens) == 0 {
		return Outcome{}, false
	}
	var matched []string
	for _, token := range split.Tokens {
		if len(m.idx.ByLC(token)) > 0 {
			matched = append(matched, token)
		}
	}
	if len(matched) == 0 {
		return Outcome{}, false
	}
	share := 100.0 / float64(len(matched))
	out := Outcome{Tier: domain.TierExactLC}
	for _, token := range matched {
		entry := m.idx.ByLC(token)[0]
		mapped := entry.RigReference
		if mapped == "" {
			mapped = rec.EffectiveLocation()
		}
		out.Classifications = append(out.Classifications, domain.Classification{
			LCNumber:             token,
			Department:           entry.Department,
			ProjectType:          entry.ProjectType,
			AllocationPercentage: share,
			MappedLocation:       mapped,
			Confidence:           domain.ConfidenceHigh,
			Source:               domain.SourceLedger,
			IsSpecialCase:        true,
		})
	}
	return out, true
}

func (m *Matcher) matchByLocation(rec domain.OperationalRecord) (Outcome, bool) {
	loc := location.Normalize(rec.EffectiveLocation())
	entries := departmentEntries(m.idx.ByLocation(loc))
	if len(entries) == 0 {
		return Outcome{}, false
	}
	pct := 100.0
	if n := distinctEntryCount(entries); n > 1 {
		pct = 100.0 / float64(n)
	}
	entry := entries[0]
	return Outcome{
		Tier: domain.TierLocation,
		Classifications: []domain.Classification{{
			LCNumber:             entry.LCNumber,
			Department:           entry.Department,
			ProjectType:          entry.ProjectType,
			AllocationPercentage: pct,
			MappedLocation:       loc,
			Confidence:           domain.ConfidenceMedium,
			Source:               domain.SourceLedger,
			IsSpecialCase:        true,
		}},
	}, true
}

func (m *Matcher) matchFuzzy(rec domain.OperationalRecord) (Outcome, bool) {
	loc := location.Normalize(rec.EffectiveLocation())
	key, entries, ok := m.idx.FuzzyLocation(loc)
	if !ok {
		return Outcome{}, false
	}
	entries = departmentEntries(entries)
	if len(entries) == 0 {
		return Outcome{}, false
	}
	entry := entries[0]
	return Outcome{
		Tier: domain.TierFuzzy,
		Classifications: []domain.Classification{{
			LCNumber:             entry.LCNumber,
			Department:           entry.Department,
			ProjectType:          entry.ProjectType,
			AllocationPercentage: m.fuzzyPct,
			MappedLocation:       key,
			Confidence:           domain.ConfidenceLow,
			Source:               domain.SourceLedger,
			IsSpecialCase:        true,
		}},
	}, true
}

func (m *Matcher) fallback(rec domain.OperationalRecord) Outcome {
	dept := Fallback(rec.EffectiveLocation(), rec.ParentEvent, rec.Event, rec.Remarks, rec.PortType)
	return Outcome{
		Tier: domain.TierFallback,
		Classifications: []domain.Classification{{
			Department:           dept,
			ProjectType:          domain.ProjectUnknown,
			AllocationPercentage: 100,
			MappedLocation:       location.Normalize(rec.EffectiveLocation()),
			Confidence:           domain.ConfidenceLow,
			Source:               domain.SourceFallback,
		}},
	}
}

// departmentEntries drops ledger rows without a department. The location
// index keeps such rows for reference, but a classification must always
// carry a department or the record would be re-selected on the next run.
func departmentEntries(entries []domain.LedgerEntry) []domain.LedgerEntry {
	var out []domain.LedgerEntry
	for _, e := range entries {
		if e.Department != "" {
			out = append(out, e)
		}
	}
	return out
}

// distinctEntryCount counts ledger rows with distinct LC numbers so repeated
// monthly rows for the same LC do not dilute the allocation.
func distinctEntryCount(entries []domain.LedgerEntry) int {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		seen[e.LCNumber] = true
	}
	return len(seen)
}
