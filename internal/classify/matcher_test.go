package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lcmapper/internal/domain"
	"lcmapper/internal/ledger"
)

func testIndex() *ledger.Index {
	return ledger.Build([]domain.LedgerEntry{
		{LCNumber: "LC1001", RigLocation: "Thunder Horse", ProjectType: domain.ProjectDrilling, Department: domain.DeptDrilling, RigReference: "Thunder Horse"},
		{LCNumber: "LC2002", RigLocation: "Mad Dog", ProjectType: domain.ProjectProduction, Department: domain.DeptProduction},
		{LCNumber: "LC3003", RigLocation: "Atlantis", ProjectType: domain.ProjectCompletions, Department: domain.DeptDrilling},
		{LCNumber: "LC3004", RigLocation: "Atlantis", ProjectType: domain.ProjectProduction, Department: domain.DeptProduction},
	})
}

func newTestMatcher() *Matcher {
	return NewMatcher(testIndex(), 0)
}

func TestMatchExactLCWinsOverLocation(t *testing.T) {
	// Record carries both a valid LC and a location matching a different
	// ledger location; the LC tier must win.
	rec := domain.OperationalRecord{
		Kind:            domain.KindVoyageEvent,
		Location:        "Mad Dog",
		CostDedicatedTo: "LC1001",
	}
	out := newTestMatcher().Match(rec)

	assert.Equal(t, domain.TierExactLC, out.Tier)
	require.Len(t, out.Classifications, 1)
	c := out.Classifications[0]
	assert.Equal(t, "LC1001", c.LCNumber)
	assert.Equal(t, domain.DeptDrilling, c.Department)
	assert.Equal(t, domain.ConfidenceHigh, c.Confidence)
	assert.Equal(t, domain.SourceLedger, c.Source)
	assert.Equal(t, "Thunder Horse", c.MappedLocation, "rigReference overrides the record's own location")
	assert.True(t, c.IsSpecialCase)
	assert.Equal(t, 100.0, c.AllocationPercentage)
}

func TestMatchMultiLCSplitsAllocation(t *testing.T) {
	rec := domain.OperationalRecord{
		Kind:            domain.KindVoyageEvent,
		Location:        "somewhere",
		CostDedicatedTo: "LC1001, LC2002",
	}
	out := newTestMatcher().Match(rec)

	require.Len(t, out.Classifications, 2)
	sum := 0.0
	for _, c := range out.Classifications {
		sum += c.AllocationPercentage
		assert.Equal(t, domain.ConfidenceHigh, c.Confidence)
	}
	assert.InDelta(t, 100.0, sum, 0.01)
	assert.Equal(t, domain.DeptDrilling, out.Classifications[0].Department)
	assert.Equal(t, domain.DeptProduction, out.Classifications[1].Department)
}

func TestMatchPartialLCHitsRenormalize(t *testing.T) {
	rec := domain.OperationalRecord{
		Kind:            domain.KindVoyageEvent,
		CostDedicatedTo: "LC1001, LC9999",
	}
	out := newTestMatcher().Match(rec)

	require.Len(t, out.Classifications, 1)
	assert.Equal(t, 100.0, out.Classifications[0].AllocationPercentage)
}

func TestMatchLocationTier(t *testing.T) {
	rec := domain.OperationalRecord{
		Kind:     domain.KindVoyageEvent,
		Location: "Mad Dog spar",
	}
	out := newTestMatcher().Match(rec)

	assert.Equal(t, domain.TierLocation, out.Tier)
	require.Len(t, out.Classifications, 1)
	c := out.Classifications[0]
	assert.Equal(t, domain.ConfidenceMedium, c.Confidence)
	assert.Equal(t, 100.0, c.AllocationPercentage)
	assert.Equal(t, "Mad Dog", c.MappedLocation)
}

func TestMatchLocationTierSplitsAcrossTiedEntries(t *testing.T) {
	// Two distinct LCs share Atlantis, so a location-only record is split.
	rec := domain.OperationalRecord{
		Kind:     domain.KindVoyageEvent,
		Location: "Atlantis",
	}
	out := newTestMatcher().Match(rec)

	assert.Equal(t, domain.TierLocation, out.Tier)
	require.Len(t, out.Classifications, 1)
	assert.Equal(t, 50.0, out.Classifications[0].AllocationPercentage)
}

func TestMatchFuzzyTier(t *testing.T) {
	rec := domain.OperationalRecord{
		Kind:     domain.KindVoyageEvent,
		Location: "Horse", // substring of "Thunder Horse" only bidirectionally
	}
	out := newTestMatcher().Match(rec)

	assert.Equal(t, domain.TierFuzzy, out.Tier)
	require.Len(t, out.Classifications, 1)
	c := out.Classifications[0]
	assert.Equal(t, domain.ConfidenceLow, c.Confidence)
	assert.Equal(t, DefaultFuzzyAllocationPct, c.AllocationPercentage)
	assert.Equal(t, "Thunder Horse", c.MappedLocation)
}

func TestMatchFallbackTier(t *testing.T) {
	rec := domain.OperationalRecord{
		Kind:        domain.KindVoyageEvent,
		Location:    "some uncharted dock",
		ParentEvent: "Cargo Operations",
		Event:       "Loading",
	}
	out := newTestMatcher().Match(rec)

	assert.Equal(t, domain.TierFallback, out.Tier)
	require.Len(t, out.Classifications, 1)
	c := out.Classifications[0]
	assert.Equal(t, domain.DeptLogistics, c.Department)
	assert.Equal(t, domain.ProjectUnknown, c.ProjectType)
	assert.Equal(t, domain.SourceFallback, c.Source)
	assert.Equal(t, domain.ConfidenceLow, c.Confidence)
	assert.Equal(t, 100.0, c.AllocationPercentage)
	assert.False(t, c.IsSpecialCase)
}

func TestMatchSkipsLedgerRowsWithoutDepartment(t *testing.T) {
	// A ledger row carrying a location but no department must never produce
	// a classification, on the location tier or the fuzzy tier. Writing an
	// empty department back would leave the record eligible for re-selection.
	idx := ledger.Build([]domain.LedgerEntry{
		{LCNumber: "LC5005", RigLocation: "Mars", ProjectType: domain.ProjectProduction},
	})
	m := NewMatcher(idx, 0)

	out := m.Match(domain.OperationalRecord{Kind: domain.KindVoyageEvent, Location: "Mars"})
	assert.Equal(t, domain.TierFallback, out.Tier)
	require.Len(t, out.Classifications, 1)
	assert.Equal(t, domain.DeptOperations, out.Classifications[0].Department)

	out = m.Match(domain.OperationalRecord{Kind: domain.KindVoyageEvent, Location: "Mars TLP"})
	assert.Equal(t, domain.TierFallback, out.Tier)
	assert.NotEmpty(t, out.Classifications[0].Department)
}

func TestMatchLocationTierPrefersDepartmentCarryingRow(t *testing.T) {
	idx := ledger.Build([]domain.LedgerEntry{
		{LCNumber: "LC5005", RigLocation: "Mars", ProjectType: domain.ProjectProduction},
		{LCNumber: "LC5006", RigLocation: "Mars", ProjectType: domain.ProjectProduction, Department: domain.DeptProduction},
	})
	out := NewMatcher(idx, 0).Match(domain.OperationalRecord{Kind: domain.KindVoyageEvent, Location: "Mars"})

	assert.Equal(t, domain.TierLocation, out.Tier)
	require.Len(t, out.Classifications, 1)
	assert.Equal(t, domain.DeptProduction, out.Classifications[0].Department)
	assert.Equal(t, "LC5006", out.Classifications[0].LCNumber)
}

func TestMatchMalformedChargeCodeDegrades(t *testing.T) {
	// Garbage charge-code text never errors; it falls through to location.
	rec := domain.OperationalRecord{
		Kind:            domain.KindVoyageEvent,
		Location:        "Mad Dog",
		CostDedicatedTo: ",,;//",
	}
	out := newTestMatcher().Match(rec)
	assert.Equal(t, domain.TierLocation, out.Tier)
}

func TestMatchManifestUsesOffshoreLocationAndCostCode(t *testing.T) {
	rec := domain.OperationalRecord{
		Kind:             domain.KindManifestLine,
		OffshoreLocation: "Atlantis",
		CostCode:         "LC2002",
	}
	out := newTestMatcher().Match(rec)

	assert.Equal(t, domain.TierExactLC, out.Tier)
	assert.Equal(t, "LC2002", out.Classifications[0].LCNumber)
}
