package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lcmapper/internal/domain"
)

func ledgerClass(pt domain.ProjectType) domain.Classification {
	return domain.Classification{Source: domain.SourceLedger, ProjectType: pt}
}

func TestSummarizeSingleTypedLocations(t *testing.T) {
	byLocation := map[string][]domain.Classification{
		"Thunder Horse": {ledgerClass(domain.ProjectDrilling), ledgerClass(domain.ProjectDrilling)},
		"Mad Dog":       {ledgerClass(domain.ProjectProduction)},
	}
	rollups, summary := New(0).Summarize(byLocation)

	require.Len(t, rollups, 2)
	assert.Equal(t, 2.0, summary.TotalDrillingDemand)
	assert.Equal(t, 1.0, summary.TotalProductionDemand)
	assert.Equal(t, 1, summary.DrillingLocations)
	assert.Equal(t, 1, summary.ProductionLocations)
	assert.InDelta(t, 2.0, summary.DrillingRatio, 1e-9)
}

func TestSummarizeMixedSplit(t *testing.T) {
	byLocation := map[string][]domain.Classification{
		"Atlantis": {
			ledgerClass(domain.ProjectDrilling),
			ledgerClass(domain.ProjectProduction),
			ledgerClass(domain.ProjectCompletions),
			ledgerClass(domain.ProjectMaintenance),
			ledgerClass(domain.ProjectDrilling),
		},
	}
	rollups, summary := New(0).Summarize(byLocation)

	require.Len(t, rollups, 1)
	assert.Equal(t, DominantMixed, rollups[0].Dominant)
	// Default split is 60/40 over 5 records.
	assert.InDelta(t, 3.0, rollups[0].DrillingDemand, 1e-9)
	assert.InDelta(t, 2.0, rollups[0].ProductionDemand, 1e-9)
	assert.Equal(t, 1, summary.MixedLocations)
}

func TestSummarizeMixedSplitOverride(t *testing.T) {
	byLocation := map[string][]domain.Classification{
		"Atlantis": {
			ledgerClass(domain.ProjectDrilling),
			ledgerClass(domain.ProjectProduction),
		},
	}
	rollups, _ := New(75).Summarize(byLocation)
	assert.InDelta(t, 1.5, rollups[0].DrillingDemand, 1e-9)
	assert.InDelta(t, 0.5, rollups[0].ProductionDemand, 1e-9)
}

func TestSummarizeUnknownSplitsEvenly(t *testing.T) {
	byLocation := map[string][]domain.Classification{
		"(unknown)": {
			{Source: domain.SourceFallback, ProjectType: domain.ProjectUnknown},
			{Source: domain.SourceFallback, ProjectType: domain.ProjectUnknown},
		},
	}
	rollups, summary := New(0).Summarize(byLocation)

	assert.Equal(t, DominantUnknown, rollups[0].Dominant)
	assert.Equal(t, 1.0, rollups[0].DrillingDemand)
	assert.Equal(t, 1.0, rollups[0].ProductionDemand)
	assert.Equal(t, 1, summary.UnknownLocations)
}

func TestSummarizeRatioZeroWhenNoProduction(t *testing.T) {
	byLocation := map[string][]domain.Classification{
		"Thunder Horse": {ledgerClass(domain.ProjectDrilling)},
	}
	_, summary := New(0).Summarize(byLocation)
	assert.Equal(t, 0.0, summary.DrillingRatio)
}

// Demand conservation: drilling + production always equals the number of
// classifications fed in, whatever mix of location types is present.
func TestSummarizeConservesDemand(t *testing.T) {
	byLocation := map[string][]domain.Classification{
		"Thunder Horse": {ledgerClass(domain.ProjectDrilling), ledgerClass(domain.ProjectDrilling), ledgerClass(domain.ProjectDrilling)},
		"Mad Dog":       {ledgerClass(domain.ProjectProduction), ledgerClass(domain.ProjectProduction)},
		"Atlantis":      {ledgerClass(domain.ProjectDrilling), ledgerClass(domain.ProjectProduction), ledgerClass(domain.ProjectMaintenance)},
		"(unknown)":     {{Source: domain.SourceFallback}, {Source: domain.SourceFallback}, {Source: domain.SourceFallback}},
	}
	total := 0
	for _, cs := range byLocation {
		total += len(cs)
	}

	_, summary := New(0).Summarize(byLocation)
	assert.InDelta(t, float64(total), summary.TotalDrillingDemand+summary.TotalProductionDemand, 0.01)
}
