// Package aggregate rolls classified records up into fleet-wide drilling vs
// production demand figures.
package aggregate

import (
	"sort"

	"lcmapper/internal/domain"
)

// DefaultMixedDrillingShare is the percentage of a mixed location's demand
// attributed to drilling. A declared business default, not an empirically
// derived figure; callers needing a different split override it via config.
const DefaultMixedDrillingShare = 60.0

// DominantType is a location's overall character across every project type
// seen among its matched ledger rows.
type DominantType string

const (
	DominantDrilling   DominantType = "drilling"
	DominantProduction DominantType = "production"
	DominantMixed      DominantType = "mixed"
	DominantUnknown    DominantType = "unknown"
)

// LocationRollup is the per-location aggregation result.
type LocationRollup struct {
	Location         string
	Records          int
	Dominant         DominantType
	DrillingDemand   float64
	ProductionDemand float64
}

// Aggregator computes demand summaries. mixedShare is the drilling percentage
// applied to mixed locations.
type Aggregator struct {
	mixedShare float64
}

// New returns an aggregator. mixedShare <= 0 selects the default 60/40 split.
func New(mixedShare float64) *Aggregator {
	if mixedShare <= 0 {
		mixedShare = DefaultMixedDrillingShare
	}
	return &Aggregator{mixedShare: mixedShare}
}

// Summarize produces per-location rollups (sorted by location) and the
// fleet-wide drilling summary. The unit of demand is one classification row,
// so a record whose charge code resolved to several LCs contributes one unit
// at each location it was attributed to. Demand is conserved: every unit
// lands in exactly one of the drilling or production totals.
func (a *Aggregator) Summarize(byLocation map[string][]domain.Classification) ([]LocationRollup, domain.DrillingSummary) {
	locations := make([]string, 0, len(byLocation))
	for loc := range byLocation {
		locations = append(locations, loc)
	}
	sort.Strings(locations)

	var rollups []LocationRollup
	var summary domain.DrillingSummary
	for _, loc := range locations {
		classifications := byLocation[loc]
		rollup := a.rollup(loc, classifications)
		rollups = append(rollups, rollup)

		summary.TotalDrillingDemand += rollup.DrillingDemand
		summary.TotalProductionDemand += rollup.ProductionDemand
		switch rollup.Dominant {
		case DominantDrilling:
			summary.DrillingLocations++
		case DominantProduction:
			summary.ProductionLocations++
		case DominantMixed:
			summary.MixedLocations++
		default:
			summary.UnknownLocations++
		}
	}
	if summary.TotalProductionDemand > 0 {
		summary.DrillingRatio = summary.TotalDrillingDemand / summary.TotalProductionDemand
	}
	return rollups, summary
}

func (a *Aggregator) rollup(loc string, classifications []domain.Classification) LocationRollup {
	dominant := dominantType(classifications)
	demand := float64(len(classifications))

	r := LocationRollup{Location: loc, Records: len(classifications), Dominant: dominant}
	switch dominant {
	case DominantDrilling:
		r.DrillingDemand = demand
	case DominantProduction:
		r.ProductionDemand = demand
	case DominantMixed:
		r.DrillingDemand = demand * a.mixedShare / 100
		r.ProductionDemand = demand - r.DrillingDemand
	default:
		r.DrillingDemand = demand / 2
		r.ProductionDemand = demand / 2
	}
	return r
}

// dominantType unions the project types seen among ledger-matched
// classifications for a location. Both families present means mixed, one
// family means that family, neither means unknown.
func dominantType(classifications []domain.Classification) DominantType {
	var drilling, production bool
	for _, c := range classifications {
		if c.Source != domain.SourceLedger {
			continue
		}
		switch c.ProjectType {
		case domain.ProjectDrilling, domain.ProjectCompletions:
			drilling = true
		case domain.ProjectProduction, domain.ProjectMaintenance:
			production = true
		}
	}
	switch {
	case drilling && production:
		return DominantMixed
	case drilling:
		return DominantDrilling
	case production:
		return DominantProduction
	default:
		return DominantUnknown
	}
}
