package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lcmapper/internal/aggregate"
	"lcmapper/internal/domain"
)

// WriteSummaryReport renders the demand rollup as Markdown into outputDir and
// returns the file path.
func WriteSummaryReport(rollups []aggregate.LocationRollup, summary domain.DrillingSummary, outputDir string, reportDate time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	filename := fmt.Sprintf("demand_summary_%s.md", reportDate.Format("20060102"))
	path := filepath.Join(outputDir, filename)
	return path, os.WriteFile(path, []byte(renderSummary(rollups, summary, reportDate)), 0644)
}

func renderSummary(rollups []aggregate.LocationRollup, summary domain.DrillingSummary, reportDate time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Drilling vs Production Demand (%s)\n\n", reportDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "- Total drilling demand: %.1f\n", summary.TotalDrillingDemand)
	fmt.Fprintf(&b, "- Total production demand: %.1f\n", summary.TotalProductionDemand)
	fmt.Fprintf(&b, "- Drilling/production ratio: %.2f\n", summary.DrillingRatio)
	fmt.Fprintf(&b, "- Locations: %d drilling / %d production / %d mixed / %d unknown\n\n",
		summary.DrillingLocations, summary.ProductionLocations, summary.MixedLocations, summary.UnknownLocations)

	b.WriteString("| Location | Records | Type | Drilling | Production |\n")
	b.WriteString("|---|---:|---|---:|---:|\n")
	for _, r := range rollups {
		fmt.Fprintf(&b, "| %s | %d | %s | %.1f | %.1f |\n",
			r.Location, r.Records, r.Dominant, r.DrillingDemand, r.ProductionDemand)
	}
	return b.String()
}
