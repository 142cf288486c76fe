package classify

import (
	"strings"

	"lcmapper/internal/domain"
	"lcmapper/internal/location"
)

// Fallback infers a department from free-text fields when no ledger match
// exists. The rule order and keyword set are a fixed domain policy; matches
// must stay first-wins and any extension must be additive, never a reorder.
func Fallback(loc, parentEvent, event, remarks, portType string) domain.Department {
	normalized := location.Normalize(loc)
	locLower := strings.ToLower(normalized)
	parentLower := strings.ToLower(parentEvent)
	eventLower := strings.ToLower(event)
	remarksLower := strings.ToLower(remarks)
	portLower := strings.ToLower(strings.TrimSpace(portType))

	// Rule 1: the two flagship platforms host both drilling and production
	// crews, so the event text decides.
	if strings.Contains(locLower, "thunder horse") || strings.Contains(locLower, "mad dog") {
		if strings.Contains(parentLower, "drill") || strings.Contains(eventLower, "drill") || strings.Contains(remarksLower, "drill") {
			return domain.DeptDrilling
		}
		return domain.DeptProduction
	}

	// Rule 2: anything at a rig is drilling work.
	if portLower == "rig" || strings.Contains(locLower, "rig") {
		return domain.DeptDrilling
	}

	// Rule 3: cargo/supply movements at a shore base are logistics.
	if portLower == "base" || location.IsSupplyBase(loc) {
		if strings.Contains(parentLower, "cargo") || strings.Contains(parentLower, "supply") ||
			strings.Contains(eventLower, "cargo") || strings.Contains(eventLower, "supply") {
			return domain.DeptLogistics
		}
	}

	// Rule 4.
	if strings.Contains(parentLower, "drill") || strings.Contains(eventLower, "drill") {
		return domain.DeptDrilling
	}

	// Rule 5.
	if strings.Contains(parentLower, "production") || strings.Contains(eventLower, "production") {
		return domain.DeptProduction
	}

	// Rule 6: only the parent event counts here.
	if strings.Contains(parentLower, "cargo") || strings.Contains(parentLower, "supply") || strings.Contains(parentLower, "transport") {
		return domain.DeptLogistics
	}

	return domain.DeptOperations
}
