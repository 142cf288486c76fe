// Package location maps free-text location strings onto the canonical set of
// known offshore facilities.
package location

import "strings"

// knownFacilities is the closed reference set of offshore locations. Ordering
// does not matter; longest substring match wins at lookup time.
var knownFacilities = []string{
	"Thunder Horse PDQ",
	"Thunder Horse",
	"Mad Dog",
	"Atlantis",
	"Na Kika",
	"Argos",
	"Olympus",
	"Mars",
	"Ursa",
	"Auger",
	"Appomattox",
	"Port Fourchon",
	"Galveston",
}

// supplyBaseKeywords marks shore-side facilities that act as supply bases.
var supplyBaseKeywords = []string{
	"fourchon",
	"galveston",
	"port",
	"base",
	"dock",
	"shorebase",
}

// Normalize maps a raw location string to a canonical facility name. Matching
// is case-insensitive substring containment; when several reference names are
// substrings of the input the longest one wins. Unrecognized input comes back
// trimmed but otherwise unchanged, so the function is idempotent.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	best := ""
	for _, facility := range knownFacilities {
		if strings.Contains(lower, strings.ToLower(facility)) && len(facility) > len(best) {
			best = facility
		}
	}
	if best != "" {
		return best
	}
	return trimmed
}

// IsKnown reports whether name is exactly one of the canonical facilities.
func IsKnown(name string) bool {
	for _, facility := range knownFacilities {
		if strings.EqualFold(name, facility) {
			return true
		}
	}
	return false
}

// IsSupplyBase reports whether the raw location looks like a shore-side
// supply base rather than an offshore installation.
func IsSupplyBase(raw string) bool {
	lower := strings.ToLower(raw)
	for _, kw := range supplyBaseKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Known returns a copy of the canonical facility list.
func Known() []string {
	out := make([]string, len(knownFacilities))
	copy(out, knownFacilities)
	return out
}
