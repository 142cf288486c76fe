package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lcmapper/internal/domain"
)

func TestFallbackRules(t *testing.T) {
	tests := []struct {
		name        string
		location    string
		parentEvent string
		event       string
		remarks     string
		portType    string
		want        domain.Department
	}{
		{
			name:     "flagship platform with drilling text",
			location: "Thunder Horse", parentEvent: "Drill Support", event: "Positioning", remarks: "Drilling operations",
			want: domain.DeptDrilling,
		},
		{
			name:     "flagship platform without drilling text",
			location: "Thunder Horse", parentEvent: "Production Support", event: "Maintenance", remarks: "Production platform",
			want: domain.DeptProduction,
		},
		{
			name:     "mad dog defaults to production",
			location: "Mad Dog", parentEvent: "Standby", event: "Waiting", remarks: "",
			want: domain.DeptProduction,
		},
		{
			name:     "rig port type",
			location: "Rig 123", parentEvent: "Support", event: "Transport", remarks: "Equipment transport", portType: "rig",
			want: domain.DeptDrilling,
		},
		{
			name:     "rig in location text",
			location: "drilling rig west", parentEvent: "", event: "", remarks: "",
			want: domain.DeptDrilling,
		},
		{
			name:     "supply base cargo run",
			location: "Port Fourchon", parentEvent: "Cargo Operations", event: "Loading", remarks: "Supply run", portType: "base",
			want: domain.DeptLogistics,
		},
		{
			name:     "drill keyword in event",
			location: "Offshore", parentEvent: "Support", event: "Drill pipe transfer", remarks: "",
			want: domain.DeptDrilling,
		},
		{
			name:     "production keyword in parent event",
			location: "Offshore", parentEvent: "Production assist", event: "", remarks: "",
			want: domain.DeptProduction,
		},
		{
			name:     "transport in parent event only",
			location: "Offshore", parentEvent: "Transport run", event: "", remarks: "",
			want: domain.DeptLogistics,
		},
		{
			name:     "default",
			location: "Unknown", parentEvent: "General", event: "Transport", remarks: "General operations",
			want: domain.DeptOperations,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fallback(tt.location, tt.parentEvent, tt.event, tt.remarks, tt.portType)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFallbackRuleOrderFlagshipBeforeRig(t *testing.T) {
	// A flagship platform mentioning "rig" must still resolve through rule 1.
	got := Fallback("Thunder Horse rig", "Production Support", "", "", "")
	assert.Equal(t, domain.DeptProduction, got)
}
