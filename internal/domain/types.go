package domain

import "time"

// Department is the business unit a record's cost is attributed to.
type Department string

const (
	DeptDrilling   Department = "Drilling"
	DeptProduction Department = "Production"
	DeptLogistics  Department = "Logistics"
	DeptMixed      Department = "Mixed"
	DeptOperations Department = "Operations" // default when nothing else applies
)

// ProjectType classifies what kind of work a ledger line funds.
type ProjectType string

const (
	ProjectDrilling        ProjectType = "Drilling"
	ProjectCompletions     ProjectType = "Completions"
	ProjectProduction      ProjectType = "Production"
	ProjectMaintenance     ProjectType = "Maintenance"
	ProjectOperatorSharing ProjectType = "OperatorSharing"
	ProjectUnknown         ProjectType = "Unknown"
)

// Confidence indicates how directly a classification was derived from the ledger.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ClassificationSource distinguishes ledger-derived results from heuristic ones.
type ClassificationSource string

const (
	SourceLedger   ClassificationSource = "ledger"
	SourceFallback ClassificationSource = "fallback"
)

// Mapping status values written back onto operational records.
const (
	StatusLCMapped         = "LC Mapped"
	StatusLocationInferred = "Location Inferred"
	StatusErrorDefaults    = "Error - Default Values"
)

// Data integrity values written back onto operational records.
const (
	IntegrityValid    = "Valid"
	IntegrityInferred = "Inferred"
	IntegrityInvalid  = "Invalid"
)

// LedgerEntry is one row of the cost-allocation ledger, the authoritative
// mapping from LC numbers and locations to department/project type. Reference
// data for a processing run; the engine never mutates it.
type LedgerEntry struct {
	ID                int64
	LCNumber          string // may repeat across rows
	RigLocation       string // free text
	LocationReference string // alternate free-text location column
	ProjectType       ProjectType
	Department        Department
	RigReference      string // canonical location override, may be empty
	AllocatedDays     float64
	MonthYear         string
}

// Location returns the entry's location text, preferring rigLocation.
func (e LedgerEntry) Location() string {
	if e.RigLocation != "" {
		return e.RigLocation
	}
	return e.LocationReference
}

// RecordKind tags which upstream dataset an operational record came from.
type RecordKind string

const (
	KindVoyageEvent  RecordKind = "voyage_event"
	KindManifestLine RecordKind = "manifest_line"
)

// OperationalRecord is a single voyage event or cargo manifest line. The
// classification fields (Department onward) are empty until a processing pass
// writes them; a later re-run may overwrite them.
type OperationalRecord struct {
	ID        int64
	Kind      RecordKind
	Vessel    string
	MissionID string

	// Voyage-event fields.
	Location        string
	ParentEvent     string
	Event           string
	Remarks         string
	PortType        string
	CostDedicatedTo string
	Hours           float64
	From            string // raw timestamp text from the source sheet
	To              string

	// Manifest fields.
	Transporter      string
	OffshoreLocation string
	CostCode         string

	// Classification outputs.
	Department     string
	LCNumber       string
	LCPercentage   float64
	MappedLocation string
	MappingStatus  string
	DataIntegrity  string
	FinalHours     float64
}

// EffectiveLocation returns the location field appropriate to the record kind.
func (r OperationalRecord) EffectiveLocation() string {
	if r.Kind == KindManifestLine {
		return r.OffshoreLocation
	}
	return r.Location
}

// ChargeCodeText returns the raw charge-code field appropriate to the record kind.
func (r OperationalRecord) ChargeCodeText() string {
	if r.Kind == KindManifestLine {
		return r.CostCode
	}
	return r.CostDedicatedTo
}

// Classified reports whether a processing pass has already attributed this record.
func (r OperationalRecord) Classified() bool {
	return r.Department != ""
}

// Classification is one engine output. A record with a charge code split
// across multiple LCs yields one Classification per LC token; their
// AllocationPercentage values sum to 100 within a 0.01 tolerance.
type Classification struct {
	LCNumber             string // empty when no ledger LC matched
	Department           Department
	ProjectType          ProjectType
	AllocationPercentage float64
	MappedLocation       string
	Confidence           Confidence
	Source               ClassificationSource
	IsSpecialCase        bool // true when a ledger match was found
}

// MatchTier identifies which matching strategy produced a classification.
type MatchTier string

const (
	TierExactLC  MatchTier = "exact_lc"
	TierLocation MatchTier = "location"
	TierFuzzy    MatchTier = "fuzzy_location"
	TierFallback MatchTier = "fallback"
)

// MatchAttempt is one audit-log row: what the matcher decided for one record
// during one backfill run. Append-only; never mutated.
type MatchAttempt struct {
	ID          string
	RunID       string
	RecordID    int64
	LCNumber    string
	Matched     bool
	Tier        MatchTier
	Error       string
	AttemptedAt time.Time
}

// DrillingSummary is the fleet-wide rollup of drilling vs production demand.
// Derived on demand, never persisted as a source of truth.
type DrillingSummary struct {
	TotalDrillingDemand   float64
	TotalProductionDemand float64
	DrillingLocations     int
	ProductionLocations   int
	MixedLocations        int
	UnknownLocations      int
	DrillingRatio         float64 // 0 when production demand is 0
}

// ReviewSuggestion is an advisory department suggestion for a low-confidence
// record, produced by the optional LLM review pass. Never applied automatically.
type ReviewSuggestion struct {
	ID                  int64
	RecordID            int64
	SuggestedDepartment string
	Confidence          float64
	Rationale           string
	Model               string
	CreatedAt           time.Time
}
