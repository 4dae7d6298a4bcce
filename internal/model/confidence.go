package model

// Confidence is a transparent breakdown of how much to trust an extraction.
// It never changes the record itself; the CRUD layer uses it to decide how
// loudly to ask the user for confirmation.
type Confidence struct {
	Index   int      `json:"index"` // 0-100
	Level   string   `json:"level"` // "low", "medium", "high"
	Signals []Signal `json:"signals"`
}

// Signal is one diagnostic contribution to the confidence index
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies a confidence signal
type SignalType string

const (
	SignalFieldCoverage SignalType = "field_coverage" // How many fields resolved
	SignalSourceTrust   SignalType = "source_trust"   // Which strategies produced them
	SignalPartyConflict SignalType = "party_conflict" // Owner and tenant resolved equal
	SignalDateOrder     SignalType = "date_order"     // End date not after start date
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
