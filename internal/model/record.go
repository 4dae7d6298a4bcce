package model

import "github.com/shopspring/decimal"

// Currency is the denomination of the rent amount
type Currency string

const (
	CurrencyARS Currency = "ARS" // Argentine peso, the default when nothing else is found
	CurrencyUSD Currency = "USD"
)

// AdjustmentType classifies the automatic rent-adjustment scheme
type AdjustmentType string

const (
	AdjustmentNone         AdjustmentType = "NONE"
	AdjustmentIPCMonthly   AdjustmentType = "IPC_MONTHLY"
	AdjustmentIPCQuarterly AdjustmentType = "IPC_QUARTERLY"
)

// Adjustment is the rent-adjustment variant; FrequencyMonths is omitted for NONE
type Adjustment struct {
	Type            AdjustmentType `json:"type"`
	FrequencyMonths int            `json:"frequencyMonths,omitempty"`
}

// NoAdjustment returns the NONE variant
func NoAdjustment() Adjustment {
	return Adjustment{Type: AdjustmentNone}
}

// IPCMonthly returns the monthly IPC variant
func IPCMonthly() Adjustment {
	return Adjustment{Type: AdjustmentIPCMonthly, FrequencyMonths: 1}
}

// IPCQuarterly returns the quarterly IPC variant
func IPCQuarterly() Adjustment {
	return Adjustment{Type: AdjustmentIPCQuarterly, FrequencyMonths: 3}
}

// Amount is a rent figure rendered as a bare JSON number
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal value
func NewAmount(d decimal.Decimal) *Amount {
	return &Amount{Decimal: d}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	return a.Decimal.UnmarshalJSON(b)
}

// Record is the structured result of one extraction run.
// Every field except Currency and Adjustment is independently nullable and
// the eight keys are always serialized, null or not; the CRUD layer maps them
// one to one into its own contract row.
type Record struct {
	PropertyLabel *string    `json:"propertyLabel"`
	OwnerName     *string    `json:"ownerName"`
	TenantName    *string    `json:"tenantName"`
	StartDate     *Date      `json:"startDate"`
	EndDate       *Date      `json:"endDate"`
	Amount        *Amount    `json:"amount"`
	Currency      Currency   `json:"currency"`
	Adjustment    Adjustment `json:"adjustment"`
}

// NewRecord returns an empty record with the documented defaults
func NewRecord() Record {
	return Record{
		Currency:   CurrencyARS,
		Adjustment: NoAdjustment(),
	}
}

// Field names as they appear on the wire, used to key diagnostics
const (
	FieldPropertyLabel = "propertyLabel"
	FieldOwnerName     = "ownerName"
	FieldTenantName    = "tenantName"
	FieldStartDate     = "startDate"
	FieldEndDate       = "endDate"
	FieldAmount        = "amount"
	FieldCurrency      = "currency"
	FieldAdjustment    = "adjustment"
)

// Extraction wraps a Record with the diagnostics produced while building it
type Extraction struct {
	Extracted   Record            `json:"extracted"`
	TextPreview string            `json:"textPreview"`
	Sources     map[string]string `json:"sources,omitempty"`  // field -> strategy that produced it
	Warnings    []string          `json:"warnings,omitempty"` // e.g. "party_conflict"
	Confidence  *Confidence       `json:"confidence,omitempty"`
}

// Warning codes attached to an Extraction
const (
	WarningPartyConflict  = "party_conflict"
	WarningEndBeforeStart = "end_before_start"
	WarningEmptyText      = "empty_text"
)
