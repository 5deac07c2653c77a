package model

// Field identifies one lifecycle milestone field.
type Field string

// Milestone fields. The four "core" fields drive confidence scoring;
// FieldIntroduced is informational.
const (
	FieldIntroduced          Field = "dateIntroduced"
	FieldEndOfSale           Field = "endOfSaleDate"
	FieldEndOfSwMaintenance  Field = "endOfSwMaintenanceDate"
	FieldEndOfSwVulnerability Field = "endOfSwVulnerabilityDate"
	FieldLastDayOfSupport    Field = "lastDayOfSupportDate"
)

// CoreFields lists the milestone fields that count toward confidence,
// in canonical order.
var CoreFields = []Field{
	FieldEndOfSale,
	FieldEndOfSwMaintenance,
	FieldEndOfSwVulnerability,
	FieldLastDayOfSupport,
}

// AllFields lists every milestone field in canonical order.
var AllFields = []Field{
	FieldIntroduced,
	FieldEndOfSale,
	FieldEndOfSwMaintenance,
	FieldEndOfSwVulnerability,
	FieldLastDayOfSupport,
}

// MilestoneValue is one resolved milestone date. Estimated is true when the
// value was derived rather than observed in source text. Copied marks the
// vendor-profile case where the value was copied verbatim from another known
// field; such values are still Estimated but score as a known convention.
type MilestoneValue struct {
	Date      Date `json:"date"`
	Estimated bool `json:"estimated"`
	Copied    bool `json:"copied,omitempty"`
}

// Milestones maps milestone fields to their resolved values. A missing key
// means the field is unknown. Never both extracted and estimated for the
// same field: a field is written at most once.
type Milestones map[Field]MilestoneValue

// Has reports whether f is populated.
func (m Milestones) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// SetIfAbsent writes v under f only when f is still unpopulated, and
// reports whether it wrote.
func (m Milestones) SetIfAbsent(f Field, v MilestoneValue) bool {
	if _, ok := m[f]; ok {
		return false
	}
	m[f] = v
	return true
}

// ExtractedCount returns how many core fields hold non-estimated values.
func (m Milestones) ExtractedCount() int {
	n := 0
	for _, f := range CoreFields {
		if v, ok := m[f]; ok && !v.Estimated {
			n++
		}
	}
	return n
}

// Clone returns an independent copy; nil stays nil.
func (m Milestones) Clone() Milestones {
	if m == nil {
		return nil
	}
	out := make(Milestones, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
