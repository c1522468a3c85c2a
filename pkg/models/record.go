package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Method identifies the labeling methodology attributed to a preference record.
// It is a closed set; producers and consumers must treat any other value as invalid.
type Method string

const (
	MethodPPO   Method = "ppo"
	MethodDPO   Method = "dpo"
	MethodDPSFT Method = "dp-sft"
	MethodConst Method = "const"
	MethodGKPO  Method = "gkpo"
)

// AllMethods returns every member of the closed method set.
func AllMethods() []Method {
	return []Method{MethodPPO, MethodDPO, MethodDPSFT, MethodConst, MethodGKPO}
}

// IsValid reports whether m is a member of the closed method set.
func (m Method) IsValid() bool {
	switch m {
	case MethodPPO, MethodDPO, MethodDPSFT, MethodConst, MethodGKPO:
		return true
	default:
		return false
	}
}

// String returns the wire representation of the method.
func (m Method) String() string {
	return string(m)
}

// ParseMethod converts a wire string into a Method, rejecting unknown values.
func ParseMethod(s string) (Method, error) {
	m := Method(s)
	if !m.IsValid() {
		return "", fmt.Errorf("unknown method %q", s)
	}
	return m, nil
}

// Epsilon is a privacy budget. A positive finite value calibrates Laplace
// noise with scale 1/epsilon; positive infinity means unbounded (no noise).
// The zero value means the budget was never set.
type Epsilon float64

// EpsilonUnbounded returns the unbounded (infinite) privacy budget.
func EpsilonUnbounded() Epsilon {
	return Epsilon(math.Inf(1))
}

// IsUnbounded reports whether the budget is infinite.
func (e Epsilon) IsUnbounded() bool {
	return math.IsInf(float64(e), 1)
}

// IsSet reports whether the budget carries a usable value. Range checking
// beyond positivity is deliberately left to the noise mechanism.
func (e Epsilon) IsSet() bool {
	return float64(e) > 0
}

// Value returns the budget as a plain float64.
func (e Epsilon) Value() float64 {
	return float64(e)
}

// String renders the budget the way it appears on the wire.
func (e Epsilon) String() string {
	if e.IsUnbounded() {
		return "unbounded"
	}
	return strconv.FormatFloat(float64(e), 'g', -1, 64)
}

// ParseEpsilon converts a wire string ("unbounded" or a decimal number)
// into an Epsilon.
func ParseEpsilon(s string) (Epsilon, error) {
	if s == "unbounded" {
		return EpsilonUnbounded(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid epsilon %q: %w", s, err)
	}
	return Epsilon(v), nil
}

// MarshalJSON encodes finite budgets as numbers and the unbounded budget as
// the literal string "unbounded".
func (e Epsilon) MarshalJSON() ([]byte, error) {
	if e.IsUnbounded() {
		return json.Marshal("unbounded")
	}
	return json.Marshal(float64(e))
}

// UnmarshalJSON accepts either a number or the string "unbounded".
func (e *Epsilon) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*e = Epsilon(num)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("epsilon must be a number or \"unbounded\": %s", string(data))
	}

	parsed, err := ParseEpsilon(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// TransformedFromOriginal marks a record that was built directly rather than
// cloned from another record.
const TransformedFromOriginal = "original"

// RecordMeta carries auxiliary generation state: the noised score per
// response (same order as the response list) and the generator version tag.
type RecordMeta struct {
	Scores    []float64 `json:"scores"`
	Generator string    `json:"generator"`
}

// PreferenceRecord is a single G-Pref entity: a prompt, its candidate
// responses, the selected preferred/rejected pair, and provenance tags.
// Records are immutable once admitted to a dataset.
type PreferenceRecord struct {
	ID              string     `json:"id"`
	PromptID        string     `json:"prompt_id"`
	Prompt          string     `json:"prompt"`
	Responses       []string   `json:"responses"`
	Preferred       string     `json:"preferred"`
	Rejected        string     `json:"rejected"`
	Method          Method     `json:"method"`
	Identity        string     `json:"identity"`
	Epsilon         Epsilon    `json:"epsilon"`
	TransformedFrom string     `json:"transformed_from"`
	Meta            RecordMeta `json:"meta"`
}

// IsTransformed reports whether the record was cloned-and-retagged from
// another record rather than built directly.
func (r *PreferenceRecord) IsTransformed() bool {
	return r.TransformedFrom != TransformedFromOriginal
}
