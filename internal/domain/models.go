package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// RecommendationCount is the fixed number of recommendation lines in every result.
const RecommendationCount = 4

// Condition is one hypothesis produced by the triage rule table.
type Condition struct {
	Name          string `json:"name"`
	ConfidencePct int    `json:"confidencePct"`
	Note          string `json:"note"`
}

// Prediction is a single classifier output: a symptom label and its probability.
type Prediction struct {
	Key         SymptomKey `json:"key"`
	Probability float64    `json:"probability"`
}

// AnalysisResult is the unit of triage output and of persistence.
// Field names in JSON are a fixed contract with the cache and display layers.
type AnalysisResult struct {
	CreatedAt              int64        `json:"createdAt"`
	SelectedKeys           []SymptomKey `json:"selectedKeys"`
	Desc                   string       `json:"desc"`
	UrgencyLevel           UrgencyLevel `json:"urgencyLevel"`
	UrgencyTitle           string       `json:"urgencyTitle"`
	UrgencySub             string       `json:"urgencySub"`
	Conditions             []Condition  `json:"conditions"`
	Recommendations        []string     `json:"recommendations"`
	SuggestedSpecialityKey SpecialtyKey `json:"suggestedSpecialityKey"`
}

// MarshalJSON always encodes selectedKeys as an array, never null.
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	type plain AnalysisResult
	out := plain(r)
	if out.SelectedKeys == nil {
		out.SelectedKeys = []SymptomKey{}
	}
	return json.Marshal(out)
}

// CreatedTime returns CreatedAt as a time.Time.
func (r *AnalysisResult) CreatedTime() time.Time {
	return time.UnixMilli(r.CreatedAt)
}

// PrimaryCondition returns the first (highest precedence) condition.
func (r *AnalysisResult) PrimaryCondition() Condition {
	if len(r.Conditions) == 0 {
		return Condition{}
	}
	return r.Conditions[0]
}

// Validate checks the structural invariants of a result.
func (r *AnalysisResult) Validate() error {
	if !r.UrgencyLevel.IsValid() {
		return NewValidationError("urgencyLevel", "unknown urgency level", r.UrgencyLevel)
	}
	if !r.SuggestedSpecialityKey.IsValid() {
		return NewValidationError("suggestedSpecialityKey", "unknown specialty", r.SuggestedSpecialityKey)
	}
	if len(r.Conditions) == 0 {
		return NewValidationError("conditions", "at least one condition is required", len(r.Conditions))
	}
	for i, c := range r.Conditions {
		if c.ConfidencePct < 0 || c.ConfidencePct > 100 {
			return NewValidationError(fmt.Sprintf("conditions[%d].confidencePct", i), "must be within 0..100", c.ConfidencePct)
		}
	}
	if len(r.Recommendations) != RecommendationCount {
		return NewValidationError("recommendations", fmt.Sprintf("exactly %d entries are required", RecommendationCount), len(r.Recommendations))
	}
	seen := make(map[SymptomKey]struct{}, len(r.SelectedKeys))
	for _, k := range r.SelectedKeys {
		if _, dup := seen[k]; dup {
			return NewValidationError("selectedKeys", "duplicate key", k)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// MarshalResult encodes a result into its flat JSON form.
func MarshalResult(r *AnalysisResult) ([]byte, error) {
	if r == nil {
		return nil, &SerializationError{Op: "encode", Err: fmt.Errorf("nil result")}
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, &SerializationError{Op: "encode", Err: err}
	}
	return data, nil
}

// UnmarshalResult decodes and validates a result. Any failure is a *SerializationError.
func UnmarshalResult(data []byte) (*AnalysisResult, error) {
	var r AnalysisResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, &SerializationError{Op: "decode", Err: err}
	}
	if r.SelectedKeys == nil {
		r.SelectedKeys = []SymptomKey{}
	}
	if err := r.Validate(); err != nil {
		return nil, &SerializationError{Op: "decode", Err: err}
	}
	return &r, nil
}

// PadRecommendations returns exactly RecommendationCount lines, blank-padded or truncated.
func PadRecommendations(recs []string) []string {
	out := make([]string, RecommendationCount)
	copy(out, recs)
	return out
}

// DedupKeys removes duplicates while keeping first-seen order.
func DedupKeys(keys []SymptomKey) []SymptomKey {
	return NewSymptomKeySet(keys...).Keys()
}
