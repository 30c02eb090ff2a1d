// Package domain contains the core entities of the offline symptom triage engine:
// canonical symptom, urgency and specialty identifiers, the analysis result that is
// cached and displayed, and the error taxonomy shared by every layer.
//
// The engine performs heuristic triage only. None of these types carry a diagnosis.
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SymptomKey is the canonical, locale-independent identifier of a recognized symptom.
type SymptomKey string

const (
	FEVER        SymptomKey = "FEVER"
	COLD         SymptomKey = "COLD"
	COUGH        SymptomKey = "COUGH"
	SORE_THROAT  SymptomKey = "SORE_THROAT"
	HEADACHE     SymptomKey = "HEADACHE"
	STOMACH_PAIN SymptomKey = "STOMACH_PAIN"
	BODY_PAIN    SymptomKey = "BODY_PAIN"
	TIREDNESS    SymptomKey = "TIREDNESS"
)

// AllSymptomKeys lists every symptom key in display order.
var AllSymptomKeys = []SymptomKey{
	FEVER, COLD, COUGH, SORE_THROAT, HEADACHE, STOMACH_PAIN, BODY_PAIN, TIREDNESS,
}

// UrgencyLevel is the triage urgency tier of an analysis.
type UrgencyLevel string

const (
	LOW_URGENCY    UrgencyLevel = "LOW"
	MEDIUM_URGENCY UrgencyLevel = "MEDIUM"
	HIGH_URGENCY   UrgencyLevel = "HIGH"
)

// SpecialtyKey identifies the medical specialty suggested for follow-up routing.
type SpecialtyKey string

const (
	GENERAL_PHYSICIAN SpecialtyKey = "GENERAL_PHYSICIAN"
	GASTROENTEROLOGY  SpecialtyKey = "GASTROENTEROLOGY"
)

// Validation errors for enum boundaries
var (
	ErrInvalidSymptomKey   = errors.New("invalid symptom key")
	ErrInvalidUrgencyLevel = errors.New("invalid urgency level")
	ErrInvalidSpecialtyKey = errors.New("invalid specialty key")
)

// IsValid reports whether the key is one of the known symptoms.
func (k SymptomKey) IsValid() bool {
	switch k {
	case FEVER, COLD, COUGH, SORE_THROAT, HEADACHE, STOMACH_PAIN, BODY_PAIN, TIREDNESS:
		return true
	default:
		return false
	}
}

// String returns the string representation of the symptom key
func (k SymptomKey) String() string {
	return string(k)
}

// ParseSymptomKey converts user or wire input into a SymptomKey.
// Input is trimmed and upper-cased; spaces and dashes are accepted in place of underscores.
func ParseSymptomKey(s string) (SymptomKey, error) {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	key := SymptomKey(normalized)
	if !key.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymptomKey, s)
	}
	return key, nil
}

// ParseSymptomKeys parses a list of keys, failing on the first invalid entry.
func ParseSymptomKeys(values []string) ([]SymptomKey, error) {
	keys := make([]SymptomKey, 0, len(values))
	for _, v := range values {
		key, err := ParseSymptomKey(v)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// UnmarshalJSON rejects keys outside the closed set.
func (k *SymptomKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	key := SymptomKey(s)
	if !key.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSymptomKey, s)
	}
	*k = key
	return nil
}

// IsValid reports whether the level is LOW, MEDIUM or HIGH.
func (u UrgencyLevel) IsValid() bool {
	switch u {
	case LOW_URGENCY, MEDIUM_URGENCY, HIGH_URGENCY:
		return true
	default:
		return false
	}
}

// String returns the string representation of the urgency level
func (u UrgencyLevel) String() string {
	return string(u)
}

// Rank orders urgency levels; higher is more urgent.
func (u UrgencyLevel) Rank() int {
	switch u {
	case HIGH_URGENCY:
		return 2
	case MEDIUM_URGENCY:
		return 1
	default:
		return 0
	}
}

// Escalate returns the more urgent of u and other. Urgency never goes down.
func (u UrgencyLevel) Escalate(other UrgencyLevel) UrgencyLevel {
	if other.Rank() > u.Rank() {
		return other
	}
	return u
}

// ParseUrgencyLevel parses a wire value into an UrgencyLevel.
func ParseUrgencyLevel(s string) (UrgencyLevel, error) {
	level := UrgencyLevel(strings.ToUpper(strings.TrimSpace(s)))
	if !level.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidUrgencyLevel, s)
	}
	return level, nil
}

// UnmarshalJSON rejects levels outside the closed set.
func (u *UrgencyLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	level := UrgencyLevel(s)
	if !level.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidUrgencyLevel, s)
	}
	*u = level
	return nil
}

// IsValid reports whether the specialty is a known routing target.
func (s SpecialtyKey) IsValid() bool {
	switch s {
	case GENERAL_PHYSICIAN, GASTROENTEROLOGY:
		return true
	default:
		return false
	}
}

// String returns the string representation of the specialty key
func (s SpecialtyKey) String() string {
	return string(s)
}

// ParseSpecialtyKey parses a wire value into a SpecialtyKey.
func ParseSpecialtyKey(s string) (SpecialtyKey, error) {
	key := SpecialtyKey(strings.ToUpper(strings.TrimSpace(s)))
	if !key.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSpecialtyKey, s)
	}
	return key, nil
}

// UnmarshalJSON rejects specialties outside the closed set.
func (s *SpecialtyKey) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	key := SpecialtyKey(raw)
	if !key.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSpecialtyKey, raw)
	}
	*s = key
	return nil
}
