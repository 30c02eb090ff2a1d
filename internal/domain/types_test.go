package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSymptomKeyConstants(t *testing.T) {
	tests := []struct {
		name     string
		value    SymptomKey
		expected string
	}{
		{"Fever", FEVER, "FEVER"},
		{"Cold", COLD, "COLD"},
		{"Cough", COUGH, "COUGH"},
		{"Sore throat", SORE_THROAT, "SORE_THROAT"},
		{"Headache", HEADACHE, "HEADACHE"},
		{"Stomach pain", STOMACH_PAIN, "STOMACH_PAIN"},
		{"Body pain", BODY_PAIN, "BODY_PAIN"},
		{"Tiredness", TIREDNESS, "TIREDNESS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.value) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, string(tt.value))
			}
			if !tt.value.IsValid() {
				t.Errorf("Expected %s to be valid", tt.value)
			}
		})
	}

	if len(AllSymptomKeys) != len(tests) {
		t.Errorf("Expected %d symptom keys, got %d", len(tests), len(AllSymptomKeys))
	}
}

func TestParseSymptomKey(t *testing.T) {
	tests := []struct {
		input    string
		expected SymptomKey
		wantErr  bool
	}{
		{"FEVER", FEVER, false},
		{"  fever ", FEVER, false},
		{"sore throat", SORE_THROAT, false},
		{"stomach-pain", STOMACH_PAIN, false},
		{"FEVERISH", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSymptomKey(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSymptomKey) {
					t.Errorf("Expected ErrInvalidSymptomKey, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestUrgencyLevelEscalate(t *testing.T) {
	tests := []struct {
		name     string
		current  UrgencyLevel
		other    UrgencyLevel
		expected UrgencyLevel
	}{
		{"Low to medium", LOW_URGENCY, MEDIUM_URGENCY, MEDIUM_URGENCY},
		{"Medium stays medium on low", MEDIUM_URGENCY, LOW_URGENCY, MEDIUM_URGENCY},
		{"High never drops", HIGH_URGENCY, MEDIUM_URGENCY, HIGH_URGENCY},
		{"Same level", LOW_URGENCY, LOW_URGENCY, LOW_URGENCY},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.current.Escalate(tt.other); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestEnumUnmarshalRejectsUnknownValues(t *testing.T) {
	var key SymptomKey
	if err := json.Unmarshal([]byte(`"FEVR"`), &key); !errors.Is(err, ErrInvalidSymptomKey) {
		t.Errorf("Expected ErrInvalidSymptomKey, got %v", err)
	}

	var level UrgencyLevel
	if err := json.Unmarshal([]byte(`"URGENT"`), &level); !errors.Is(err, ErrInvalidUrgencyLevel) {
		t.Errorf("Expected ErrInvalidUrgencyLevel, got %v", err)
	}

	var specialty SpecialtyKey
	if err := json.Unmarshal([]byte(`"CARDIOLOGY"`), &specialty); !errors.Is(err, ErrInvalidSpecialtyKey) {
		t.Errorf("Expected ErrInvalidSpecialtyKey, got %v", err)
	}

	if err := json.Unmarshal([]byte(`"MEDIUM"`), &level); err != nil || level != MEDIUM_URGENCY {
		t.Errorf("Expected MEDIUM, got %s (%v)", level, err)
	}
}

func TestParseSpecialtyAndUrgency(t *testing.T) {
	if s, err := ParseSpecialtyKey("gastroenterology"); err != nil || s != GASTROENTEROLOGY {
		t.Errorf("Expected GASTROENTEROLOGY, got %s (%v)", s, err)
	}
	if _, err := ParseSpecialtyKey("dermatology"); !errors.Is(err, ErrInvalidSpecialtyKey) {
		t.Errorf("Expected ErrInvalidSpecialtyKey, got %v", err)
	}
	if u, err := ParseUrgencyLevel("high"); err != nil || u != HIGH_URGENCY {
		t.Errorf("Expected HIGH, got %s (%v)", u, err)
	}
}
