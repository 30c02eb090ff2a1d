package service

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptom-triage-engine/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress logs during testing
	return logger
}

var fixedNow = time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)

func newTestScorer() *TriageScorer {
	return NewTriageScorer(testLogger(), NewCatalog(), WithClock(func() time.Time { return fixedNow }))
}

func TestTriageScorer_Analyze(t *testing.T) {
	en := NewCatalog().Lookup("en")
	name := func(id ConditionID) string { return en.Conditions[id].Name }

	tests := []struct {
		name      string
		keys      []domain.SymptomKey
		order     []string
		urgency   domain.UrgencyLevel
		specialty domain.SpecialtyKey
	}{
		{
			name:      "Fever with cough",
			keys:      []domain.SymptomKey{domain.FEVER, domain.COUGH},
			order:     []string{name(CONDITION_VIRAL_URTI)},
			urgency:   domain.MEDIUM_URGENCY,
			specialty: domain.GENERAL_PHYSICIAN,
		},
		{
			name:      "Cough with stomach pain",
			keys:      []domain.SymptomKey{domain.COUGH, domain.STOMACH_PAIN},
			order:     []string{name(CONDITION_GASTRIC)},
			urgency:   domain.LOW_URGENCY,
			specialty: domain.GASTROENTEROLOGY,
		},
		{
			name:      "Empty selection",
			keys:      []domain.SymptomKey{},
			order:     []string{name(CONDITION_GENERAL)},
			urgency:   domain.LOW_URGENCY,
			specialty: domain.GENERAL_PHYSICIAN,
		},
		{
			name:      "Fever with stomach pain",
			keys:      []domain.SymptomKey{domain.FEVER, domain.STOMACH_PAIN},
			order:     []string{name(CONDITION_GASTRIC)},
			urgency:   domain.MEDIUM_URGENCY,
			specialty: domain.GASTROENTEROLOGY,
		},
		{
			name:      "Respiratory and digestive",
			keys:      []domain.SymptomKey{domain.FEVER, domain.COLD, domain.STOMACH_PAIN},
			order:     []string{name(CONDITION_VIRAL_URTI), name(CONDITION_GASTRIC)},
			urgency:   domain.MEDIUM_URGENCY,
			specialty: domain.GASTROENTEROLOGY,
		},
		{
			name:      "Headache alone",
			keys:      []domain.SymptomKey{domain.HEADACHE},
			order:     []string{name(CONDITION_TENSION_HEADACHE)},
			urgency:   domain.LOW_URGENCY,
			specialty: domain.GENERAL_PHYSICIAN,
		},
		{
			name:      "Headache with cold",
			keys:      []domain.SymptomKey{domain.HEADACHE, domain.COLD},
			order:     []string{name(CONDITION_COMMON_COLD), name(CONDITION_TENSION_HEADACHE)},
			urgency:   domain.LOW_URGENCY,
			specialty: domain.GENERAL_PHYSICIAN,
		},
		{
			name:      "Headache suppressed by cough",
			keys:      []domain.SymptomKey{domain.HEADACHE, domain.COUGH},
			order:     []string{name(CONDITION_COMMON_COLD)},
			urgency:   domain.LOW_URGENCY,
			specialty: domain.GENERAL_PHYSICIAN,
		},
		{
			name:      "Body pain with tiredness",
			keys:      []domain.SymptomKey{domain.BODY_PAIN, domain.TIREDNESS},
			order:     []string{name(CONDITION_FATIGUE)},
			urgency:   domain.LOW_URGENCY,
			specialty: domain.GENERAL_PHYSICIAN,
		},
		{
			name:      "Fatigue skipped once a condition exists",
			keys:      []domain.SymptomKey{domain.BODY_PAIN, domain.TIREDNESS, domain.HEADACHE},
			order:     []string{name(CONDITION_TENSION_HEADACHE)},
			urgency:   domain.LOW_URGENCY,
			specialty: domain.GENERAL_PHYSICIAN,
		},
		{
			name:      "Fever alone falls back",
			keys:      []domain.SymptomKey{domain.FEVER},
			order:     []string{name(CONDITION_GENERAL)},
			urgency:   domain.LOW_URGENCY,
			specialty: domain.GENERAL_PHYSICIAN,
		},
	}

	scorer := newTestScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := scorer.Analyze(tt.keys, "", "en")

			names := make([]string, len(result.Conditions))
			for i, c := range result.Conditions {
				names[i] = c.Name
			}
			assert.Equal(t, tt.order, names)
			assert.Equal(t, tt.urgency, result.UrgencyLevel)
			assert.Equal(t, tt.specialty, result.SuggestedSpecialityKey)
			assert.Len(t, result.Recommendations, domain.RecommendationCount)
			assert.Equal(t, en.Urgency[tt.urgency].Title, result.UrgencyTitle)
			assert.Equal(t, en.Urgency[tt.urgency].Sub, result.UrgencySub)
			require.NoError(t, result.Validate())
		})
	}
}

func TestTriageScorer_Confidences(t *testing.T) {
	scorer := newTestScorer()

	tests := []struct {
		name       string
		keys       []domain.SymptomKey
		confidence []int
	}{
		{"Viral", []domain.SymptomKey{domain.FEVER, domain.SORE_THROAT}, []int{72}},
		{"Common cold", []domain.SymptomKey{domain.COLD}, []int{66}},
		{"Gastric", []domain.SymptomKey{domain.STOMACH_PAIN}, []int{70}},
		{"Gastric with fever", []domain.SymptomKey{domain.STOMACH_PAIN, domain.FEVER}, []int{62}},
		{"Headache", []domain.SymptomKey{domain.HEADACHE}, []int{68}},
		{"Headache with fever", []domain.SymptomKey{domain.HEADACHE, domain.FEVER}, []int{55}},
		{"Fatigue", []domain.SymptomKey{domain.TIREDNESS, domain.BODY_PAIN}, []int{60}},
		{"General", nil, []int{55}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := scorer.Analyze(tt.keys, "", "en")
			got := make([]int, len(result.Conditions))
			for i, c := range result.Conditions {
				got[i] = c.ConfidencePct
			}
			assert.Equal(t, tt.confidence, got)
		})
	}
}

func TestTriageScorer_ResultFields(t *testing.T) {
	scorer := newTestScorer()
	result := scorer.Analyze([]domain.SymptomKey{domain.COUGH, domain.FEVER, domain.COUGH, "SNEEZE"}, "fever and a dry cough since Monday", "en")

	assert.Equal(t, fixedNow.UnixMilli(), result.CreatedAt)
	assert.Equal(t, []domain.SymptomKey{domain.COUGH, domain.FEVER}, result.SelectedKeys)
	assert.Equal(t, "fever and a dry cough since Monday", result.Desc)
	assert.Equal(t, "Rest and stay hydrated", result.Recommendations[0])
}

func TestTriageScorer_Localized(t *testing.T) {
	scorer := newTestScorer()
	hi := NewCatalog().Lookup("hi")

	result := scorer.Analyze([]domain.SymptomKey{domain.FEVER, domain.COUGH}, "बुखार और खांसी", "hi-IN")
	assert.Equal(t, hi.Conditions[CONDITION_VIRAL_URTI].Name, result.Conditions[0].Name)
	assert.Equal(t, hi.Urgency[domain.MEDIUM_URGENCY].Title, result.UrgencyTitle)
	assert.Equal(t, hi.Recommendations[0], result.Recommendations[0])
}

func TestTriageScorer_RuleOrder(t *testing.T) {
	assert.Equal(t, []string{"RESPIRATORY", "DIGESTIVE", "HEADACHE", "FATIGUE", "FALLBACK"}, newTestScorer().Rules())
}

func TestCatalog_Lookup(t *testing.T) {
	catalog := NewCatalog()

	tests := []struct {
		locale   string
		expected string
	}{
		{"en", "en"},
		{"en-GB", "en"},
		{"hi", "hi"},
		{"hi_IN", "hi"},
		{"ta", "en"},
		{"", "en"},
		{"???", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.expected, catalog.Lookup(tt.locale).Tag.String())
		})
	}

	assert.Equal(t, []string{"en", "hi"}, catalog.Languages())
}

func TestCatalog_Complete(t *testing.T) {
	catalog := NewCatalog()
	ids := []ConditionID{
		CONDITION_VIRAL_URTI, CONDITION_COMMON_COLD, CONDITION_GASTRIC,
		CONDITION_TENSION_HEADACHE, CONDITION_FATIGUE, CONDITION_GENERAL,
	}

	for _, locale := range catalog.Languages() {
		messages := catalog.Lookup(locale)
		for _, id := range ids {
			assert.NotEmpty(t, messages.Conditions[id].Name, "%s missing %s", locale, id)
			assert.NotEmpty(t, messages.Conditions[id].Note, "%s missing %s note", locale, id)
		}
		for _, level := range []domain.UrgencyLevel{domain.LOW_URGENCY, domain.MEDIUM_URGENCY, domain.HIGH_URGENCY} {
			assert.NotEmpty(t, messages.Urgency[level].Title)
			assert.NotEmpty(t, messages.Urgency[level].Sub)
		}
		for _, rec := range messages.Recommendations {
			assert.NotEmpty(t, rec)
		}
	}
}
