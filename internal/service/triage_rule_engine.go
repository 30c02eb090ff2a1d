package service

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-engine/internal/domain"
)

// TriageRule is one bucket of the ordered condition table.
type TriageRule struct {
	Code        string
	Description string
	Evaluate    func(eval *triageEvaluation) bool
}

// triageEvaluation accumulates the outcome while rules run in order.
type triageEvaluation struct {
	keys       domain.SymptomKeySet
	messages   *Messages
	conditions []domain.Condition
	urgency    domain.UrgencyLevel
	specialty  domain.SpecialtyKey
	applied    []string
}

func (e *triageEvaluation) has(key domain.SymptomKey) bool {
	return e.keys.Has(key)
}

func (e *triageEvaluation) addCondition(id ConditionID, confidence int) {
	text := e.messages.Conditions[id]
	e.conditions = append(e.conditions, domain.Condition{
		Name:          text.Name,
		ConfidencePct: confidence,
		Note:          text.Note,
	})
}

// TriageScorer maps a symptom key set to conditions, urgency and specialty.
// It never fails: an empty set produces the general fallback condition.
type TriageScorer struct {
	logger  *logrus.Logger
	catalog *Catalog
	rules   []TriageRule
	now     func() time.Time
}

// TriageScorerOption customizes a TriageScorer.
type TriageScorerOption func(*TriageScorer)

// WithClock replaces the time source used for CreatedAt.
func WithClock(now func() time.Time) TriageScorerOption {
	return func(s *TriageScorer) {
		s.now = now
	}
}

// NewTriageScorer creates the scorer with the bundled rule table.
func NewTriageScorer(logger *logrus.Logger, catalog *Catalog, opts ...TriageScorerOption) *TriageScorer {
	if catalog == nil {
		catalog = NewCatalog()
	}
	scorer := &TriageScorer{
		logger:  logger,
		catalog: catalog,
		rules:   defaultTriageRules(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(scorer)
	}
	return scorer
}

// Rules returns the rule codes in evaluation order.
func (s *TriageScorer) Rules() []string {
	codes := make([]string, len(s.rules))
	for i, r := range s.rules {
		codes[i] = r.Code
	}
	return codes
}

// Analyze runs the rule table over keys and builds the result. Unknown keys
// are ignored; freeText is stored verbatim as the description.
func (s *TriageScorer) Analyze(keys []domain.SymptomKey, freeText, locale string) *domain.AnalysisResult {
	selected := make([]domain.SymptomKey, 0, len(keys))
	for _, key := range domain.DedupKeys(keys) {
		if !key.IsValid() {
			s.logger.WithField("key", string(key)).Debug("Ignoring unknown symptom key")
			continue
		}
		selected = append(selected, key)
	}

	eval := &triageEvaluation{
		keys:      domain.NewSymptomKeySet(selected...),
		messages:  s.catalog.Lookup(locale),
		urgency:   domain.LOW_URGENCY,
		specialty: domain.GENERAL_PHYSICIAN,
	}

	for _, rule := range s.rules {
		if rule.Evaluate(eval) {
			eval.applied = append(eval.applied, rule.Code)
		}
	}

	urgencyText := eval.messages.Urgency[eval.urgency]
	result := &domain.AnalysisResult{
		CreatedAt:              s.now().UnixMilli(),
		SelectedKeys:           selected,
		Desc:                   freeText,
		UrgencyLevel:           eval.urgency,
		UrgencyTitle:           urgencyText.Title,
		UrgencySub:             urgencyText.Sub,
		Conditions:             eval.conditions,
		Recommendations:        domain.PadRecommendations(eval.messages.Recommendations[:]),
		SuggestedSpecialityKey: eval.specialty,
	}

	s.logger.WithFields(logrus.Fields{
		"selected_keys": len(selected),
		"applied_rules": eval.applied,
		"urgency":       result.UrgencyLevel,
		"specialty":     result.SuggestedSpecialityKey,
	}).Debug("Completed triage rule evaluation")

	return result
}

// defaultTriageRules returns the ordered rule table. Urgency only escalates;
// later rules may override the specialty.
func defaultTriageRules() []TriageRule {
	return []TriageRule{
		{
			Code:        "RESPIRATORY",
			Description: "Fever with respiratory symptoms, or respiratory symptoms alone without stomach pain",
			Evaluate: func(e *triageEvaluation) bool {
				respiratory := e.has(domain.COUGH) || e.has(domain.COLD) || e.has(domain.SORE_THROAT)
				switch {
				case e.has(domain.FEVER) && respiratory:
					e.addCondition(CONDITION_VIRAL_URTI, 72)
					e.urgency = e.urgency.Escalate(domain.MEDIUM_URGENCY)
					e.specialty = domain.GENERAL_PHYSICIAN
					return true
				case respiratory && !e.has(domain.STOMACH_PAIN):
					e.addCondition(CONDITION_COMMON_COLD, 66)
					e.urgency = e.urgency.Escalate(domain.LOW_URGENCY)
					e.specialty = domain.GENERAL_PHYSICIAN
					return true
				}
				return false
			},
		},
		{
			Code:        "DIGESTIVE",
			Description: "Stomach pain, escalated when accompanied by fever",
			Evaluate: func(e *triageEvaluation) bool {
				if !e.has(domain.STOMACH_PAIN) {
					return false
				}
				confidence := 70
				if e.has(domain.FEVER) {
					confidence = 62
					e.urgency = e.urgency.Escalate(domain.MEDIUM_URGENCY)
				}
				e.addCondition(CONDITION_GASTRIC, confidence)
				e.specialty = domain.GASTROENTEROLOGY
				return true
			},
		},
		{
			Code:        "HEADACHE",
			Description: "Headache without stomach pain or cough",
			Evaluate: func(e *triageEvaluation) bool {
				if !e.has(domain.HEADACHE) || e.has(domain.STOMACH_PAIN) || e.has(domain.COUGH) {
					return false
				}
				confidence := 68
				if e.has(domain.FEVER) {
					confidence = 55
				}
				e.addCondition(CONDITION_TENSION_HEADACHE, confidence)
				e.specialty = domain.GENERAL_PHYSICIAN
				return true
			},
		},
		{
			Code:        "FATIGUE",
			Description: "Body pain with tiredness when nothing else matched",
			Evaluate: func(e *triageEvaluation) bool {
				if !e.has(domain.BODY_PAIN) || !e.has(domain.TIREDNESS) || len(e.conditions) > 0 {
					return false
				}
				e.addCondition(CONDITION_FATIGUE, 60)
				e.urgency = e.urgency.Escalate(domain.LOW_URGENCY)
				e.specialty = domain.GENERAL_PHYSICIAN
				return true
			},
		},
		{
			Code:        "FALLBACK",
			Description: "Generic condition when no other rule produced one",
			Evaluate: func(e *triageEvaluation) bool {
				if len(e.conditions) > 0 {
					return false
				}
				e.addCondition(CONDITION_GENERAL, 55)
				e.urgency = e.urgency.Escalate(domain.LOW_URGENCY)
				e.specialty = domain.GENERAL_PHYSICIAN
				return true
			},
		},
	}
}
