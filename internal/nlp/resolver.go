package nlp

import (
	"github.com/symptom-triage-engine/internal/domain"
)

const (
	// DefaultMLThreshold is the minimum probability for a classifier key.
	DefaultMLThreshold = 0.35
	// DefaultTopK is how many classifier predictions are considered.
	DefaultTopK = 2
)

// Resolver merges keyword matches with confident classifier predictions.
type Resolver struct {
	keywords   domain.KeywordExtractor
	classifier domain.SymptomClassifier
	threshold  float64
	topK       int
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithThreshold overrides the classifier probability threshold. Values outside
// (0, 1] are ignored.
func WithThreshold(threshold float64) ResolverOption {
	return func(r *Resolver) {
		if threshold > 0 && threshold <= 1 {
			r.threshold = threshold
		}
	}
}

// WithTopK overrides how many predictions are considered.
func WithTopK(k int) ResolverOption {
	return func(r *Resolver) {
		if k > 0 {
			r.topK = k
		}
	}
}

// NewResolver creates a resolver. classifier may be nil for rules-only mode.
func NewResolver(keywords domain.KeywordExtractor, classifier domain.SymptomClassifier, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		keywords:   keywords,
		classifier: classifier,
		threshold:  DefaultMLThreshold,
		topK:       DefaultTopK,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Threshold returns the effective classifier threshold.
func (r *Resolver) Threshold() float64 {
	return r.threshold
}

// Resolve returns keyword keys first, then classifier keys in rank order whose
// probability is at least the threshold.
func (r *Resolver) Resolve(text, locale string, mlEnabled bool) domain.SymptomKeySet {
	keys := r.keywords.Extract(text, locale)
	if !mlEnabled || r.classifier == nil {
		return keys
	}

	for _, p := range r.classifier.PredictTopK(text, locale, r.topK) {
		if p.Probability >= r.threshold {
			keys.Add(p.Key)
		}
	}
	return keys
}
