package nlp

import (
	"math"
	"sort"

	"github.com/symptom-triage-engine/internal/domain"
)

// Classifier scores text with a multinomial Naive Bayes model. A nil model is
// allowed and yields no predictions.
type Classifier struct {
	model *Model
}

// NewClassifier wraps a parsed model.
func NewClassifier(model *Model) *Classifier {
	return &Classifier{model: model}
}

// Available reports whether a model backs the classifier.
func (c *Classifier) Available() bool {
	return c != nil && c.model != nil
}

// PredictTopK returns at most k labels ordered by descending probability.
// Ties keep label order. k below 1 is treated as 1.
func (c *Classifier) PredictTopK(text, locale string, k int) []domain.Prediction {
	if !c.Available() || len(c.model.Labels) == 0 {
		return []domain.Prediction{}
	}
	if k < 1 {
		k = 1
	}

	counts := c.featureCounts(text, locale)
	if len(counts) == 0 {
		return []domain.Prediction{}
	}

	scores := c.scores(counts)
	probs := softmax(scores)

	predictions := make([]domain.Prediction, len(probs))
	for i, p := range probs {
		predictions[i] = domain.Prediction{Key: c.model.Labels[i], Probability: p}
	}
	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Probability > predictions[j].Probability
	})

	if k < len(predictions) {
		predictions = predictions[:k]
	}
	return predictions
}

// featureCounts maps known features to vocabulary indices. Unknown features
// are dropped.
func (c *Classifier) featureCounts(text, locale string) map[int]int {
	counts := make(map[int]int)
	for _, feature := range ExtractFeatures(text, locale) {
		if idx, ok := c.model.IndexOf(feature); ok {
			counts[idx]++
		}
	}
	return counts
}

func (c *Classifier) scores(counts map[int]int) []float64 {
	m := c.model
	scores := make([]float64, len(m.Labels))
	for l := range m.Labels {
		score := m.LogPrior[l]
		row := m.LogProb[l]
		for idx, n := range counts {
			logProb := m.UnkLogProb[l]
			if idx >= 0 && idx < len(row) {
				logProb = row[idx]
			}
			score += float64(n) * logProb
		}
		scores[l] = score
	}
	return scores
}

// softmax normalizes log scores with max subtraction. When the exponential
// sum is zero or not finite every probability is zero.
func softmax(scores []float64) []float64 {
	probs := make([]float64, len(scores))
	if len(scores) == 0 {
		return probs
	}

	peak := math.Inf(-1)
	for _, s := range scores {
		if s > peak {
			peak = s
		}
	}

	sum := 0.0
	for i, s := range scores {
		probs[i] = math.Exp(s - peak)
		sum += probs[i]
	}

	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		for i := range probs {
			probs[i] = 0
		}
		return probs
	}

	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
