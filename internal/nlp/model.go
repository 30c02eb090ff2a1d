package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-engine/internal/domain"
)

// Model is a parsed Naive Bayes artifact. It is never mutated after
// ParseModel returns and may be shared between goroutines.
type Model struct {
	Labels     []domain.SymptomKey
	Vocab      []string
	LogPrior   []float64
	LogProb    [][]float64
	UnkLogProb []float64

	vocabIndex map[string]int
}

// modelArtifact mirrors the JSON layout. Pointers distinguish a missing
// array from an empty one.
type modelArtifact struct {
	Labels     *[]string    `json:"labels"`
	Vocab      *[]string    `json:"vocab"`
	LogPrior   *[]float64   `json:"log_prior"`
	UnkLogProb *[]float64   `json:"unk_log_prob"`
	LogProb    *[][]float64 `json:"log_prob"`
}

// ParseModel decodes and validates a serialized model. source names the origin
// of the bytes in errors.
func ParseModel(source string, data []byte) (*Model, error) {
	var artifact modelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, domain.NewModelLoadError(source, "malformed JSON", err)
	}

	switch {
	case artifact.Labels == nil:
		return nil, domain.NewModelLoadError(source, "labels missing", nil)
	case artifact.Vocab == nil:
		return nil, domain.NewModelLoadError(source, "vocab missing", nil)
	case artifact.LogPrior == nil:
		return nil, domain.NewModelLoadError(source, "log_prior missing", nil)
	case artifact.UnkLogProb == nil:
		return nil, domain.NewModelLoadError(source, "unk_log_prob missing", nil)
	case artifact.LogProb == nil:
		return nil, domain.NewModelLoadError(source, "log_prob missing", nil)
	}

	labels := *artifact.Labels
	vocab := *artifact.Vocab
	logPrior := *artifact.LogPrior
	unk := *artifact.UnkLogProb
	logProb := *artifact.LogProb

	if len(logPrior) != len(labels) || len(unk) != len(labels) || len(logProb) != len(labels) {
		return nil, domain.NewModelLoadError(source, fmt.Sprintf(
			"dimension mismatch: %d labels, %d priors, %d unk, %d rows",
			len(labels), len(logPrior), len(unk), len(logProb)), nil)
	}

	model := &Model{
		Labels:     make([]domain.SymptomKey, 0, len(labels)),
		Vocab:      vocab,
		LogPrior:   logPrior,
		LogProb:    logProb,
		UnkLogProb: unk,
		vocabIndex: make(map[string]int, len(vocab)),
	}

	seen := make(map[domain.SymptomKey]struct{}, len(labels))
	for _, raw := range labels {
		key, err := domain.ParseSymptomKey(raw)
		if err != nil {
			return nil, domain.NewModelLoadError(source, "unknown label "+raw, err)
		}
		if _, dup := seen[key]; dup {
			return nil, domain.NewModelLoadError(source, "duplicate label "+raw, nil)
		}
		seen[key] = struct{}{}
		model.Labels = append(model.Labels, key)
	}

	for i, row := range logProb {
		if len(row) != len(vocab) {
			return nil, domain.NewModelLoadError(source, fmt.Sprintf(
				"log_prob row %d has %d entries, vocab has %d", i, len(row), len(vocab)), nil)
		}
	}

	for i, feature := range vocab {
		if _, dup := model.vocabIndex[feature]; dup {
			return nil, domain.NewModelLoadError(source, "duplicate vocab entry "+feature, nil)
		}
		model.vocabIndex[feature] = i
	}

	return model, nil
}

// IndexOf returns the vocabulary index of a feature.
func (m *Model) IndexOf(feature string) (int, bool) {
	idx, ok := m.vocabIndex[feature]
	return idx, ok
}

// ModelSource supplies the raw artifact bytes.
type ModelSource interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
}

// FileSource reads the artifact from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.Path)
}

// BytesSource serves an artifact already in memory, such as an embedded asset.
type BytesSource struct {
	Label string
	Data  []byte
}

func (s BytesSource) Name() string { return s.Label }

func (s BytesSource) Read(ctx context.Context) ([]byte, error) {
	if len(s.Data) == 0 {
		return nil, fmt.Errorf("empty artifact")
	}
	return s.Data, nil
}

// ModelInfo describes the state of the provider for health output.
type ModelInfo struct {
	Source    string              `json:"source"`
	Loaded    bool                `json:"loaded"`
	Available bool                `json:"available"`
	Labels    []domain.SymptomKey `json:"labels"`
	VocabSize int                 `json:"vocabSize"`
	LoadedAt  *time.Time          `json:"loadedAt,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// ModelProvider loads the artifact at most once per process. The first
// outcome, success or failure, is kept and never retried.
type ModelProvider struct {
	source ModelSource
	logger *logrus.Logger

	mu        sync.Mutex
	attempted bool
	model     *Model
	err       error
	loadedAt  time.Time
}

// NewModelProvider creates a provider for the given source.
func NewModelProvider(source ModelSource, logger *logrus.Logger) *ModelProvider {
	return &ModelProvider{
		source: source,
		logger: logger,
	}
}

// Load parses the artifact on first call and returns the recorded outcome on
// every later call.
func (p *ModelProvider) Load(ctx context.Context) (*Model, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.attempted {
		return p.model, p.err
	}
	p.attempted = true

	start := time.Now()
	data, err := p.source.Read(ctx)
	if err != nil {
		p.err = domain.NewModelLoadError(p.source.Name(), "read failed", err)
	} else {
		p.model, p.err = ParseModel(p.source.Name(), data)
	}

	if p.err != nil {
		p.logger.WithError(p.err).WithField("source", p.source.Name()).
			Warn("Symptom model unavailable, falling back to keyword rules only")
		return nil, p.err
	}

	p.loadedAt = time.Now()
	p.logger.WithFields(logrus.Fields{
		"source":     p.source.Name(),
		"labels":     len(p.model.Labels),
		"vocab_size": len(p.model.Vocab),
		"duration":   time.Since(start),
	}).Info("Symptom model loaded")

	return p.model, nil
}

// Info reports the provider state without triggering a load.
func (p *ModelProvider) Info() ModelInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	info := ModelInfo{
		Source:    p.source.Name(),
		Loaded:    p.attempted,
		Available: p.model != nil,
		Labels:    []domain.SymptomKey{},
	}
	if p.model != nil {
		info.Labels = append(info.Labels, p.model.Labels...)
		info.VocabSize = len(p.model.Vocab)
		loadedAt := p.loadedAt
		info.LoadedAt = &loadedAt
	}
	if p.err != nil {
		info.Error = p.err.Error()
	}
	return info
}
