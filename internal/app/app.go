// Package app wires the triage components shared by the HTTP, MCP and CLI
// binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/symptom-triage-engine/assets"
	"github.com/symptom-triage-engine/internal/cache"
	"github.com/symptom-triage-engine/internal/database"
	"github.com/symptom-triage-engine/internal/domain"
	"github.com/symptom-triage-engine/internal/history"
	"github.com/symptom-triage-engine/internal/nlp"
	"github.com/symptom-triage-engine/internal/service"
)

// App holds the assembled components.
type App struct {
	Config     *domain.Config
	Logger     *logrus.Logger
	Models     *nlp.ModelProvider
	Classifier *nlp.Classifier
	Resolver   *nlp.Resolver
	Store      domain.ResultStore
	Cache      *cache.MemoryCache[[]domain.SymptomKey]
	Service    *service.TriageService

	// DB is only set for the postgres back end.
	DB *database.DB
}

// Option customizes New.
type Option func(*options)

type options struct {
	store       domain.ResultStore
	modelSource nlp.ModelSource
}

// WithStore uses store instead of opening the configured back end.
func WithStore(store domain.ResultStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithModelSource overrides the configured model location.
func WithModelSource(source nlp.ModelSource) Option {
	return func(o *options) {
		o.modelSource = source
	}
}

// ModelSource returns the artifact location for cfg: the file at
// triage.model_path when set, the embedded artifact otherwise.
func ModelSource(cfg domain.TriageConfig) nlp.ModelSource {
	if strings.TrimSpace(cfg.ModelPath) != "" {
		return nlp.FileSource{Path: cfg.ModelPath}
	}
	return nlp.BytesSource{Label: "embedded:" + assets.ModelFileName, Data: assets.SymptomModel}
}

// New assembles the model provider, resolver, scorer, result store and
// service. A model that fails to load leaves the engine on keyword rules; a
// store that fails to open is an error.
func New(ctx context.Context, cfg *domain.Config, logger *logrus.Logger, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	a := &App{Config: cfg, Logger: logger}

	source := o.modelSource
	if source == nil {
		source = ModelSource(cfg.Triage)
	}
	a.Models = nlp.NewModelProvider(source, logger)
	model, err := a.Models.Load(ctx)
	if err != nil {
		var loadErr *domain.ModelLoadError
		if !errors.As(err, &loadErr) {
			logger.WithError(err).Warn("Unexpected model provider error")
		}
	}
	a.Classifier = nlp.NewClassifier(model)
	a.Resolver = nlp.NewResolver(nlp.NewKeywordExtractor(), a.Classifier,
		nlp.WithThreshold(cfg.Triage.MLThreshold),
		nlp.WithTopK(cfg.Triage.TopK),
	)

	a.Cache, err = cache.NewMemoryCache[[]domain.SymptomKey](cfg.Cache.MaxItems, cfg.Cache.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create resolve cache: %w", err)
	}

	if o.store != nil {
		a.Store = o.store
	} else if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	scorer := service.NewTriageScorer(logger, service.NewCatalog())
	a.Service = service.NewTriageService(logger, a.Resolver, scorer, a.Store,
		service.WithResolveCache(a.Cache),
		service.WithModelInfo(a.Models),
		service.WithMLEnabled(cfg.Triage.MLEnabled),
	)

	logger.WithFields(logrus.Fields{
		"model_source":    source.Name(),
		"ml_available":    a.Classifier.Available(),
		"ml_enabled":      cfg.Triage.MLEnabled,
		"ml_threshold":    a.Resolver.Threshold(),
		"storage_backend": cfg.Storage.Backend,
	}).Info("Triage engine initialized")

	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	storage := a.Config.Storage
	if strings.EqualFold(storage.Backend, history.BackendPostgres) {
		if storage.PostgresURL == "" {
			storage.PostgresURL = database.URL(a.Config.Database)
		}
		if a.Config.Database.RunMigrations {
			if err := database.Migrate(ctx, storage.PostgresURL, a.Logger); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		db, err := database.NewConnectionFromURL(ctx, storage.PostgresURL, a.Config.Database, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		a.DB = db
	}

	store, err := history.Open(ctx, storage, a.Logger)
	if err != nil {
		return err
	}
	a.Store = store
	return nil
}

// Health reports an error when a configured dependency is unreachable.
func (a *App) Health(ctx context.Context) error {
	if a.DB != nil {
		if err := a.DB.Health(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if pinger, ok := a.Store.(interface{ Ping(context.Context) error }); ok {
		if err := pinger.Ping(ctx); err != nil {
			return fmt.Errorf("store: %w", err)
		}
	}
	return nil
}

// UrgencyBreakdown counts stored results per urgency level. Only the
// postgres back end supports it.
func (a *App) UrgencyBreakdown(ctx context.Context) (map[string]int64, bool, error) {
	if a.DB == nil {
		return nil, false, nil
	}
	counts, err := a.DB.UrgencyBreakdown(ctx)
	return counts, true, err
}

// Close releases the store and database pool.
func (a *App) Close() error {
	var err error
	if a.Store != nil {
		err = a.Store.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
	return err
}
