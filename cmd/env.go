package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/encontro/venues-cli/internal/activity"
	"github.com/encontro/venues-cli/internal/cache"
	"github.com/encontro/venues-cli/internal/classify"
	"github.com/encontro/venues-cli/internal/pipeline"
	"github.com/encontro/venues-cli/internal/search"
	"github.com/encontro/venues-cli/internal/store"
	"github.com/encontro/venues-cli/pkg/places"
)

// appEnv holds the initialized store and the service graph used by the
// search/classify/flag/serve commands.
type appEnv struct {
	Store    store.Store
	Cache    *cache.Cache
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore builds the configured store backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DSN)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DSN)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initEnv sets up the store, places client, registry, and the full pipeline.
// Callers should defer env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	var placesOpts []places.Option
	if cfg.Places.BaseURL != "" {
		placesOpts = append(placesOpts, places.WithBaseURL(cfg.Places.BaseURL))
	}
	placesClient := places.NewClient(cfg.Places.APIKey, placesOpts...)

	registry := classify.DefaultRegistry()
	if cfg.Registry.Path != "" {
		registry, err = classify.LoadRegistry(cfg.Registry.Path)
		if err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "load override registry")
		}
		zap.L().Info("loaded override registry", zap.String("path", cfg.Registry.Path))
	}

	classifier := classify.NewClassifier(registry)
	metaCache := cache.New(st, placesClient, classifier, cfg.Cache)

	searchClient := search.NewClient(placesClient, classify.NewCategoryFilter(), cfg.Search, cfg.Places.APIKey != "")
	expander := search.NewExpander(searchClient, cfg.Search.RadiusSteps)

	pipe := pipeline.New(expander, metaCache, activity.NewEnricher(st), st, cfg.Search.MinNightlifeScore)

	return &appEnv{
		Store:    st,
		Cache:    metaCache,
		Pipeline: pipe,
	}, nil
}
