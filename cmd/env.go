package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/vendora-crm/research-service/internal/discovery"
	"github.com/vendora-crm/research-service/internal/research"
	"github.com/vendora-crm/research-service/internal/snapshot"
	"github.com/vendora-crm/research-service/internal/store"
	anthropicpkg "github.com/vendora-crm/research-service/pkg/anthropic"
	"github.com/vendora-crm/research-service/pkg/serper"
	"github.com/vendora-crm/research-service/pkg/tavily"
)

// serviceEnv holds the initialized store and research service shared by the
// serve and research commands.
type serviceEnv struct {
	Store   store.Store
	Service *research.Service
}

// Close releases resources held by the environment.
func (e *serviceEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres", "":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initService sets up the store and all optional provider clients, then
// builds the research service. Callers should defer env.Close().
func initService(ctx context.Context) (*serviceEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	// Generative provider (optional). Without a key the pipeline runs in
	// degraded mode and reports aiError on every response.
	var aiClient anthropicpkg.Client
	if cfg.Anthropic.Key != "" {
		aiClient = anthropicpkg.NewClient(cfg.Anthropic.Key, cfg.Anthropic.Models, cfg.Anthropic.MaxTokens)
	} else {
		zap.L().Warn("RESEARCH_ANTHROPIC_KEY not set, generation disabled")
	}

	// Search providers (optional). Each missing key just disables that
	// provider's seeds.
	var serperClient serper.Client
	if cfg.Serper.Key != "" {
		serperClient = serper.NewClient(cfg.Serper.Key, serper.WithBaseURL(cfg.Serper.BaseURL))
	}
	var tavilyClient tavily.Client
	if cfg.Tavily.Key != "" {
		tavilyClient = tavily.NewClient(cfg.Tavily.Key, tavily.WithBaseURL(cfg.Tavily.BaseURL))
	}
	discoverer := discovery.NewDiscoverer(serperClient, tavilyClient, cfg.Discovery)

	fetcher := snapshot.NewFetcher(cfg.Snapshot)

	return &serviceEnv{
		Store:   st,
		Service: research.New(st, aiClient, discoverer, fetcher, cfg),
	}, nil
}
