package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/insighter-hq/researcher/internal/gateway"
	"github.com/insighter-hq/researcher/internal/pipeline"
	"github.com/insighter-hq/researcher/internal/store"
	"github.com/insighter-hq/researcher/pkg/anthropic"
	"github.com/insighter-hq/researcher/pkg/apify"
	"github.com/insighter-hq/researcher/pkg/perplexity"
)

// pipelineEnv holds the initialized store and runner shared by the serve
// and research commands.
type pipelineEnv struct {
	Store  store.Store
	Runner *pipeline.Runner
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline sets up the cache store, the LLM provider chain, and the
// actor client, then builds the Runner. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore()
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	var providers []gateway.Provider
	if cfg.Anthropic.Key != "" {
		providers = append(providers, gateway.NewAnthropicProvider(
			anthropic.NewClient(cfg.Anthropic.Key),
			cfg.Anthropic.Model,
			int64(cfg.Anthropic.MaxTokens),
		))
	} else {
		zap.L().Warn("RESEARCHER_ANTHROPIC_KEY not set, primary provider disabled")
	}
	if cfg.Perplexity.Key != "" {
		providers = append(providers, gateway.NewPerplexityProvider(
			perplexity.NewClient(cfg.Perplexity.Key,
				perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
				perplexity.WithModel(cfg.Perplexity.Model),
			),
		))
	} else {
		zap.L().Debug("RESEARCHER_PERPLEXITY_KEY not set, fallback provider disabled")
	}
	if len(providers) == 0 {
		_ = st.Close()
		return nil, eris.New("no LLM provider configured, set RESEARCHER_ANTHROPIC_KEY or RESEARCHER_PERPLEXITY_KEY")
	}

	gw := gateway.New(providers, cfg.Anthropic.PacingInterval())

	// An empty token is allowed: the enrichment stage degrades to
	// knowledge-only analysis.
	if cfg.Apify.Token == "" {
		zap.L().Warn("RESEARCHER_APIFY_TOKEN not set, enrichment sources disabled")
	}
	actors := apify.NewClient(cfg.Apify.Token, apify.WithBaseURL(cfg.Apify.BaseURL))

	return &pipelineEnv{
		Store:  st,
		Runner: pipeline.New(cfg, gw, actors, st),
	}, nil
}

func initStore() (store.Store, error) {
	if cfg.Cache.Path == "" {
		zap.L().Info("cache path empty, using in-memory result cache")
		return store.NewMemory(), nil
	}
	st, err := store.NewSQLite(cfg.Cache.Path)
	if err != nil {
		return nil, err
	}
	return st, nil
}
