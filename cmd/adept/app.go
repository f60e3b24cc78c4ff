package main

import (
	"context"
	"fmt"

	"adept/internal/config"
	"adept/internal/generation"
	"adept/internal/llm"
	"adept/internal/retrieval"
	"adept/internal/store"
)

// app is the composition root: one store, one retrieval provider, one
// backend selector and the orchestrator over them.
type app struct {
	cfg       *config.Config
	store     *store.Store
	retrieval *retrieval.Provider
	selector  *llm.Selector
	orch      *generation.Orchestrator
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	st, err := store.Open(cfg.Store.DatabasePath)
	if err != nil {
		return nil, err
	}

	provider, err := retrieval.Open(ctx, cfg.Embedding, cfg.Retrieval)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("retrieval: %w", err)
	}

	selector := llm.NewSelector(cfg.LLM)
	orch := generation.New(selector,
		generation.WithRetriever(provider),
		generation.WithSink(st),
		generation.WithTopK(cfg.Retrieval.TopK),
	)

	return &app{
		cfg:       cfg,
		store:     st,
		retrieval: provider,
		selector:  selector,
		orch:      orch,
	}, nil
}

func (a *app) Close() error {
	rerr := a.retrieval.Close()
	if err := a.store.Close(); err != nil {
		return err
	}
	return rerr
}

// withApp runs fn with a fresh app and a context bounded by --timeout.
func (o *options) withApp(fn func(ctx context.Context, a *app) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	a, err := newApp(ctx, o.cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
