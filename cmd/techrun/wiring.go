package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/techrun/internal/application"
	"github.com/sawpanic/techrun/internal/cache"
	"github.com/sawpanic/techrun/internal/config"
	"github.com/sawpanic/techrun/internal/metrics"
	"github.com/sawpanic/techrun/internal/persistence"
	"github.com/sawpanic/techrun/internal/persistence/memory"
	"github.com/sawpanic/techrun/internal/persistence/postgres"
)

// stack is the wired service plus whatever must be closed afterwards
type stack struct {
	svc     *application.Service
	metrics *metrics.Registry
	closers []func() error
}

func (s *stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Warn().Err(err).Msg("Close failed")
		}
	}
}

func openRepository(ctx context.Context, opts storageOptions, env config.Env) (*persistence.Repository, func() error, error) {
	if opts.DatabaseURL == "" {
		log.Info().Msg("No database configured, runs are kept in memory")
		return memory.NewStore().Repository(), func() error { return nil }, nil
	}

	pgCfg := postgres.DefaultConfig()
	pgCfg.DSN = opts.DatabaseURL
	pgCfg.Migrate = opts.Migrate
	if env.QueryTimeout > 0 {
		pgCfg.QueryTimeout = env.QueryTimeout
	}
	mgr, err := postgres.Open(ctx, pgCfg)
	if err != nil {
		return nil, nil, err
	}
	return mgr.Repository(), mgr.Close, nil
}

func buildStack(ctx context.Context, env config.Env, ds datasetOptions, st storageOptions, publisher application.Publisher, reg *metrics.Registry) (*stack, error) {
	cfg, err := config.Load(ds.ConfigPath)
	if err != nil {
		return nil, err
	}

	repo, closeRepo, err := openRepository(ctx, st, env)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}

	runCache := cache.NewRunCache(cache.NewAuto(st.RedisAddr), 0)
	svc, err := application.NewService(application.Options{
		Config:    cfg,
		DataDir:   ds.DataDir,
		Workers:   ds.Workers,
		Repo:      repo,
		Cache:     runCache,
		Metrics:   reg,
		Publisher: publisher,
	})
	if err != nil {
		runCache.Close()
		closeRepo()
		return nil, err
	}

	log.Debug().
		Str("data", ds.DataDir).
		Str("cache", runCache.Backend()).
		Bool("database", st.DatabaseURL != "").
		Msg("Service wired")
	return &stack{svc: svc, metrics: reg, closers: []func() error{closeRepo, runCache.Close}}, nil
}

func parseAsOfFlag(raw string) (application.RunRequest, error) {
	if raw == "" {
		return application.RunRequest{}, nil
	}
	t, err := application.ParseAsOf(raw)
	if err != nil {
		return application.RunRequest{}, err
	}
	return application.RunRequest{AsOf: t}, nil
}
