// Package application wires ingest, the scoring pipeline and the run store
// into the operations exposed by the CLI and the HTTP layer.
package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/techrun/internal/cache"
	"github.com/sawpanic/techrun/internal/config"
	"github.com/sawpanic/techrun/internal/ingest"
	"github.com/sawpanic/techrun/internal/metrics"
	"github.com/sawpanic/techrun/internal/persistence"
	"github.com/sawpanic/techrun/internal/pipeline"
)

// ErrRunInProgress is returned when a run is triggered while another is executing
var ErrRunInProgress = errors.New("a run is already in progress")

// Publisher receives completed-run events
type Publisher interface {
	Publish(evt RunEvent)
}

// RunEvent announces a completed run
type RunEvent struct {
	Type    string           `json:"type"`
	RunID   string           `json:"run_id"`
	AsOf    time.Time        `json:"as_of"`
	Summary pipeline.Summary `json:"summary"`
}

// EventRunCompleted is the only event type published today
const EventRunCompleted = "run.completed"

// Options configures a Service. Repo, Cache, Metrics and Publisher are optional.
type Options struct {
	Config    config.PipelineConfig
	DataDir   string
	Workers   int
	Repo      *persistence.Repository
	Cache     *cache.RunCache
	Metrics   *metrics.Registry
	Publisher Publisher
	Now       func() time.Time
}

// RunRequest parameterizes one run; zero fields fall back to the service defaults
type RunRequest struct {
	DataDir string
	AsOf    time.Time
}

// Service executes runs and answers queries about stored runs
type Service struct {
	cfg       config.PipelineConfig
	dataDir   string
	workers   int
	runner    *pipeline.Runner
	repo      *persistence.Repository
	cache     *cache.RunCache
	metrics   *metrics.Registry
	publisher Publisher
	now       func() time.Time

	running atomic.Bool
	latest  atomic.Pointer[pipeline.Result]
}

// NewService validates the pipeline configuration and builds a Service
func NewService(opts Options) (*Service, error) {
	var observer pipeline.Observer
	if opts.Metrics != nil {
		observer = opts.Metrics
	}
	runner, err := pipeline.NewRunner(opts.Config, observer)
	if err != nil {
		return nil, err
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		cfg:       opts.Config,
		dataDir:   opts.DataDir,
		workers:   opts.Workers,
		runner:    runner,
		repo:      opts.Repo,
		cache:     opts.Cache,
		metrics:   opts.Metrics,
		publisher: opts.Publisher,
		now:       now,
	}, nil
}

// Config returns the validated pipeline configuration
func (s *Service) Config() config.PipelineConfig {
	return s.cfg
}

// Execute loads the dataset, runs the pipeline and records the result. A
// store failure is returned alongside the (still valid) result; cache and
// publish failures are only logged.
func (s *Service) Execute(ctx context.Context, req RunRequest) (*pipeline.Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	dir := req.DataDir
	if dir == "" {
		dir = s.dataDir
	}
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = s.now().UTC()
	}

	ds, err := ingest.LoadDir(dir)
	if err != nil {
		s.recordRun(nil, 0)
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	start := time.Now()
	res, err := s.runner.Run(ctx, pipeline.Input{
		Companies:   ds.Companies,
		Graph:       ds.Graph,
		Bottlenecks: ds.Bottlenecks,
		AsOf:        asOf,
		Workers:     s.workers,
	})
	s.recordRun(res, time.Since(start))
	if err != nil {
		return nil, err
	}
	s.latest.Store(res)

	payload, err := json.Marshal(res)
	if err != nil {
		return res, fmt.Errorf("failed to encode run %s: %w", res.RunID, err)
	}

	storeErr := s.persist(ctx, res, payload)
	s.cachePut(ctx, res.RunID, payload)

	if s.publisher != nil {
		s.publisher.Publish(RunEvent{
			Type:    EventRunCompleted,
			RunID:   res.RunID,
			AsOf:    res.AsOf,
			Summary: res.Summary,
		})
	}
	return res, storeErr
}

func (s *Service) recordRun(res *pipeline.Result, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordRun(res, d)
	}
}

func (s *Service) persist(ctx context.Context, res *pipeline.Result, payload []byte) error {
	if s.repo == nil {
		return nil
	}

	record := persistence.RunRecord{
		ID:             res.RunID,
		AsOf:           res.AsOf,
		Companies:      res.Summary.Companies,
		Signals:        res.Summary.Signals,
		HighConviction: res.Summary.HighConviction,
		Plays:          res.Summary.Plays,
		Payload:        payload,
	}
	if err := s.repo.Runs.Save(ctx, record); err != nil {
		s.storeError("save", err)
		return fmt.Errorf("failed to persist run %s: %w", res.RunID, err)
	}
	if err := s.repo.Signals.InsertBatch(ctx, persistence.SignalRows(res.RunID, res.AsOf, res.Signals)); err != nil {
		s.storeError("insert_signals", err)
		return fmt.Errorf("failed to persist signals of run %s: %w", res.RunID, err)
	}
	return nil
}

func (s *Service) storeError(op string, err error) {
	log.Error().Err(err).Str("op", op).Msg("Run store failure")
	if s.metrics != nil {
		s.metrics.RecordStoreError(op)
	}
}

func (s *Service) cachePut(ctx context.Context, runID string, payload []byte) {
	if s.cache == nil {
		return
	}
	result := metrics.CacheStore
	if err := s.cache.Put(ctx, runID, payload); err != nil {
		result = metrics.CacheError
		log.Warn().Err(err).Str("backend", s.cache.Backend()).Str("run_id", runID).Msg("Failed to cache run")
	}
	s.recordCache("put", result)
}

func (s *Service) recordCache(op, result string) {
	if s.metrics != nil && s.cache != nil {
		s.metrics.RecordCache(s.cache.Backend(), op, result)
	}
}

// ParseAsOf accepts a calendar date (YYYY-MM-DD, UTC midnight) or an RFC3339 timestamp
func ParseAsOf(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("as-of %q is neither YYYY-MM-DD nor RFC3339", s)
	}
	return t.UTC(), nil
}
