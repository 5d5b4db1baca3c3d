package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/techrun/internal/metrics"
	"github.com/sawpanic/techrun/internal/persistence"
	"github.com/sawpanic/techrun/internal/pipeline"
)

// Latest returns the most recent run: this process's last run, then the
// cache, then the store. It returns nil when no run exists.
func (s *Service) Latest(ctx context.Context) (*pipeline.Result, error) {
	if res := s.latest.Load(); res != nil {
		return res, nil
	}

	if s.cache != nil {
		payload, ok, err := s.cache.Latest(ctx)
		if res := s.fromCache("latest", payload, ok, err); res != nil {
			return res, nil
		}
	}

	if s.repo == nil {
		return nil, nil
	}
	rec, err := s.repo.Runs.Latest(ctx)
	if err != nil {
		s.storeError("latest", err)
		return nil, fmt.Errorf("failed to load latest run: %w", err)
	}
	return decodeRecord(rec)
}

// StoreHealth reports the run store's health, nil when the store has no
// connection to check
func (s *Service) StoreHealth(ctx context.Context) *persistence.HealthCheck {
	if s.repo == nil || s.repo.Health == nil {
		return nil
	}
	hc := s.repo.Health.Health(ctx)
	return &hc
}

// Get returns one run by id, nil when unknown
func (s *Service) Get(ctx context.Context, id string) (*pipeline.Result, error) {
	if res := s.latest.Load(); res != nil && res.RunID == id {
		return res, nil
	}

	if s.cache != nil {
		payload, ok, err := s.cache.Get(ctx, id)
		if res := s.fromCache("get", payload, ok, err); res != nil {
			return res, nil
		}
	}

	if s.repo == nil {
		return nil, nil
	}
	rec, err := s.repo.Runs.Get(ctx, id)
	if err != nil {
		s.storeError("get", err)
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return decodeRecord(rec)
}

// List returns stored run headers, newest first
func (s *Service) List(ctx context.Context, limit int) ([]persistence.RunRecord, error) {
	if s.repo == nil {
		return []persistence.RunRecord{}, nil
	}
	runs, err := s.repo.Runs.List(ctx, limit)
	if err != nil {
		s.storeError("list", err)
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// History returns a company's signals across stored runs, newest first
func (s *Service) History(ctx context.Context, companyID string, limit int) ([]persistence.SignalRow, error) {
	if s.repo == nil {
		return []persistence.SignalRow{}, nil
	}
	rows, err := s.repo.Signals.History(ctx, companyID, limit)
	if err != nil {
		s.storeError("history", err)
		return nil, fmt.Errorf("failed to load history for %s: %w", companyID, err)
	}
	return rows, nil
}

func (s *Service) fromCache(op string, payload []byte, ok bool, err error) *pipeline.Result {
	switch {
	case err != nil:
		s.recordCache(op, metrics.CacheError)
		log.Warn().Err(err).Str("op", op).Msg("Run cache read failed, falling back to store")
		return nil
	case !ok:
		s.recordCache(op, metrics.CacheMiss)
		return nil
	}

	var res pipeline.Result
	if err := json.Unmarshal(payload, &res); err != nil {
		s.recordCache(op, metrics.CacheError)
		log.Warn().Err(err).Str("op", op).Msg("Cached run is not decodable")
		return nil
	}
	s.recordCache(op, metrics.CacheHit)
	return &res
}

func decodeRecord(rec *persistence.RunRecord) (*pipeline.Result, error) {
	if rec == nil {
		return nil, nil
	}
	var res pipeline.Result
	if err := json.Unmarshal(rec.Payload, &res); err != nil {
		return nil, fmt.Errorf("failed to decode stored run %s: %w", rec.ID, err)
	}
	return &res, nil
}
