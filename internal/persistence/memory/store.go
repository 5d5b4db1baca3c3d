// Package memory is an in-process run store used when no database is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sawpanic/techrun/internal/persistence"
)

// Store implements persistence.RunRepo and persistence.SignalRepo
type Store struct {
	mu      sync.RWMutex
	runs    map[string]persistence.RunRecord
	signals []persistence.SignalRow
	now     func() time.Time
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{
		runs: make(map[string]persistence.RunRecord),
		now:  time.Now,
	}
}

// Repository wraps the store as a persistence.Repository
func (s *Store) Repository() *persistence.Repository {
	return &persistence.Repository{Runs: s, Signals: s}
}

func (s *Store) Save(_ context.Context, run persistence.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[run.ID]; ok {
		return fmt.Errorf("run %s: %w", run.ID, persistence.ErrDuplicate)
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now().UTC()
	}
	run.Payload = append([]byte(nil), run.Payload...)
	s.runs[run.ID] = run
	return nil
}

func (s *Store) Latest(_ context.Context) (*persistence.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := s.ordered()
	if len(ordered) == 0 {
		return nil, nil
	}
	latest := ordered[0]
	return &latest, nil
}

func (s *Store) Get(_ context.Context, id string) (*persistence.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, nil
	}
	return &run, nil
}

func (s *Store) List(_ context.Context, limit int) ([]persistence.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ordered := s.ordered()
	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}
	for i := range ordered {
		ordered[i].Payload = nil
	}
	return ordered, nil
}

// ordered lists runs newest as-of first, then newest created, then id
func (s *Store) ordered() []persistence.RunRecord {
	out := make([]persistence.RunRecord, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AsOf.Equal(out[j].AsOf) {
			return out[i].AsOf.After(out[j].AsOf)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) InsertBatch(_ context.Context, rows []persistence.SignalRow) error {
	if len(rows) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals = append(s.signals, rows...)
	return nil
}

func (s *Store) History(_ context.Context, companyID string, limit int) ([]persistence.SignalRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []persistence.SignalRow{}
	for i := len(s.signals) - 1; i >= 0; i-- {
		if s.signals[i].CompanyID == companyID {
			out = append(out, s.signals[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AsOf.After(out[j].AsOf) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
