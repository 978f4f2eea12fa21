package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"firebay/internal/types"
)

// MemoryEventStore is a mutex-guarded in-memory EventStore. It is the
// default store when no DATABASE_URL is configured, and a convenient seam
// for handler tests.
type MemoryEventStore struct {
	mu     sync.RWMutex
	events []types.DetectedEvent
}

// NewMemoryEventStore returns an empty in-memory store.
func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{}
}

// Seed preloads events, replacing current contents. Used at startup to give
// the dashboard an initial registry.
func (s *MemoryEventStore) Seed(events []types.DetectedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append([]types.DetectedEvent(nil), events...)
}

// Insert implements EventStore.
func (s *MemoryEventStore) Insert(ctx context.Context, event *types.DetectedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

// List implements EventStore, newest first.
func (s *MemoryEventStore) List(ctx context.Context, limit int) ([]types.DetectedEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	s.mu.RLock()
	out := append([]types.DetectedEvent(nil), s.events...)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Prune implements EventStore.
func (s *MemoryEventStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	var removed int64
	for _, e := range s.events {
		if e.OccurredAt.Before(olderThan) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept
	return removed, nil
}
