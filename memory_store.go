package main

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// MemoryStore keeps metrics in process; safe for concurrent batch workers
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string][]Metrics
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string][]Metrics)
	return nil
}

func (s *MemoryStore) SaveMetrics(_ context.Context, runID string, rows []Metrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errors.New("store is not initialized")
	}
	s.runs[runID] = append(s.runs[runID], rows...)
	return nil
}

func (s *MemoryStore) GetMetrics(_ context.Context, runID string) ([]Metrics, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, ok := s.runs[runID]
	if !ok {
		return nil, false, nil
	}
	out := make([]Metrics, len(rows))
	copy(out, rows)
	return out, true, nil
}

func (s *MemoryStore) ListRuns(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
