package main

import (
	"context"
	"fmt"
	"os"
)

// MetricsStore persists evaluation rows grouped by run id
type MetricsStore interface {
	Init(ctx context.Context) error
	SaveMetrics(ctx context.Context, runID string, rows []Metrics) error
	GetMetrics(ctx context.Context, runID string) ([]Metrics, bool, error)
	ListRuns(ctx context.Context) ([]string, error)
}

// NewMetricsStore returns the backend named by kind
func NewMetricsStore(kind, sqlitePath string) (MetricsStore, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

// DefaultStoreKind honours DEBRIS_STORE, falling back to memory
func DefaultStoreKind() string {
	if kind := os.Getenv("DEBRIS_STORE"); kind != "" {
		return kind
	}
	return "memory"
}

// CloseIfSupported closes stores that hold resources
func CloseIfSupported(store MetricsStore) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
