package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

const (
	DefaultBatchSize   = 500
	resultsFilePattern = "algorithm_test_results_%d.csv"
)

// BatchConfig drives a run over many environmental rows
type BatchConfig struct {
	RunID         string // Generated when empty
	GridSize      int
	Start         Cell
	Strategies    []Strategy
	Connectivity  *Connectivity // Nil uses each strategy's default
	MaxIterations int
	Seed          int64
	Workers       int
	BatchSize     int    // Rows per flushed CSV file
	OutDir        string // Empty disables CSV output
	Store         MetricsStore
}

// BatchReport summarises a finished (or cancelled) batch
type BatchReport struct {
	RunID     string    `json:"runId"`
	Scenarios int       `json:"scenarios"`
	Rows      int       `json:"rows"`
	Chunks    int       `json:"chunks"`
	Files     []string  `json:"files,omitempty"`
	Summary   []Summary `json:"summary"`
}

func (c *BatchConfig) applyDefaults() {
	if c.RunID == "" {
		c.RunID = uuid.NewString()
	}
	if c.GridSize <= 0 {
		c.GridSize = DefaultGridSize
	}
	if len(c.Strategies) == 0 {
		c.Strategies = []Strategy{{Kind: StrategyFusion}}
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
}

type rowResult struct {
	index   int
	metrics []Metrics
	err     error
}

// RunBatch evaluates every strategy on a scenario generated from each row.
// Rows are independent and run on a worker pool; row i is seeded with Seed+i.
func RunBatch(ctx context.Context, cfg BatchConfig, rows []EnvParams) (BatchReport, error) {
	cfg.applyDefaults()
	report := BatchReport{RunID: cfg.RunID}

	log.Printf("🚀 Batch %s: %s scenarios x %d strategies on %d workers\n",
		cfg.RunID, humanize.Comma(int64(len(rows))), len(cfg.Strategies), cfg.Workers)

	if cfg.OutDir != "" {
		if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
			return report, fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	results := make(chan rowResult)

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				metrics, err := evaluateRow(cfg, i, rows[i])
				select {
				case results <- rowResult{index: i, metrics: metrics, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range rows {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var (
		all      []Metrics
		buffer   []Metrics
		buffered int
		pending  = make(map[int][]Metrics)
		next     int
		firstErr error
	)

	flush := func() error {
		if buffered == 0 {
			return nil
		}
		path, err := persistChunk(ctx, cfg, report.Chunks+1, buffer)
		if err != nil {
			return err
		}
		report.Chunks++
		if path != "" {
			report.Files = append(report.Files, path)
		}
		log.Printf("💾 Results saved: batch %d (%s rows)\n", report.Chunks, humanize.Comma(int64(len(buffer))))
		buffer, buffered = nil, 0
		return nil
	}

	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
				cancel()
			}
			continue
		}
		pending[res.index] = res.metrics
		for {
			m, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			report.Scenarios++
			all = append(all, m...)
			buffer = append(buffer, m...)
			buffered++
			if buffered >= cfg.BatchSize {
				if err := flush(); err != nil && firstErr == nil {
					firstErr = err
					cancel()
				}
			}
		}
	}

	if err := flush(); err != nil && firstErr == nil {
		firstErr = err
	}

	report.Rows = len(all)
	report.Summary = Summarize(all)
	if firstErr == nil && ctx.Err() != nil && report.Scenarios < len(rows) {
		firstErr = ctx.Err()
	}
	if firstErr != nil {
		log.Printf("❌ Batch %s stopped after %d scenarios: %v\n", cfg.RunID, report.Scenarios, firstErr)
		return report, firstErr
	}

	log.Printf("✅ Batch %s finished: %s scenarios, %s rows\n",
		cfg.RunID, humanize.Comma(int64(report.Scenarios)), humanize.Comma(int64(report.Rows)))
	return report, nil
}

// evaluateRow runs one generated scenario under every strategy
func evaluateRow(cfg BatchConfig, index int, env EnvParams) ([]Metrics, error) {
	rng := rand.New(rand.NewSource(cfg.Seed + int64(index)))
	scenario := GenerateScenario(cfg.GridSize, cfg.Start, env, rng)

	out := make([]Metrics, 0, len(cfg.Strategies))
	for _, strategy := range cfg.Strategies {
		conn := strategy.DefaultConnectivity()
		if cfg.Connectivity != nil {
			conn = *cfg.Connectivity
		}
		engineCfg := scenario.EngineConfig(strategy, conn)
		engineCfg.MaxIterations = cfg.MaxIterations

		started := time.Now()
		result, err := Route(engineCfg)
		if err != nil {
			return nil, fmt.Errorf("scenario %d (%s): %w", index, strategy, err)
		}
		out = append(out, Evaluate(index, scenario, strategy, result, time.Since(started)))
	}
	return out, nil
}

// persistChunk writes one flushed chunk to the store and, when configured, a numbered CSV file
func persistChunk(ctx context.Context, cfg BatchConfig, chunk int, rows []Metrics) (string, error) {
	if cfg.Store != nil {
		if err := cfg.Store.SaveMetrics(ctx, cfg.RunID, rows); err != nil {
			return "", fmt.Errorf("failed to store metrics: %w", err)
		}
	}
	if cfg.OutDir == "" {
		return "", nil
	}
	path := filepath.Join(cfg.OutDir, fmt.Sprintf(resultsFilePattern, chunk))
	if err := WriteMetricsCSV(path, rows); err != nil {
		return "", err
	}
	return path, nil
}

// WriteMetricsCSV writes rows with the historical result-file header
func WriteMetricsCSV(path string, rows []Metrics) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Index", "Algorithm", "CollectionRate", "CollisionCount", "SearchDistance", "ElapsedTime", "Terminal"}); err != nil {
		return err
	}
	for _, m := range rows {
		record := []string{
			strconv.Itoa(m.Index),
			m.Algorithm,
			strconv.FormatFloat(m.CollectionRate, 'f', 4, 64),
			strconv.Itoa(m.CollisionCount),
			strconv.Itoa(m.SearchDistance),
			strconv.FormatFloat(m.ElapsedTime, 'f', 6, 64),
			string(m.Terminal),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
