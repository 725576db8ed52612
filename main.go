package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const allStrategies = "nearest,lookahead,directional,fusion"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return runServe(ctx, nil)
	}

	switch args[0] {
	case "serve":
		return runServe(ctx, args[1:])
	case "route":
		return runRoute(ctx, args[1:])
	case "generate":
		return runGenerate(ctx, args[1:])
	case "batch":
		return runBatch(ctx, args[1:])
	case "animate":
		return runAnimate(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: debris-planner <serve|route|generate|batch|animate|runs> [flags]", msg)
}

func openStore(ctx context.Context, kind, dbPath string) (MetricsStore, error) {
	store, err := NewMetricsStore(kind, dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to init %s store: %w", kind, err)
	}
	return store, nil
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", envOr("DEBRIS_ADDR", ":8080"), "listen address")
	storeKind := fs.String("store", DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", envOr("DEBRIS_DB_PATH", "debris.db"), "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	log.Println("========================================")
	log.Println("🚀 Debris Collection Planner Server")
	log.Println("========================================")

	store, err := openStore(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = CloseIfSupported(store)
	}()
	log.Printf("Metrics store: %s\n", *storeKind)

	srv := &http.Server{Addr: *addr, Handler: NewServer(store).Handler()}

	log.Printf("Server starting on %s\n", *addr)
	log.Println("")
	log.Println("Endpoints:")
	log.Println("  POST /route              - Collect targets with one strategy")
	log.Println("  POST /scenario           - Generate a scenario from sea-state readings")
	log.Println("  POST /compare            - Run several strategies on one scenario")
	log.Println("  POST /path               - Single start/goal search")
	log.Println("  GET  /runs               - List stored runs (?id= for metrics)")
	log.Println("  GET  /health             - Check server status")
	log.Println("")
	log.Println("CORS enabled for all origins")
	log.Println("========================================")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Println("🛑 Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// scenarioFlags are shared by the commands that need one scenario
type scenarioFlags struct {
	config      *string
	envCSV      *string
	row         *int
	seed        *int64
	grid        *int
	obstacleDir *string
}

func addScenarioFlags(fs *flag.FlagSet) scenarioFlags {
	return scenarioFlags{
		config:      fs.String("config", "", "route request JSON file"),
		envCSV:      fs.String("env", "", "environment CSV to generate the scenario from"),
		row:         fs.Int("row", 0, "row of the environment CSV"),
		seed:        fs.Int64("seed", 1, "scenario generation seed"),
		grid:        fs.Int("grid", DefaultGridSize, "grid size"),
		obstacleDir: fs.String("obstacles", "", "directory of GeoJSON obstacle regions"),
	}
}

// request builds the route request from a config file or a generated CSV row
func (f scenarioFlags) request() (RouteRequest, error) {
	var req RouteRequest
	switch {
	case *f.config != "":
		loaded, err := LoadRouteRequest(*f.config)
		if err != nil {
			return req, err
		}
		req = loaded
	case *f.envCSV != "":
		rows, err := LoadEnvRecords(*f.envCSV)
		if err != nil {
			return req, err
		}
		if *f.row < 0 || *f.row >= len(rows) {
			return req, fmt.Errorf("row %d out of range (%d rows)", *f.row, len(rows))
		}
		req = RouteRequest{GridSize: *f.grid, Env: &rows[*f.row], Seed: *f.seed}
	default:
		return req, errors.New("either -config or -env is required")
	}

	if *f.obstacleDir != "" {
		gridSize := req.GridSize
		if gridSize == 0 {
			gridSize = DefaultGridSize
		}
		extra, err := LoadObstacleFiles(*f.obstacleDir, gridSize)
		if err != nil {
			return req, err
		}
		scenario := req.Scenario()
		scenario.Obstacles = withoutCells(mergeCells(scenario.Obstacles, extra), []Cell{scenario.Start})
		scenario.Targets = withoutCells(scenario.Targets, scenario.Obstacles)
		req.GridSize, req.Start = scenario.GridSize, scenario.Start
		req.Targets, req.Obstacles, req.Env = scenario.Targets, scenario.Obstacles, nil
	}
	return req, nil
}

func runRoute(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("route", flag.ContinueOnError)
	sf := addScenarioFlags(fs)
	strategy := fs.String("strategy", "", "nearest|lookahead[:k]|directional|fusion (overrides config)")
	conn := fs.String("connectivity", "", "four|eight (overrides config)")
	out := fs.String("out", "", "write the run record JSON here")
	geoOut := fs.String("geojson", "", "write the run as GeoJSON here")
	verbose := fs.Bool("v", false, "log engine decisions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := sf.request()
	if err != nil {
		return err
	}
	if *strategy != "" {
		req.Strategy = *strategy
	}
	if *conn != "" {
		req.Connectivity = *conn
	}

	cfg, scenario, err := req.EngineConfig()
	if err != nil {
		return err
	}
	if *verbose {
		cfg.Logger = log.Default()
	}

	started := time.Now()
	result, err := Route(cfg)
	if err != nil {
		return err
	}
	rec := RunRecord{
		Strategy:     cfg.Strategy,
		Connectivity: cfg.Connectivity,
		Scenario:     scenario,
		Result:       result,
		Metrics:      Evaluate(0, scenario, cfg.Strategy, result, time.Since(started)),
	}

	fmt.Printf("strategy=%s connectivity=%s terminal=%s collected=%d/%d dropped=%d path=%d iterations=%d\n",
		rec.Strategy, rec.Connectivity, result.Terminal, len(result.Collected), len(scenario.Targets),
		len(result.Dropped), len(result.Path), result.Iterations)
	if result.Reason != "" {
		fmt.Printf("reason=%s\n", result.Reason)
	}

	if *out != "" {
		if err := SaveRunRecord(rec, *out); err != nil {
			return err
		}
	}
	if *geoOut != "" {
		if err := SaveGeoJSON(rec, *geoOut); err != nil {
			return err
		}
	}
	return nil
}

func runGenerate(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	envCSV := fs.String("env", "", "environment CSV")
	row := fs.Int("row", 0, "row of the environment CSV")
	seed := fs.Int64("seed", 1, "generation seed")
	grid := fs.Int("grid", DefaultGridSize, "grid size")
	out := fs.String("out", "", "output file (stdout when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *envCSV == "" {
		return errors.New("-env is required")
	}

	rows, err := LoadEnvRecords(*envCSV)
	if err != nil {
		return err
	}
	if *row < 0 || *row >= len(rows) {
		return fmt.Errorf("row %d out of range (%d rows)", *row, len(rows))
	}

	scenario := GenerateScenario(*grid, Cell{}, rows[*row], rand.New(rand.NewSource(*seed)))
	data, err := json.MarshalIndent(scenario, "", "  ")
	if err != nil {
		return err
	}
	if *out == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(*out, data, 0644)
}

func runBatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("batch", flag.ContinueOnError)
	envCSV := fs.String("env", "", "environment CSV")
	strategies := fs.String("strategies", allStrategies, "comma separated strategies")
	conn := fs.String("connectivity", "", "four|eight; empty uses each strategy's default")
	seed := fs.Int64("seed", 1, "base seed; row i uses seed+i")
	grid := fs.Int("grid", DefaultGridSize, "grid size")
	workers := fs.Int("workers", 0, "worker goroutines (0 = NumCPU)")
	batchSize := fs.Int("batch-size", DefaultBatchSize, "scenarios per result file")
	limit := fs.Int("limit", 0, "only evaluate the first N rows")
	outDir := fs.String("out", ".", "directory for result CSV files")
	runID := fs.String("run-id", "", "run id (generated when empty)")
	storeKind := fs.String("store", DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", envOr("DEBRIS_DB_PATH", "debris.db"), "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *envCSV == "" {
		return errors.New("-env is required")
	}

	parsed, err := ParseStrategies(*strategies)
	if err != nil {
		return err
	}
	var connectivity *Connectivity
	if *conn != "" {
		c, err := ParseConnectivity(*conn)
		if err != nil {
			return err
		}
		connectivity = &c
	}

	rows, err := LoadEnvRecords(*envCSV)
	if err != nil {
		return err
	}
	if *limit > 0 && *limit < len(rows) {
		rows = rows[:*limit]
	}

	store, err := openStore(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = CloseIfSupported(store)
	}()

	report, err := RunBatch(ctx, BatchConfig{
		RunID:        *runID,
		GridSize:     *grid,
		Strategies:   parsed,
		Connectivity: connectivity,
		Seed:         *seed,
		Workers:      *workers,
		BatchSize:    *batchSize,
		OutDir:       *outDir,
		Store:        store,
	}, rows)
	if err != nil {
		return err
	}

	fmt.Printf("run=%s scenarios=%d rows=%d files=%d\n", report.RunID, report.Scenarios, report.Rows, len(report.Files))
	for _, s := range report.Summary {
		fmt.Printf("%-12s runs=%d rate=%.4f collisions=%.2f distance=%.1f elapsed=%.6fs stuck=%d\n",
			s.Algorithm, s.Runs, s.MeanCollectionRate, s.MeanCollisionCount,
			s.MeanSearchDistance, s.MeanElapsedTime, s.StuckRuns)
	}
	return nil
}

func runAnimate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("animate", flag.ContinueOnError)
	sf := addScenarioFlags(fs)
	strategies := fs.String("strategies", allStrategies, "up to four comma separated strategies")
	conn := fs.String("connectivity", "", "four|eight; empty uses each strategy's default")
	interval := fs.Duration("interval", 100*time.Millisecond, "delay between frames")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := sf.request()
	if err != nil {
		return err
	}
	parsed, err := ParseStrategies(*strategies)
	if err != nil {
		return err
	}
	if len(parsed) > maxPanels {
		return fmt.Errorf("at most %d strategies can be animated", maxPanels)
	}

	scenario := req.Scenario()
	panels := make([]AnimationPanel, 0, len(parsed))
	for _, strategy := range parsed {
		c, err := resolveConnectivity(*conn, strategy)
		if err != nil {
			return err
		}
		result, err := Route(scenario.EngineConfig(strategy, c))
		if err != nil {
			return err
		}
		panels = append(panels, AnimationPanel{Title: strategy.String(), Scenario: scenario, Result: result})
	}
	return Animate(ctx, panels, *interval)
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	runID := fs.String("run-id", "", "print the summary of this run")
	storeKind := fs.String("store", DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", envOr("DEBRIS_DB_PATH", "debris.db"), "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = CloseIfSupported(store)
	}()

	if *runID == "" {
		ids, err := store.ListRuns(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	}

	rows, ok, err := store.GetMetrics(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("run not found: %s", *runID)
	}
	for _, s := range Summarize(rows) {
		fmt.Printf("%-12s runs=%d rate=%.4f collisions=%.2f distance=%.1f stuck=%d\n",
			s.Algorithm, s.Runs, s.MeanCollectionRate, s.MeanCollisionCount, s.MeanSearchDistance, s.StuckRuns)
	}
	return nil
}
