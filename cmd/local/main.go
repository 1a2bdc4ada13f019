package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nemanja-m/skewshuffle/internal/metrics"
	"github.com/nemanja-m/skewshuffle/internal/shared/config"
	"github.com/nemanja-m/skewshuffle/internal/shared/logging"
	"github.com/nemanja-m/skewshuffle/pkg/local"
	"github.com/nemanja-m/skewshuffle/pkg/mapping"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file")
		input      = flag.String("input", "", "record files glob pattern (overrides config)")
		output     = flag.String("output", "", "directory for per-round assignment files (overrides config)")
		strategy   = flag.String("strategy", "", "mapping strategy: naive, partition-bounded, hardware-strict (overrides config)")
		rounds     = flag.Int("rounds", 0, "number of rebalancing rounds (overrides config)")
	)
	flag.Parse()

	cfg, err := config.LoadSimulation(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *input != "" {
		cfg.Input = *input
	}
	if *output != "" {
		cfg.Output = *output
	}
	if *strategy != "" {
		cfg.Strategy = *strategy
	}
	if *rounds > 0 {
		cfg.Rounds = *rounds
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	os.Exit(simulate(cfg, logger))
}

// simulate runs the configured rounds and returns the process exit code.
// Failures are logged here so deferred cleanup runs before main exits.
func simulate(cfg *config.SimulationConfig, logger logging.Logger) int {
	kind, err := mapping.ParseKind(cfg.Strategy)
	if err != nil {
		logger.Error("Invalid strategy", "error", err)
		return 1
	}
	layout, err := cfg.Layout.Build()
	if err != nil {
		logger.Error("Invalid layout", "error", err)
		return 1
	}

	var recorder local.Recorder = metrics.NewNop()
	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		prom, err := metrics.NewPrometheus(reg, "")
		if err != nil {
			logger.Error("Failed to register metrics", "error", err)
			return 1
		}
		recorder = prom

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		server := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			logger.Info("Serving metrics", "addr", cfg.Metrics.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server error", "error", err)
			}
		}()
		defer server.Close()
	}

	run, err := local.NewRun(local.Config{
		Reducers:      cfg.Reducers,
		Strategy:      kind,
		Layout:        layout,
		OperationSize: cfg.OpSize,
		Workers:       cfg.Workers,
		OutputDir:     cfg.Output,
	}, local.WithLogger(logger), local.WithRecorder(recorder))
	if err != nil {
		logger.Error("Failed to create run", "error", err)
		return 1
	}

	gen, err := local.NewGenerator(cfg.Seed, cfg.RecordWidth, cfg.ZipfAlpha)
	if err != nil {
		logger.Error("Failed to create workload generator", "error", err)
		return 1
	}

	var source local.BatchSource = gen
	if cfg.Input != "" {
		records, err := local.ReadRecordFiles(cfg.Input)
		if err != nil {
			logger.Error("Failed to read records", "input", cfg.Input, "error", err)
			return 1
		}
		logger.Info("Loaded records", "input", cfg.Input, "records", len(records))
		source = local.NewReplaySource(records, gen)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := local.NewEngine(run, source, cfg.RecordsPerRound, logger)
	reports, err := engine.Run(ctx, cfg.Rounds)
	if err != nil {
		logger.Error("Run failed", "run_id", run.ID.String(), "completed_rounds", len(reports), "error", err)
		return 1
	}

	last := reports[len(reports)-1]
	logger.Info("Final partition table",
		"run_id", run.ID.String(),
		"weights", last.Weights,
		"boundaries", last.Boundaries,
	)
	return 0
}
