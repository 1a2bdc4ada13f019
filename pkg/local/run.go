package local

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/google/uuid"

	"github.com/nemanja-m/skewshuffle/internal/shared/logging"
	"github.com/nemanja-m/skewshuffle/pkg/core"
	"github.com/nemanja-m/skewshuffle/pkg/mapping"
	"github.com/nemanja-m/skewshuffle/pkg/model"
	"github.com/nemanja-m/skewshuffle/pkg/partition"
	"github.com/nemanja-m/skewshuffle/pkg/rebalance"
)

// RuntimeEstimator produces one runtime per reducer for an assignment.
// *model.Model estimates them; a measuring harness can report observed ones.
type RuntimeEstimator interface {
	Estimate(n int, assignment []int, ops []core.OperationKind) ([]float64, error)
}

// Recorder receives the outcome of every round.
type Recorder interface {
	ObserveRound(round int, weights, runtimes []float64)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRound(int, []float64, []float64) {}

type Config struct {
	Reducers int
	Strategy mapping.Kind
	Layout   model.Layout

	// OperationSize is the word-level operation count of one record.
	OperationSize int
	// Workers bounds the goroutines used for digesting and estimation.
	Workers int
	// OutputDir receives round-NNNN.txt assignment files when set.
	OutputDir string
}

// RoundReport summarizes one completed round.
type RoundReport struct {
	Round      int
	Assignment []int
	Runtimes   []float64
	Weights    []float64
	Boundaries []float64
	Makespan   float64
	Imbalance  float64
}

// Run holds the state of one simulation run. The partition table lives as
// long as the run and is written only by its rebalancer.
type Run struct {
	ID uuid.UUID

	cfg        Config
	round      int
	table      *partition.Table
	strategy   mapping.Strategy
	estimator  RuntimeEstimator
	rebalancer *rebalance.Rebalancer
	recorder   Recorder
	logger     logging.Logger
}

type RunOption func(*Run)

func WithLogger(logger logging.Logger) RunOption {
	return func(r *Run) {
		r.logger = logger
	}
}

func WithRecorder(recorder Recorder) RunOption {
	return func(r *Run) {
		r.recorder = recorder
	}
}

// WithEstimator replaces the performance model, e.g. with measured runtimes.
func WithEstimator(estimator RuntimeEstimator) RunOption {
	return func(r *Run) {
		r.estimator = estimator
	}
}

func NewRun(cfg Config, opts ...RunOption) (*Run, error) {
	table, err := partition.NewUniform(cfg.Reducers)
	if err != nil {
		return nil, err
	}
	strategy, err := mapping.New(cfg.Strategy, cfg.Reducers, table)
	if err != nil {
		return nil, err
	}
	rebalancer, err := rebalance.New(table)
	if err != nil {
		return nil, err
	}

	r := &Run{
		ID:         uuid.New(),
		cfg:        cfg,
		table:      table,
		strategy:   strategy,
		rebalancer: rebalancer,
		recorder:   nopRecorder{},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	if r.estimator == nil {
		layout := cfg.Layout
		if layout == nil {
			layout = model.DefaultLayout()
		}
		opSize := cfg.OperationSize
		if opSize == 0 {
			opSize = model.DefaultOperationSize
		}
		m, err := model.New(layout, model.WithOperationSize(opSize), model.WithWorkers(cfg.Workers))
		if err != nil {
			return nil, err
		}
		r.estimator = m
	}

	return r, nil
}

// Round returns the number of completed rounds.
func (r *Run) Round() int {
	return r.round
}

// Table exposes the run's partition table for read access.
func (r *Run) Table() *partition.Table {
	return r.table
}

// Step runs one round: digest, map, estimate, write the assignment, rebalance.
func (r *Run) Step(batch Batch) (RoundReport, error) {
	if len(batch.Records) != len(batch.Ops) {
		return RoundReport{}, fmt.Errorf("%w: %d records with %d operation tags",
			core.ErrInvalidArgument, len(batch.Records), len(batch.Ops))
	}

	fingerprints := core.DigestBatch(batch.Records, r.cfg.Workers)

	var codes []core.HardwareCode
	if r.strategy.RequiresHardwareCodes() {
		var err error
		if codes, err = batch.HardwareCodes(); err != nil {
			return RoundReport{}, err
		}
	}

	assignment, err := mapping.Assign(r.strategy, fingerprints, codes)
	if err != nil {
		return RoundReport{}, fmt.Errorf("round %d: mapping: %w", r.round, err)
	}

	runtimes, err := r.estimator.Estimate(r.cfg.Reducers, assignment, batch.Ops)
	if err != nil {
		return RoundReport{}, fmt.Errorf("round %d: estimating runtimes: %w", r.round, err)
	}

	// The table is swapped last so a failed round leaves it untouched.
	if r.cfg.OutputDir != "" {
		path := filepath.Join(r.cfg.OutputDir, fmt.Sprintf("round-%04d.txt", r.round))
		if err := WriteAssignments(path, assignment); err != nil {
			return RoundReport{}, fmt.Errorf("round %d: writing assignments: %w", r.round, err)
		}
	}

	weights, err := r.rebalancer.Rebalance(runtimes)
	if err != nil {
		return RoundReport{}, fmt.Errorf("round %d: rebalancing: %w", r.round, err)
	}

	report := RoundReport{
		Round:      r.round,
		Assignment: assignment,
		Runtimes:   runtimes,
		Weights:    weights,
		Boundaries: r.table.Snapshot().Boundaries(),
	}
	report.Makespan, report.Imbalance = imbalance(runtimes)

	r.recorder.ObserveRound(r.round, weights, runtimes)
	r.logger.Info("Round completed",
		"run_id", r.ID.String(),
		"round", r.round,
		"records", len(batch.Records),
		"makespan", report.Makespan,
		"imbalance", report.Imbalance,
	)
	for i := range runtimes {
		r.logger.Debug("Reducer state",
			"run_id", r.ID.String(),
			"round", r.round,
			"reducer", i,
			"runtime", runtimes[i],
			"weight", weights[i],
		)
	}

	r.round++
	return report, nil
}

// imbalance returns the slowest runtime and its ratio to the mean runtime.
func imbalance(runtimes []float64) (makespan, ratio float64) {
	if len(runtimes) == 0 {
		return 0, 0
	}
	makespan = slices.Max(runtimes)
	total := 0.0
	for _, r := range runtimes {
		total += r
	}
	mean := total / float64(len(runtimes))
	if mean == 0 {
		return makespan, 0
	}
	return makespan, makespan / mean
}
