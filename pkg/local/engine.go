package local

import (
	"context"
	"fmt"
	"os"

	"github.com/nemanja-m/skewshuffle/internal/shared/logging"
	"github.com/nemanja-m/skewshuffle/pkg/core"
)

// BatchSource supplies the records of every round.
type BatchSource interface {
	Next(size int) Batch
}

// ReplaySource returns the same captured batch every round.
type ReplaySource struct {
	batch Batch
}

// NewReplaySource tags captured records with operations drawn once from gen.
func NewReplaySource(records []core.Record, gen *Generator) *ReplaySource {
	ops := gen.Next(len(records)).Ops
	return &ReplaySource{batch: Batch{Records: records, Ops: ops}}
}

func (s *ReplaySource) Next(int) Batch {
	return s.batch
}

// Engine drives a Run for a fixed number of rounds.
type Engine struct {
	run             *Run
	source          BatchSource
	recordsPerRound int
	logger          logging.Logger
}

func NewEngine(run *Run, source BatchSource, recordsPerRound int, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		run:             run,
		source:          source,
		recordsPerRound: recordsPerRound,
		logger:          logger,
	}
}

// Run executes rounds until all are done or ctx is cancelled between rounds.
func (e *Engine) Run(ctx context.Context, rounds int) ([]RoundReport, error) {
	if rounds <= 0 {
		return nil, fmt.Errorf("%w: rounds must be positive, got %d", core.ErrInvalidArgument, rounds)
	}
	if dir := e.run.cfg.OutputDir; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	e.logger.Info("Starting run",
		"run_id", e.run.ID.String(),
		"reducers", e.run.cfg.Reducers,
		"strategy", string(e.run.cfg.Strategy),
		"rounds", rounds,
	)

	reports := make([]RoundReport, 0, rounds)
	for range rounds {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := e.run.Step(e.source.Next(e.recordsPerRound))
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}

	e.logger.Info("Run completed",
		"run_id", e.run.ID.String(),
		"rounds", len(reports),
		"first_imbalance", reports[0].Imbalance,
		"last_imbalance", reports[len(reports)-1].Imbalance,
	)
	return reports, nil
}
