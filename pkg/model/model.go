package model

import (
	"fmt"

	"github.com/nemanja-m/skewshuffle/internal/workpool"
	"github.com/nemanja-m/skewshuffle/pkg/core"
)

// DefaultOperationSize is the number of word-level operations one record carries.
const DefaultOperationSize = 16

// Model turns a reducer assignment into per-reducer runtime estimates.
type Model struct {
	layout     Layout
	opSize     int
	numWorkers int
}

type Option func(*Model)

// WithOperationSize sets the per-record operation size.
func WithOperationSize(size int) Option {
	return func(m *Model) {
		m.opSize = size
	}
}

// WithWorkers sets how many reducers are evaluated concurrently.
func WithWorkers(n int) Option {
	return func(m *Model) {
		m.numWorkers = n
	}
}

func New(layout Layout, opts ...Option) (*Model, error) {
	if layout == nil {
		return nil, fmt.Errorf("%w: nil layout", core.ErrInvalidArgument)
	}
	m := &Model{
		layout:     layout,
		opSize:     DefaultOperationSize,
		numWorkers: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.opSize <= 0 {
		return nil, fmt.Errorf("%w: operation size must be positive, got %d", core.ErrInvalidArgument, m.opSize)
	}
	return m, nil
}

// Counts tallies records per (reducer, operation kind).
func Counts(n int, assignment []int, ops []core.OperationKind) ([][core.NumOperationKinds]int, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: reducer count must be positive, got %d", core.ErrInvalidArgument, n)
	}
	if len(assignment) != len(ops) {
		return nil, fmt.Errorf("%w: %d assignments for %d operations", core.ErrInvalidArgument, len(assignment), len(ops))
	}

	counts := make([][core.NumOperationKinds]int, n)
	for i, reducer := range assignment {
		if reducer < 0 || reducer >= n {
			return nil, fmt.Errorf("%w: record %d assigned to reducer %d of %d", core.ErrInvalidArgument, i, reducer, n)
		}
		if !ops[i].Valid() {
			return nil, fmt.Errorf("%w: record %d has unknown operation %d", core.ErrInvalidArgument, i, uint8(ops[i]))
		}
		counts[reducer][ops[i]]++
	}
	return counts, nil
}

// Estimate returns one runtime per reducer: the sum over operation kinds of the
// reducer's estimator applied to count*opSize.
func (m *Model) Estimate(n int, assignment []int, ops []core.OperationKind) ([]float64, error) {
	counts, err := Counts(n, assignment, ops)
	if err != nil {
		return nil, err
	}

	runtimes := make([]float64, n)
	errs := make([]error, n)
	workpool.ForEach(n, m.numWorkers, func(reducer int) {
		estimator := m.layout.EstimatorFor(reducer, n)
		total := 0.0
		for op := range core.NumOperationKinds {
			t, err := estimator.Estimate(counts[reducer][op]*m.opSize, op)
			if err != nil {
				errs[reducer] = fmt.Errorf("reducer %d: %w", reducer, err)
				return
			}
			total += t
		}
		runtimes[reducer] = total
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return runtimes, nil
}
