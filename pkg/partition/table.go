package partition

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/nemanja-m/skewshuffle/pkg/core"
)

// Tolerance is the allowed floating-point drift when checking that weights sum to one.
const Tolerance = 1e-9

// Snapshot is an immutable view of the partition table for one mapping pass.
//
// Reducer i owns the half-open interval (Boundaries[i-1], Boundaries[i]], and
// reducer 0 additionally owns everything at or below Boundaries[0].
type Snapshot struct {
	boundaries []float64
	weights    []float64
}

// Len returns the number of reducers.
func (s *Snapshot) Len() int {
	return len(s.boundaries)
}

// Boundaries returns a copy of the cumulative boundaries.
func (s *Snapshot) Boundaries() []float64 {
	return append([]float64(nil), s.boundaries...)
}

// Weights returns a copy of the per-reducer target load shares.
func (s *Snapshot) Weights() []float64 {
	return append([]float64(nil), s.weights...)
}

// Locate returns the smallest reducer index i with value <= b[i].
// Values below b[0] land on reducer 0 and values past the last boundary land on
// the last reducer. A value equal to a boundary belongs to the lower partition.
func (s *Snapshot) Locate(value float64) (int, error) {
	n := len(s.boundaries)
	if n == 0 {
		return 0, fmt.Errorf("%w: empty partition table", core.ErrInvalidArgument)
	}
	if value <= s.boundaries[0] {
		return 0, nil
	}

	// Linear scan; reducer counts are in the tens.
	i := 0
	for i < n-1 && value > s.boundaries[i] {
		i++
	}
	// Equal neighbouring boundaries describe zero-width partitions; never stop
	// past the first boundary that already covers the value.
	for i > 0 && s.boundaries[i-1] >= value {
		i--
	}
	return i, nil
}

// Table holds the partition boundaries and weights of one run.
//
// Readers take a Snapshot per pass; Rebalance swaps in a fully computed
// replacement so a reader never observes a partially updated table.
type Table struct {
	current atomic.Pointer[Snapshot]
}

// NewUniform creates a table of n equal-width partitions.
func NewUniform(n int) (*Table, error) {
	t := &Table{}
	if err := t.InitializeUniform(n); err != nil {
		return nil, err
	}
	return t, nil
}

// InitializeUniform resets the table to b[i] = (i+1)/n with weights 1/n.
func (t *Table) InitializeUniform(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: reducer count must be positive, got %d", core.ErrInvalidArgument, n)
	}

	weights := make([]float64, n)
	boundaries := make([]float64, n)
	for i := range n {
		weights[i] = 1.0 / float64(n)
		boundaries[i] = float64(i+1) / float64(n)
	}
	boundaries[n-1] = 1.0

	t.current.Store(&Snapshot{boundaries: boundaries, weights: weights})
	return nil
}

// Snapshot returns the table state for the current round. It is nil before
// the table has been initialized.
func (t *Table) Snapshot() *Snapshot {
	return t.current.Load()
}

// Len returns the number of reducers, or zero for an uninitialized table.
func (t *Table) Len() int {
	snap := t.Snapshot()
	if snap == nil {
		return 0
	}
	return snap.Len()
}

// Locate resolves value against the current snapshot.
func (t *Table) Locate(value float64) (int, error) {
	snap := t.Snapshot()
	if snap == nil {
		return 0, fmt.Errorf("%w: empty partition table", core.ErrInvalidArgument)
	}
	return snap.Locate(value)
}

// Rebalance replaces weights and regenerates boundaries as their running sum,
// clamping the final boundary to 1.0. On error the table is left unchanged.
func (t *Table) Rebalance(weights []float64) error {
	snap := t.Snapshot()
	if snap == nil || snap.Len() == 0 {
		return fmt.Errorf("%w: empty partition table", core.ErrInvalidArgument)
	}
	if len(weights) != snap.Len() {
		return fmt.Errorf("%w: got %d weights for %d reducers", core.ErrInvalidArgument, len(weights), snap.Len())
	}

	next := &Snapshot{
		boundaries: Boundaries(weights),
		weights:    append([]float64(nil), weights...),
	}
	if err := next.Validate(); err != nil {
		return err
	}

	t.current.Store(next)
	return nil
}

// Boundaries returns the cumulative sum of weights with the final entry set to 1.0.
// Partial sums are capped at 1.0 so rounding cannot break monotonicity.
func Boundaries(weights []float64) []float64 {
	if len(weights) == 0 {
		return nil
	}
	boundaries := make([]float64, len(weights))
	boundaries[0] = math.Min(weights[0], 1.0)
	for i := 1; i < len(weights); i++ {
		boundaries[i] = math.Min(boundaries[i-1]+weights[i], 1.0)
	}
	boundaries[len(boundaries)-1] = 1.0
	return boundaries
}

// Validate checks the snapshot invariants: non-negative weights summing to one
// and non-decreasing boundaries ending at 1.0.
func (s *Snapshot) Validate() error {
	if len(s.weights) != len(s.boundaries) {
		return fmt.Errorf("%w: %d weights for %d boundaries", core.ErrInternal, len(s.weights), len(s.boundaries))
	}

	sum := 0.0
	for i, w := range s.weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: weight %d is %v", core.ErrInternal, i, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > Tolerance {
		return fmt.Errorf("%w: weights sum to %v", core.ErrInternal, sum)
	}

	prev := 0.0
	for i, b := range s.boundaries {
		if b < prev || b > 1.0 {
			return fmt.Errorf("%w: boundary %d is %v after %v", core.ErrInternal, i, b, prev)
		}
		prev = b
	}
	if len(s.boundaries) > 0 && s.boundaries[len(s.boundaries)-1] != 1.0 {
		return fmt.Errorf("%w: last boundary is %v", core.ErrInternal, s.boundaries[len(s.boundaries)-1])
	}
	return nil
}
