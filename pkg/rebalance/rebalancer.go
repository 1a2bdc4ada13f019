package rebalance

import (
	"fmt"
	"math"

	"github.com/nemanja-m/skewshuffle/pkg/core"
	"github.com/nemanja-m/skewshuffle/pkg/partition"
)

// Rebalancer is the only writer of a run's partition table. Between rounds it
// shifts weight away from reducers that ran longer than their fair share.
type Rebalancer struct {
	table *partition.Table
}

func New(table *partition.Table) (*Rebalancer, error) {
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("%w: empty partition table", core.ErrInvalidArgument)
	}
	return &Rebalancer{table: table}, nil
}

// Weights computes the next weight vector from the current weights and the
// measured or modeled runtime of every reducer.
//
// Each reducer's throughput is weight / (runtime / total). Reducers that did no
// work keep their weight. Throughputs are then normalized to sum to one. When
// no reducer did any work the weights are returned unchanged.
func Weights(weights, runtimes []float64) ([]float64, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("%w: no reducers", core.ErrInvalidArgument)
	}
	if len(runtimes) != len(weights) {
		return nil, fmt.Errorf("%w: %d runtimes for %d reducers", core.ErrInvalidArgument, len(runtimes), len(weights))
	}

	total := 0.0
	for i, r := range runtimes {
		if r < 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, fmt.Errorf("%w: runtime of reducer %d is %v", core.ErrInvalidArgument, i, r)
		}
		total += r
	}
	if total == 0 {
		return append([]float64(nil), weights...), nil
	}

	throughput := make([]float64, len(weights))
	sum := 0.0
	for i, w := range weights {
		if runtimes[i] > 0 {
			throughput[i] = w / (runtimes[i] / total)
		} else {
			throughput[i] = w
		}
		sum += throughput[i]
	}
	if sum <= 0 || math.IsInf(sum, 0) || math.IsNaN(sum) {
		return nil, fmt.Errorf("%w: throughput sum is %v", core.ErrInternal, sum)
	}

	next := make([]float64, len(weights))
	for i, tp := range throughput {
		next[i] = tp / sum
	}
	return next, nil
}

// Rebalance feeds one round of runtimes back into the partition table and
// returns the weights now in effect. A failed update leaves the table as it was.
func (r *Rebalancer) Rebalance(runtimes []float64) ([]float64, error) {
	snap := r.table.Snapshot()
	next, err := Weights(snap.Weights(), runtimes)
	if err != nil {
		return nil, err
	}
	if err := r.table.Rebalance(next); err != nil {
		return nil, err
	}
	return next, nil
}
