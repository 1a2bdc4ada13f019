package local

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/nemanja-m/skewshuffle/pkg/core"
)

// Batch is one round of input: records and the operation each one carries.
type Batch struct {
	Records []core.Record
	Ops     []core.OperationKind
}

// HardwareCodes derives the placement code of every record from its operation.
func (b Batch) HardwareCodes() ([]core.HardwareCode, error) {
	codes := make([]core.HardwareCode, len(b.Ops))
	for i, op := range b.Ops {
		code, err := core.HardwareCodeFor(op)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		codes[i] = code
	}
	return codes, nil
}

// ZipfCDF returns the cumulative distribution of ranks 1..m weighted 1/k^alpha.
// The last entry is pinned to 1.0.
func ZipfCDF(m int, alpha float64) []float64 {
	cdf := make([]float64, m)
	if m == 0 {
		return cdf
	}
	alpha = max(alpha, 0)

	sum := 0.0
	for k := range m {
		cdf[k] = 1.0 / math.Pow(float64(k+1), alpha)
		sum += cdf[k]
	}
	acc := 0.0
	for k := range m {
		acc += cdf[k] / sum
		cdf[k] = acc
	}
	cdf[m-1] = 1.0
	return cdf
}

// ZipfPick returns the first rank whose cumulative probability covers u.
func ZipfPick(cdf []float64, u float64) int {
	if len(cdf) == 0 {
		return 0
	}
	idx := sort.SearchFloat64s(cdf, u)
	return min(idx, len(cdf)-1)
}

// Generator produces reproducible synthetic batches. Operation kinds follow a
// Zipf distribution so that some kinds dominate the workload.
type Generator struct {
	rng   *rand.Rand
	width int
	cdf   []float64
}

func NewGenerator(seed uint64, width int, alpha float64) (*Generator, error) {
	if width < 0 {
		return nil, fmt.Errorf("%w: record width must not be negative, got %d", core.ErrInvalidArgument, width)
	}
	if alpha < 0 || math.IsNaN(alpha) {
		return nil, fmt.Errorf("%w: zipf alpha must not be negative, got %v", core.ErrInvalidArgument, alpha)
	}
	return &Generator{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		width: width,
		cdf:   ZipfCDF(int(core.NumOperationKinds), alpha),
	}, nil
}

// Next draws a batch of size records.
func (g *Generator) Next(size int) Batch {
	batch := Batch{
		Records: make([]core.Record, size),
		Ops:     make([]core.OperationKind, size),
	}
	for i := range size {
		record := make(core.Record, g.width)
		for j := range record {
			record[j] = g.rng.Uint32()
		}
		batch.Records[i] = record
		batch.Ops[i] = core.OperationKind(ZipfPick(g.cdf, g.rng.Float64()))
	}
	return batch
}
