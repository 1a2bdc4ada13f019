package mapping

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/nemanja-m/skewshuffle/pkg/core"
	"github.com/nemanja-m/skewshuffle/pkg/partition"
)

// Kind names a mapping strategy.
type Kind string

const (
	KindNaive            Kind = "naive"
	KindPartitionBounded Kind = "partition-bounded"
	KindHardwareStrict   Kind = "hardware-strict"
)

// Kinds lists every supported strategy.
func Kinds() []Kind {
	return []Kind{KindNaive, KindPartitionBounded, KindHardwareStrict}
}

// ParseKind resolves a strategy name.
func ParseKind(name string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, k := range Kinds() {
		if k == kind {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown mapping strategy %q", core.ErrInvalidArgument, name)
}

// Strategy maps a fingerprint to a reducer index in [0, n).
//
// The set of strategies is closed: Naive, PartitionBounded and HardwareStrict.
type Strategy interface {
	Kind() Kind

	// Reducers returns the number of reducers the strategy maps onto.
	Reducers() int

	// RequiresHardwareCodes reports whether Assign needs one code per fingerprint.
	RequiresHardwareCodes() bool

	// mapper returns the per-record function for one pass. Table-backed
	// strategies bind it to a single snapshot.
	mapper() (func(fp core.Fingerprint, code core.HardwareCode) (int, error), error)
}

// New builds the strategy of the given kind over n reducers. The table is
// ignored by the naive strategy; the others require it to hold n partitions.
func New(kind Kind, n int, table *partition.Table) (Strategy, error) {
	if kind == KindPartitionBounded || kind == KindHardwareStrict {
		if table != nil && table.Len() != n {
			return nil, fmt.Errorf("%w: %s strategy over %d reducers with a %d-partition table",
				core.ErrInvalidArgument, kind, n, table.Len())
		}
	}
	switch kind {
	case KindNaive:
		return NewNaive(n)
	case KindPartitionBounded:
		return NewPartitionBounded(table)
	case KindHardwareStrict:
		return NewHardwareStrict(table)
	default:
		return nil, fmt.Errorf("%w: unknown mapping strategy %q", core.ErrInvalidArgument, kind)
	}
}

// Normalize interprets the first 8 bytes of a fingerprint as a little-endian
// uint64 and scales it by the largest uint64 into [0, 1].
func Normalize(fp core.Fingerprint) float64 {
	return float64(binary.LittleEndian.Uint64(fp[:8])) / math.MaxUint64
}

// Naive assigns firstByte(fingerprint) mod n, ignoring partition weights.
type Naive struct {
	n int
}

func NewNaive(n int) (*Naive, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: reducer count must be positive, got %d", core.ErrInvalidArgument, n)
	}
	return &Naive{n: n}, nil
}

func (s *Naive) Kind() Kind                  { return KindNaive }
func (s *Naive) Reducers() int               { return s.n }
func (s *Naive) RequiresHardwareCodes() bool { return false }

// Map returns the reducer for fp.
func (s *Naive) Map(fp core.Fingerprint) int {
	return int(fp[0]) % s.n
}

func (s *Naive) mapper() (func(core.Fingerprint, core.HardwareCode) (int, error), error) {
	return func(fp core.Fingerprint, _ core.HardwareCode) (int, error) {
		return s.Map(fp), nil
	}, nil
}

// PartitionBounded places the normalized fingerprint on the partition table.
type PartitionBounded struct {
	table *partition.Table
}

func NewPartitionBounded(table *partition.Table) (*PartitionBounded, error) {
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("%w: empty partition table", core.ErrInvalidArgument)
	}
	return &PartitionBounded{table: table}, nil
}

func (s *PartitionBounded) Kind() Kind                  { return KindPartitionBounded }
func (s *PartitionBounded) Reducers() int               { return s.table.Len() }
func (s *PartitionBounded) RequiresHardwareCodes() bool { return false }

// Map returns the reducer for fp against the current table.
func (s *PartitionBounded) Map(fp core.Fingerprint) (int, error) {
	return s.table.Locate(Normalize(fp))
}

func (s *PartitionBounded) mapper() (func(core.Fingerprint, core.HardwareCode) (int, error), error) {
	snap := s.table.Snapshot()
	if snap == nil {
		return nil, fmt.Errorf("%w: empty partition table", core.ErrInvalidArgument)
	}
	return func(fp core.Fingerprint, _ core.HardwareCode) (int, error) {
		return snap.Locate(Normalize(fp))
	}, nil
}

// SubRange is the slice of [0, 1] a hardware code compresses normalized values into.
type SubRange struct {
	Low  float64
	High float64
}

// Compress maps value in [0, 1] linearly onto the sub-range.
func (r SubRange) Compress(value float64) float64 {
	return r.Low + value*(r.High-r.Low)
}

// hardwareThreshold splits codes between the lower and upper half of the pool.
const hardwareThreshold = 2

var (
	lowerHalf = SubRange{Low: 0, High: 0.5}
	upperHalf = SubRange{Low: 0.5, High: 1.0}
)

// SubRangeFor returns the compression range of a hardware code. Codes below 2
// use [0, 0.5), the remaining defined codes use [0.5, 1.0).
func SubRangeFor(code core.HardwareCode) (SubRange, error) {
	if !code.Valid() {
		return SubRange{}, fmt.Errorf("%w: unknown hardware code %d", core.ErrInvalidArgument, code)
	}
	if code < hardwareThreshold {
		return lowerHalf, nil
	}
	return upperHalf, nil
}

// HardwareStrict compresses the normalized fingerprint into the half of the
// value space selected by the record's hardware code before the table lookup.
type HardwareStrict struct {
	table *partition.Table
}

func NewHardwareStrict(table *partition.Table) (*HardwareStrict, error) {
	if table == nil || table.Len() == 0 {
		return nil, fmt.Errorf("%w: empty partition table", core.ErrInvalidArgument)
	}
	return &HardwareStrict{table: table}, nil
}

func (s *HardwareStrict) Kind() Kind                  { return KindHardwareStrict }
func (s *HardwareStrict) Reducers() int               { return s.table.Len() }
func (s *HardwareStrict) RequiresHardwareCodes() bool { return true }

// Map returns the reducer for fp placed within the sub-range of code.
func (s *HardwareStrict) Map(fp core.Fingerprint, code core.HardwareCode) (int, error) {
	snap := s.table.Snapshot()
	if snap == nil {
		return 0, fmt.Errorf("%w: empty partition table", core.ErrInvalidArgument)
	}
	return locateStrict(snap, fp, code)
}

func (s *HardwareStrict) mapper() (func(core.Fingerprint, core.HardwareCode) (int, error), error) {
	snap := s.table.Snapshot()
	if snap == nil {
		return nil, fmt.Errorf("%w: empty partition table", core.ErrInvalidArgument)
	}
	return func(fp core.Fingerprint, code core.HardwareCode) (int, error) {
		return locateStrict(snap, fp, code)
	}, nil
}

func locateStrict(snap *partition.Snapshot, fp core.Fingerprint, code core.HardwareCode) (int, error) {
	sub, err := SubRangeFor(code)
	if err != nil {
		return 0, err
	}
	return snap.Locate(sub.Compress(Normalize(fp)))
}
