package mapping

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nemanja-m/skewshuffle/pkg/core"
)

func TestAssign_ParallelOutput(t *testing.T) {
	table := uniformTable(t, 4)
	strategy, err := New(KindPartitionBounded, 4, table)
	require.NoError(t, err)

	fingerprints := []core.Fingerprint{
		fingerprintAt(0.1),
		fingerprintAt(0.9),
		fingerprintAt(0.3),
		fingerprintAt(0.6),
	}
	out, err := Assign(strategy, fingerprints, nil)
	require.NoError(t, err)
	require.Equal(t, []int{0, 3, 1, 2}, out)
}

func TestAssign_InRange(t *testing.T) {
	const n = 5
	table := uniformTable(t, n)

	records := make([]core.Record, 500)
	for i := range records {
		records[i] = core.Record{uint32(i), uint32(i) * 31}
	}
	fingerprints := core.DigestBatch(records, 4)
	codes := make([]core.HardwareCode, len(records))
	for i := range codes {
		codes[i] = core.HardwareCode(i % 4)
	}

	for _, kind := range Kinds() {
		strategy, err := New(kind, n, table)
		require.NoError(t, err)

		out, err := Assign(strategy, fingerprints, codes)
		require.NoError(t, err)
		require.Len(t, out, len(records))
		for _, idx := range out {
			require.GreaterOrEqual(t, idx, 0)
			require.Less(t, idx, n)
		}
	}
}

func TestAssign_HardwareCodesRequired(t *testing.T) {
	strategy, err := New(KindHardwareStrict, 4, uniformTable(t, 4))
	require.NoError(t, err)

	_, err = Assign(strategy, []core.Fingerprint{fingerprintAt(0.2)}, nil)
	require.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestAssign_UnknownHardwareCodeFails(t *testing.T) {
	strategy, err := New(KindHardwareStrict, 4, uniformTable(t, 4))
	require.NoError(t, err)

	_, err = Assign(strategy,
		[]core.Fingerprint{fingerprintAt(0.2), fingerprintAt(0.4)},
		[]core.HardwareCode{core.HardwareVectorAdd, 9},
	)
	require.ErrorIs(t, err, core.ErrInvalidArgument)
	require.ErrorContains(t, err, "record 1")
}

func TestAssign_NilStrategy(t *testing.T) {
	_, err := Assign(nil, nil, nil)
	require.ErrorIs(t, err, core.ErrInvalidArgument)
}
