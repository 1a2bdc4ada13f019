package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprint_StringIsLowerHex(t *testing.T) {
	var fp Fingerprint
	fp[0] = 0xab
	fp[31] = 0x01

	s := fp.String()
	require.Len(t, s, 64)
	require.Equal(t, "ab", s[:2])
	require.Equal(t, "01", s[62:])
}

func TestFingerprint_Compare(t *testing.T) {
	var low, high Fingerprint
	high[5] = 1

	require.Equal(t, -1, low.Compare(high))
	require.Equal(t, 1, high.Compare(low))
	require.Equal(t, 0, low.Compare(low))
}

func TestCompareRecords(t *testing.T) {
	require.Equal(t, -1, CompareRecords(Record{9}, Record{1, 1}))
	require.Equal(t, 1, CompareRecords(Record{1, 2}, Record{1, 1}))
	require.Equal(t, 0, CompareRecords(Record{3, 4}, Record{3, 4}))
}

func TestParseOperationKind(t *testing.T) {
	for op := OperationKind(0); op < NumOperationKinds; op++ {
		parsed, err := ParseOperationKind(op.String())
		require.NoError(t, err)
		require.Equal(t, op, parsed)
	}

	parsed, err := ParseOperationKind("  Matrix-Vector ")
	require.NoError(t, err)
	require.Equal(t, OpMatrixVector, parsed)

	_, err = ParseOperationKind("convolution")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOperationKind_StringUnknown(t *testing.T) {
	require.Equal(t, "operation(9)", OperationKind(9).String())
	require.False(t, OperationKind(9).Valid())
}

func TestHardwareCodeFor(t *testing.T) {
	code, err := HardwareCodeFor(OpVectorDot)
	require.NoError(t, err)
	require.Equal(t, HardwareVectorDot, code)
	require.True(t, code.Valid())

	_, err = HardwareCodeFor(NumOperationKinds)
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.False(t, HardwareCode(4).Valid())
}
