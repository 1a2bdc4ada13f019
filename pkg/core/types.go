package core

import (
	"bytes"
	"cmp"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
)

// FingerprintSize is the size of a record digest in bytes.
const FingerprintSize = 32

// Record is an opaque fixed-width payload of 32-bit words.
type Record []uint32

// CompareRecords orders records word by word. A shorter record orders first.
func CompareRecords(left, right Record) int {
	if c := cmp.Compare(len(left), len(right)); c != 0 {
		return c
	}
	return slices.Compare(left, right)
}

// Fingerprint is the SHA-256 digest of a record's byte representation.
type Fingerprint [FingerprintSize]byte

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Compare orders fingerprints lexicographically by byte.
func (f Fingerprint) Compare(other Fingerprint) int {
	return bytes.Compare(f[:], other[:])
}

// HardwareCode classifies the hardware context a record should be placed on.
type HardwareCode uint8

const (
	HardwareVectorAdd HardwareCode = iota
	HardwareVectorDot
	HardwareMatrixMatrix
	HardwareMatrixVector

	numHardwareCodes
)

// Valid reports whether the code maps to a defined placement range.
func (c HardwareCode) Valid() bool {
	return c < numHardwareCodes
}

// OperationKind is the category of numeric work a record carries.
type OperationKind uint8

const (
	OpVectorAdd OperationKind = iota
	OpVectorDot
	OpMatrixMatrix
	OpMatrixVector

	NumOperationKinds
)

var operationNames = [NumOperationKinds]string{
	OpVectorAdd:    "vector-add",
	OpVectorDot:    "vector-dot",
	OpMatrixMatrix: "matrix-matrix",
	OpMatrixVector: "matrix-vector",
}

func (op OperationKind) Valid() bool {
	return op < NumOperationKinds
}

func (op OperationKind) String() string {
	if !op.Valid() {
		return fmt.Sprintf("operation(%d)", uint8(op))
	}
	return operationNames[op]
}

// ParseOperationKind resolves an operation by name ("vector-add", "matrix-vector", ...).
func ParseOperationKind(name string) (OperationKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range operationNames {
		if candidate == name {
			return OperationKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown operation %q", ErrInvalidArgument, name)
}

// HardwareCodeFor returns the placement code used for records carrying op.
func HardwareCodeFor(op OperationKind) (HardwareCode, error) {
	if !op.Valid() {
		return 0, fmt.Errorf("%w: unknown operation %d", ErrInvalidArgument, uint8(op))
	}
	return HardwareCode(op), nil
}
