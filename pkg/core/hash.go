package core

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/nemanja-m/skewshuffle/internal/workpool"
)

// Digest hashes the little-endian byte representation of a record.
// An empty record yields the digest of zero bytes.
func Digest(record Record) Fingerprint {
	buf := make([]byte, 4*len(record))
	for i, word := range record {
		binary.LittleEndian.PutUint32(buf[4*i:], word)
	}
	return sha256.Sum256(buf)
}

// DigestBatch fingerprints every record on up to numWorkers goroutines.
// The i-th fingerprint always belongs to the i-th record.
func DigestBatch(records []Record, numWorkers int) []Fingerprint {
	out := make([]Fingerprint, len(records))
	workpool.ForEach(len(records), numWorkers, func(i int) {
		out[i] = Digest(records[i])
	})
	return out
}
