package mapping

import (
	"fmt"

	"github.com/nemanja-m/skewshuffle/pkg/core"
)

// Assign maps every fingerprint to a reducer in one sequential pass over a
// single table snapshot. codes must be parallel to fingerprints when the
// strategy requires hardware codes and is ignored otherwise.
func Assign(strategy Strategy, fingerprints []core.Fingerprint, codes []core.HardwareCode) ([]int, error) {
	if strategy == nil {
		return nil, fmt.Errorf("%w: nil mapping strategy", core.ErrInvalidArgument)
	}
	if strategy.RequiresHardwareCodes() && len(codes) != len(fingerprints) {
		return nil, fmt.Errorf("%w: %d hardware codes for %d fingerprints",
			core.ErrInvalidArgument, len(codes), len(fingerprints))
	}

	mapFn, err := strategy.mapper()
	if err != nil {
		return nil, err
	}

	out := make([]int, len(fingerprints))
	for i, fp := range fingerprints {
		var code core.HardwareCode
		if strategy.RequiresHardwareCodes() {
			code = codes[i]
		}
		idx, err := mapFn(fp, code)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = idx
	}
	return out, nil
}
