package model

import (
	"fmt"

	"github.com/nemanja-m/skewshuffle/pkg/core"
)

// Layout statically assigns each reducer index to a hardware class.
type Layout interface {
	EstimatorFor(reducer, n int) Estimator
}

// SplitLayout puts reducers [0, n/2) on Low and [n/2, n) on High.
type SplitLayout struct {
	Low  Estimator
	High Estimator
}

var _ Layout = SplitLayout{}

func NewSplitLayout(low, high Estimator) (SplitLayout, error) {
	if low == nil || high == nil {
		return SplitLayout{}, fmt.Errorf("%w: split layout needs two estimators", core.ErrInvalidArgument)
	}
	return SplitLayout{Low: low, High: high}, nil
}

// DefaultLayout runs the lower half on PIM banks and the upper half on GPUs.
func DefaultLayout() SplitLayout {
	return SplitLayout{Low: BankLevel(), High: GPU()}
}

func (l SplitLayout) EstimatorFor(reducer, n int) Estimator {
	if reducer >= n/2 {
		return l.High
	}
	return l.Low
}
