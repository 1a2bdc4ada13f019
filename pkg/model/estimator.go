package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/nemanja-m/skewshuffle/pkg/core"
)

// Estimator predicts the runtime of size word-level operations of one kind.
type Estimator interface {
	Name() string
	Estimate(size int, op core.OperationKind) (float64, error)
}

// Fit is one empirically fitted power law: time = Coefficient * size^Exponent.
type Fit struct {
	Coefficient float64
	Exponent    float64
}

// PowerLaw is an Estimator backed by one Fit per operation kind.
type PowerLaw struct {
	name string
	fits [core.NumOperationKinds]Fit
}

var _ Estimator = (*PowerLaw)(nil)

func NewPowerLaw(name string, fits map[core.OperationKind]Fit) (*PowerLaw, error) {
	p := &PowerLaw{name: name}
	for op := range core.NumOperationKinds {
		fit, ok := fits[op]
		if !ok {
			return nil, fmt.Errorf("%w: estimator %q has no fit for %s", core.ErrInvalidArgument, name, op)
		}
		if fit.Coefficient < 0 || math.IsNaN(fit.Coefficient) || math.IsNaN(fit.Exponent) {
			return nil, fmt.Errorf("%w: estimator %q has invalid fit for %s", core.ErrInvalidArgument, name, op)
		}
		p.fits[op] = fit
	}
	for op := range fits {
		if !op.Valid() {
			return nil, fmt.Errorf("%w: estimator %q has fit for unknown operation %d", core.ErrInvalidArgument, name, op)
		}
	}
	return p, nil
}

func (p *PowerLaw) Name() string {
	return p.name
}

// Estimate returns Coefficient * size^Exponent for op. A zero size costs nothing.
func (p *PowerLaw) Estimate(size int, op core.OperationKind) (float64, error) {
	if !op.Valid() {
		return 0, fmt.Errorf("%w: unknown operation %d", core.ErrInvalidArgument, uint8(op))
	}
	if size < 0 {
		return 0, fmt.Errorf("%w: negative operation size %d", core.ErrInvalidArgument, size)
	}
	if size == 0 {
		return 0, nil
	}
	fit := p.fits[op]
	return fit.Coefficient * math.Pow(float64(size), fit.Exponent), nil
}

const (
	BankLevelName = "bank-level"
	GPUName       = "gpu"
	CPUName       = "cpu"
)

// Fits measured on processing-in-memory banks, a discrete GPU and a host CPU.
var (
	bankLevelFits = map[core.OperationKind]Fit{
		core.OpVectorAdd:    {Coefficient: 1.266e-07, Exponent: 0.999},
		core.OpVectorDot:    {Coefficient: 1.393e-07, Exponent: 0.996},
		core.OpMatrixVector: {Coefficient: 6.208e-02, Exponent: 0.999},
		core.OpMatrixMatrix: {Coefficient: 8.043e-02, Exponent: 0.998},
	}
	gpuFits = map[core.OperationKind]Fit{
		core.OpVectorAdd:    {Coefficient: 3.981e-07, Exponent: 0.771},
		core.OpVectorDot:    {Coefficient: 3.045e-05, Exponent: 0.488},
		core.OpMatrixVector: {Coefficient: 2.798e-06, Exponent: 1.850},
		core.OpMatrixMatrix: {Coefficient: 1.749e-04, Exponent: 0.796},
	}
	cpuFits = map[core.OperationKind]Fit{
		core.OpVectorAdd:    {Coefficient: 1.509e-06, Exponent: 0.684},
		core.OpVectorDot:    {Coefficient: 1.820e-07, Exponent: 1.030},
		core.OpMatrixVector: {Coefficient: 1.128e-06, Exponent: 0.991},
		core.OpMatrixMatrix: {Coefficient: 2.781e-05, Exponent: 0.952},
	}
)

func mustPowerLaw(name string, fits map[core.OperationKind]Fit) *PowerLaw {
	p, err := NewPowerLaw(name, fits)
	if err != nil {
		panic(err)
	}
	return p
}

func BankLevel() *PowerLaw { return mustPowerLaw(BankLevelName, bankLevelFits) }
func GPU() *PowerLaw       { return mustPowerLaw(GPUName, gpuFits) }
func CPU() *PowerLaw       { return mustPowerLaw(CPUName, cpuFits) }

// EstimatorByName returns one of the built-in estimators.
func EstimatorByName(name string) (Estimator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case BankLevelName:
		return BankLevel(), nil
	case GPUName:
		return GPU(), nil
	case CPUName:
		return CPU(), nil
	default:
		return nil, fmt.Errorf("%w: unknown estimator %q", core.ErrInvalidArgument, name)
	}
}
