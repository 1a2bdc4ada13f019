package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_ObserveRound(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg, "")
	require.NoError(t, err)

	p.ObserveRound(0, []float64{0.75, 0.25}, []float64{1, 3})

	require.InDelta(t, 0.75, testutil.ToFloat64(p.reducerWeight.WithLabelValues("0")), 1e-12)
	require.InDelta(t, 0.25, testutil.ToFloat64(p.reducerWeight.WithLabelValues("1")), 1e-12)
	require.InDelta(t, 3.0, testutil.ToFloat64(p.reducerRuntime.WithLabelValues("1")), 1e-12)
	require.InDelta(t, 1.5, testutil.ToFloat64(p.imbalance), 1e-12)
	require.Equal(t, 1.0, testutil.ToFloat64(p.rounds))

	p.ObserveRound(1, []float64{0.5, 0.5}, []float64{0, 0})
	require.Equal(t, 2.0, testutil.ToFloat64(p.rounds))
	require.Zero(t, testutil.ToFloat64(p.imbalance))
}

func TestPrometheusRecorder_MetricNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg, "")
	require.NoError(t, err)
	p.ObserveRound(0, []float64{1}, []float64{2})

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, family := range families {
		names = append(names, family.GetName())
	}
	require.ElementsMatch(t, []string{
		"skewshuffle_reducer_weight",
		"skewshuffle_reducer_runtime_seconds",
		"skewshuffle_round_imbalance",
		"skewshuffle_rounds_total",
		"skewshuffle_round_makespan_seconds",
	}, names)
}

func TestNewPrometheus_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg, "test")
	require.NoError(t, err)

	_, err = NewPrometheus(reg, "test")
	require.Error(t, err)
}

func TestNopRecorder(t *testing.T) {
	require.NotPanics(t, func() {
		NewNop().ObserveRound(0, []float64{1}, []float64{1})
	})
}
