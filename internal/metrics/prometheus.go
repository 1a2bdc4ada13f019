package metrics

import (
	"slices"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultNamespace = "skewshuffle"

// PrometheusRecorder exports the outcome of every rebalancing round.
type PrometheusRecorder struct {
	reducerWeight  *prometheus.GaugeVec
	reducerRuntime *prometheus.GaugeVec
	imbalance      prometheus.Gauge
	rounds         prometheus.Counter
	makespan       prometheus.Histogram
}

// NewPrometheus registers the round metrics on reg (prometheus.DefaultRegisterer
// if nil) under namespace ("skewshuffle" if empty).
func NewPrometheus(reg prometheus.Registerer, namespace string) (*PrometheusRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = defaultNamespace
	}

	p := &PrometheusRecorder{
		reducerWeight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reducer_weight",
			Help:      "Target load share of each reducer after the latest rebalance.",
		}, []string{"reducer"}),
		reducerRuntime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reducer_runtime_seconds",
			Help:      "Estimated runtime of each reducer in the latest round.",
		}, []string{"reducer"}),
		imbalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "round_imbalance",
			Help:      "Slowest reducer runtime divided by the mean runtime in the latest round.",
		}),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Total rebalancing rounds completed.",
		}),
		makespan: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "round_makespan_seconds",
			Help:      "Runtime of the slowest reducer per round.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 16),
		}),
	}

	for _, c := range []prometheus.Collector{p.reducerWeight, p.reducerRuntime, p.imbalance, p.rounds, p.makespan} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ObserveRound records the weights and runtimes of one round.
func (p *PrometheusRecorder) ObserveRound(_ int, weights, runtimes []float64) {
	for i, w := range weights {
		p.reducerWeight.WithLabelValues(strconv.Itoa(i)).Set(w)
	}

	total := 0.0
	for i, r := range runtimes {
		p.reducerRuntime.WithLabelValues(strconv.Itoa(i)).Set(r)
		total += r
	}

	p.rounds.Inc()
	if len(runtimes) == 0 {
		return
	}
	slowest := slices.Max(runtimes)
	p.makespan.Observe(slowest)
	if mean := total / float64(len(runtimes)); mean > 0 {
		p.imbalance.Set(slowest / mean)
	} else {
		p.imbalance.Set(0)
	}
}

// NopRecorder discards all observations.
type NopRecorder struct{}

func NewNop() NopRecorder {
	return NopRecorder{}
}

func (NopRecorder) ObserveRound(int, []float64, []float64) {}
