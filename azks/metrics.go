package azks

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsSubsystem is the prometheus subsystem of the tree metrics.
const MetricsSubsystem = "azks"

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Latest committed epoch.
	Epoch prometheus.Gauge
	// Number of stored nodes.
	Nodes prometheus.Gauge
	// Number of elements inserted, updates included.
	InsertedElements prometheus.Counter
	// Number of node versions written.
	NodesWritten prometheus.Counter
	// Number of failed batch insertions.
	FailedInsertions prometheus.Counter
	// Duration of batch insertions in seconds.
	InsertSeconds prometheus.Histogram
	// Number of proofs generated, by kind.
	Proofs *prometheus.CounterVec
}

// PrometheusMetrics returns Metrics registered with reg.
// A nil reg leaves the collectors unregistered.
func PrometheusMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Epoch: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "epoch",
			Help:      "Latest committed epoch.",
		}),
		Nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "nodes",
			Help:      "Number of tree nodes.",
		}),
		InsertedElements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "inserted_elements_total",
			Help:      "Number of elements inserted or updated.",
		}),
		NodesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "nodes_written_total",
			Help:      "Number of node versions written.",
		}),
		FailedInsertions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "failed_insertions_total",
			Help:      "Number of batch insertions that did not commit.",
		}),
		InsertSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "insert_duration_seconds",
			Help:      "Duration of batch insertions.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		Proofs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "proofs_total",
			Help:      "Number of proofs generated.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.Epoch, m.Nodes, m.InsertedElements, m.NodesWritten,
			m.FailedInsertions, m.InsertSeconds, m.Proofs)
	}
	return m
}

// NopMetrics returns Metrics that are not exported anywhere.
func NopMetrics() *Metrics {
	return PrometheusMetrics("", nil)
}

const (
	proofMembership    = "membership"
	proofNonMembership = "non_membership"
	proofAppendOnly    = "append_only"
	proofHistory       = "history"
)
