package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation label values.
const (
	OpIssue    = "issue"
	OpTransfer = "transfer"
	OpRevoke   = "revoke"
)

type Metrics struct {
	Operations     *prometheus.CounterVec
	Duration       *prometheus.HistogramVec
	OrphanedAssets prometheus.Counter
	LockWait       prometheus.Histogram
}

// New registers with reg; a nil reg leaves the collectors unregistered, which
// lets tests build as many services as they like.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credverify_credential_operations_total",
			Help: "Lifecycle operations by outcome code",
		}, []string{"operation", "outcome"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credverify_credential_operation_duration_seconds",
			Help:    "Duration of lifecycle operations including ledger round trips",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
		OrphanedAssets: f.NewCounter(prometheus.CounterOpts{
			Name: "credverify_credential_orphaned_assets_total",
			Help: "Assets created on the ledger whose registry insert failed",
		}),
		LockWait: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "credverify_credential_lock_wait_seconds",
			Help:    "Time spent waiting for the per-credential lock",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}

// ObserveOperation records one finished operation; outcome is "ok" or an error code.
func (m *Metrics) ObserveOperation(op, outcome string, start time.Time) {
	m.Operations.WithLabelValues(op, outcome).Inc()
	m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementOrphanedAsset() {
	m.OrphanedAssets.Inc()
}

func (m *Metrics) ObserveLockWait(d time.Duration) {
	m.LockWait.Observe(d.Seconds())
}
