package investigation

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/linesmerrill/accident-recon-api/models"
)

// Metrics counts service mutations. A nil *Metrics records nothing.
type Metrics struct {
	Mutations        *prometheus.CounterVec
	ConflictRetries  *prometheus.CounterVec
	MutationDuration *prometheus.HistogramVec
	CascadeDeletes   prometheus.Counter
}

// NewMetrics registers the service metrics with reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "accident_recon_mutations_total",
			Help: "Service mutations by operation and outcome",
		}, []string{"op", "outcome"}),
		ConflictRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "accident_recon_conflict_retries_total",
			Help: "Read-modify-write cycles retried after a version conflict",
		}, []string{"op"}),
		MutationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "accident_recon_mutation_duration_seconds",
			Help:    "Duration of service mutations including lock wait",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op"}),
		CascadeDeletes: factory.NewCounter(prometheus.CounterOpts{
			Name: "accident_recon_case_cascade_deletes_total",
			Help: "Cases deleted together with their child records",
		}),
	}
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(op, outcome(err)).Inc()
	m.MutationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) conflict(op string) {
	if m == nil {
		return
	}
	m.ConflictRetries.WithLabelValues(op).Inc()
}

func (m *Metrics) cascade() {
	if m == nil {
		return
	}
	m.CascadeDeletes.Inc()
}

func outcome(err error) string {
	var (
		ve *models.ValidationError
		nf *models.NotFoundError
		ce *models.ConflictError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "invalid"
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &ce):
		return "conflict"
	}
	return "error"
}
