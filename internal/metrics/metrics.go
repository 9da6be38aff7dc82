package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lifecycle counts order lifecycle transitions by operation and outcome.
type Lifecycle struct {
	transitions *prometheus.CounterVec
}

func NewLifecycle(reg prometheus.Registerer) *Lifecycle {
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "orders",
		Name:      "lifecycle_transitions_total",
		Help:      "Total number of order lifecycle transitions.",
	}, []string{"operation", "outcome"})

	reg.MustRegister(transitions)

	return &Lifecycle{transitions: transitions}
}

// Observe is nil-safe so metrics stay optional in tests.
func (m *Lifecycle) Observe(operation, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(operation, outcome).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
