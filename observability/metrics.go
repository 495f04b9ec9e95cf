package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver counts events by type and level in a Prometheus counter.
type MetricsObserver struct {
	events *prometheus.CounterVec
}

// NewMetricsObserver creates a MetricsObserver and registers its collector
// with reg. The counter is exported as <namespace>_events_total.
func NewMetricsObserver(reg prometheus.Registerer, namespace string) (*MetricsObserver, error) {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Observability events emitted, by event type and severity.",
	}, []string{"type", "level"})

	if err := reg.Register(events); err != nil {
		return nil, err
	}
	return &MetricsObserver{events: events}, nil
}

func (m *MetricsObserver) OnEvent(ctx context.Context, event Event) {
	m.events.WithLabelValues(string(event.Type), event.Level.String()).Inc()
}

// Counter exposes the underlying collector, mainly for tests.
func (m *MetricsObserver) Counter() *prometheus.CounterVec {
	return m.events
}
