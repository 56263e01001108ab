package monitor

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/erazemk/hsetracker/internal/expiry"
)

// Metrics are the prometheus collectors of a Monitor.
type Metrics struct {
	Evaluations   prometheus.Counter
	TickDuration  prometheus.Histogram
	LoadFailures  prometheus.Counter
	Notifications *prometheus.CounterVec
	TrackedItems  *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hsetracker",
			Name:      "evaluations_total",
			Help:      "Number of tracker evaluations.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hsetracker",
			Name:      "tick_duration_seconds",
			Help:      "Duration of a full reload and evaluation pass.",
			Buckets:   prometheus.DefBuckets,
		}),
		LoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hsetracker",
			Name:      "load_failures_total",
			Help:      "Number of failed equipment loads from the store.",
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hsetracker",
			Name:      "notifications_total",
			Help:      "Notifications sent, by channel, threshold and result.",
		}, []string{"channel", "threshold", "result"}),
		TrackedItems: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "hsetracker",
			Name:      "tracked_items",
			Help:      "Tracked equipment items by status kind.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.Evaluations, m.TickDuration, m.LoadFailures, m.Notifications, m.TrackedItems)
	}
	return m
}

// instrument counts deliveries through sink under the given channel label.
func (m *Metrics) instrument(channel string, sink expiry.Sink) expiry.Sink {
	if sink == nil {
		return nil
	}
	return expiry.SinkFunc(func(ctx context.Context, n expiry.Notification) error {
		err := sink.Send(ctx, n)
		result := "ok"
		if err != nil {
			result = "error"
		}
		m.Notifications.WithLabelValues(channel, n.Threshold.String(), result).Inc()
		return err
	})
}
