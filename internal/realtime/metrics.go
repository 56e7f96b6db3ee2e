package realtime

import "github.com/prometheus/client_golang/prometheus"

// Drop reasons reported on the dropped-events counter.
const (
	DropOffline    = "offline"
	DropClosed     = "closed"
	DropBufferFull = "buffer_full"
)

// Metrics holds the push channel collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Connections prometheus.Gauge
	Delivered   *prometheus.CounterVec
	Dropped     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "serialpm",
			Subsystem: "push",
			Name:      "registered_connections",
			Help:      "Number of users with a registered push connection.",
		}),
		Delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "serialpm",
			Subsystem: "push",
			Name:      "events_delivered_total",
			Help:      "Events queued for a connected user.",
		}, []string{"event"}),
		Dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "serialpm",
			Subsystem: "push",
			Name:      "events_dropped_total",
			Help:      "Events discarded because the user was offline or the buffer was full.",
		}, []string{"event", "reason"}),
	}
	if reg != nil {
		reg.MustRegister(m.Connections, m.Delivered, m.Dropped)
	}
	return m
}

func (m *Metrics) setConnections(n int) {
	if m == nil {
		return
	}
	m.Connections.Set(float64(n))
}

func (m *Metrics) delivered(event string) {
	if m == nil {
		return
	}
	m.Delivered.WithLabelValues(event).Inc()
}

func (m *Metrics) dropped(event, reason string) {
	if m == nil {
		return
	}
	m.Dropped.WithLabelValues(event, reason).Inc()
}
