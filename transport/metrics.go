package transport

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the optional counters the accept/poll server loop
// updates. A nil *Metrics is valid everywhere below; every method is a
// no-op on a nil receiver so wiring metrics in is opt-in.
type Metrics struct {
	Accepted        prometheus.Counter
	HandshakeFailed prometheus.Counter
	Disconnected    prometheus.Counter
	FramesReceived  prometheus.Counter
	FramesDropped   prometheus.Counter
}

// NewMetrics registers a fresh set of counters with reg and returns them.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hackvr_connections_accepted_total",
			Help: "Total number of connections accepted across all bindings.",
		}),
		HandshakeFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hackvr_handshake_failures_total",
			Help: "Total number of connections that failed the handshake.",
		}),
		Disconnected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hackvr_connections_closed_total",
			Help: "Total number of connections that were closed or disconnected.",
		}),
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hackvr_frames_received_total",
			Help: "Total number of well-formed frames successfully parsed.",
		}),
		FramesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hackvr_frames_dropped_total",
			Help: "Total number of frames dropped by the parser (overflow or malformed).",
		}),
	}
	for _, c := range []prometheus.Collector{m.Accepted, m.HandshakeFailed, m.Disconnected, m.FramesReceived, m.FramesDropped} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// IncAccepted records one accepted connection. Safe to call on a nil
// *Metrics (metrics are opt-in).
func (m *Metrics) IncAccepted() {
	if m == nil {
		return
	}
	m.Accepted.Inc()
}

// IncHandshakeFailed records one failed handshake.
func (m *Metrics) IncHandshakeFailed() {
	if m == nil {
		return
	}
	m.HandshakeFailed.Inc()
}

// IncDisconnected records one connection closing or disconnecting.
func (m *Metrics) IncDisconnected() {
	if m == nil {
		return
	}
	m.Disconnected.Inc()
}

// IncFramesReceived records one successfully parsed frame.
func (m *Metrics) IncFramesReceived() {
	if m == nil {
		return
	}
	m.FramesReceived.Inc()
}

// IncFramesDropped records one frame dropped by the parser.
func (m *Metrics) IncFramesDropped() {
	if m == nil {
		return
	}
	m.FramesDropped.Inc()
}
