package gsd

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts what writers do. A single Metrics can be shared by
// several writers.
type Metrics struct {
	Frames      prometheus.Counter
	Chunks      prometheus.Counter
	Bytes       prometheus.Counter
	Suppressed  *prometheus.CounterVec
	Truncations prometheus.Counter
}

// NewMetrics creates the writer metrics and registers them with reg, if reg
// is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gsd",
			Name:      "frames_written_total",
			Help:      "Frames committed to trajectory files.",
		}),
		Chunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gsd",
			Name:      "chunks_written_total",
			Help:      "Chunks written to trajectory files.",
		}),
		Bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gsd",
			Name:      "chunk_bytes_written_total",
			Help:      "Payload bytes of the chunks written to trajectory files.",
		}),
		Suppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gsd",
			Name:      "chunks_suppressed_total",
			Help:      "Chunks not written because every value was the default.",
		}, []string{"chunk"}),
		Truncations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gsd",
			Name:      "truncations_total",
			Help:      "Times a trajectory file was truncated to zero frames.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Frames, m.Chunks, m.Bytes, m.Suppressed, m.Truncations)
	}
	return m
}
