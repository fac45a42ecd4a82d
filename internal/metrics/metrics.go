// Package metrics exposes counters for the best-effort persistence path.
// Flush failures are observable here and in logs only, never on the
// interactive path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FlushesDispatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "annotator_flushes_dispatched_total",
		Help: "Flush jobs handed to the background dispatcher.",
	})

	FlushesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "annotator_flushes_dropped_total",
		Help: "Flush jobs dropped because the queue was full or closed.",
	})

	FlushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "annotator_flush_failures_total",
		Help: "Flush jobs whose store append failed. Records are lost.",
	})

	AnnotationsFlushed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "annotator_annotations_flushed_total",
		Help: "Annotation records durably appended to the store.",
	})
)
