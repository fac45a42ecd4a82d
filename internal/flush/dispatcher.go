// Package flush persists buffered annotations off the interactive path.
// Dispatch never blocks and never reports back: records are considered
// handled the moment a job is queued, so a failed append or a full queue
// loses them. Best-effort, not durable until confirmed.
package flush

import (
	"sync"

	"claim-annotator/internal/metrics"
	"claim-annotator/internal/models"

	"go.uber.org/zap"
)

// Appender is the store-side append operation. Errors are logged and
// counted, never surfaced to the annotator.
type Appender interface {
	Append(userID string, records []models.AnnotationRecord) error
}

type job struct {
	userID  string
	records []models.AnnotationRecord
}

// Dispatcher owns a bounded job queue drained by a single worker goroutine.
type Dispatcher struct {
	appender Appender
	logger   *zap.Logger

	mu     sync.Mutex
	closed bool
	jobs   chan job
	done   chan struct{}
}

// NewDispatcher starts the worker. queueSize bounds the number of pending
// flush jobs; overflow is dropped.
func NewDispatcher(appender Appender, queueSize int, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		appender: appender,
		logger:   logger,
		jobs:     make(chan job, queueSize),
		done:     make(chan struct{}),
	}

	go d.run()

	return d
}

// Dispatch queues a flush of the given records. It returns immediately; the
// caller hands over a snapshot and must not touch it afterwards.
func (d *Dispatcher) Dispatch(userID string, records []models.AnnotationRecord) {
	if len(records) == 0 {
		return
	}

	metrics.FlushesDispatched.Inc()

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		metrics.FlushesDropped.Inc()
		d.logger.Warn("Dispatcher closed, dropping annotations",
			zap.String("user_id", userID),
			zap.Int("count", len(records)))
		return
	}

	select {
	case d.jobs <- job{userID: userID, records: records}:
	default:
		metrics.FlushesDropped.Inc()
		d.logger.Warn("Flush queue full, dropping annotations",
			zap.String("user_id", userID),
			zap.Int("count", len(records)))
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for j := range d.jobs {
		if err := d.appender.Append(j.userID, j.records); err != nil {
			metrics.FlushFailures.Inc()
			d.logger.Error("Failed to persist annotations",
				zap.String("user_id", j.userID),
				zap.Int("count", len(j.records)),
				zap.Error(err))
			continue
		}

		metrics.AnnotationsFlushed.Add(float64(len(j.records)))
		d.logger.Debug("Annotations persisted",
			zap.String("user_id", j.userID),
			zap.Int("count", len(j.records)))
	}
}

// Close stops intake and waits for already-queued jobs to drain. Used on
// graceful shutdown only; an ungraceful exit abandons in-flight jobs.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	<-d.done
}
