package flush

import (
	"errors"
	"sync"
	"testing"
	"time"

	"claim-annotator/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAppender struct {
	mu      sync.Mutex
	batches [][]models.AnnotationRecord
	err     error
	block   chan struct{} // when set, Append waits on it
}

func (a *fakeAppender) Append(userID string, records []models.AnnotationRecord) error {
	if a.block != nil {
		<-a.block
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.batches = append(a.batches, records)
	return nil
}

func (a *fakeAppender) batchCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.batches)
}

func records(n int) []models.AnnotationRecord {
	recs := make([]models.AnnotationRecord, n)
	for i := range recs {
		recs[i] = models.AnnotationRecord{
			UserID:      "alice",
			Sentence:    "s",
			Label:       models.NoFactualClaim,
			AnnotatedAt: time.Now(),
		}
	}
	return recs
}

func TestDispatchPersistsInBackground(t *testing.T) {
	appender := &fakeAppender{}
	d := NewDispatcher(appender, 4, zap.NewNop())

	d.Dispatch("alice", records(3))

	require.Eventually(t, func() bool {
		return appender.batchCount() == 1
	}, time.Second, 5*time.Millisecond)

	d.Close()
	assert.Len(t, appender.batches[0], 3)
}

func TestDispatchEmptyBatchIsNoop(t *testing.T) {
	appender := &fakeAppender{}
	d := NewDispatcher(appender, 4, zap.NewNop())

	d.Dispatch("alice", nil)
	d.Close()

	assert.Zero(t, appender.batchCount())
}

func TestCloseDrainsQueuedJobs(t *testing.T) {
	appender := &fakeAppender{}
	d := NewDispatcher(appender, 8, zap.NewNop())

	d.Dispatch("alice", records(1))
	d.Dispatch("alice", records(2))
	d.Dispatch("bob", records(1))
	d.Close()

	assert.Equal(t, 3, appender.batchCount())
}

func TestDispatchAfterCloseIsDropped(t *testing.T) {
	appender := &fakeAppender{}
	d := NewDispatcher(appender, 4, zap.NewNop())
	d.Close()

	// Must not panic or block.
	d.Dispatch("alice", records(1))
	assert.Zero(t, appender.batchCount())
}

func TestDispatchNeverBlocksOnFullQueue(t *testing.T) {
	block := make(chan struct{})
	appender := &fakeAppender{block: block}
	d := NewDispatcher(appender, 1, zap.NewNop())

	// First job occupies the worker, second fills the queue; the rest must
	// be dropped without blocking the caller.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			d.Dispatch("alice", records(1))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}

	close(block)
	d.Close()
	assert.LessOrEqual(t, appender.batchCount(), 2)
}

func TestAppendFailureIsSwallowed(t *testing.T) {
	appender := &fakeAppender{err: errors.New("store unreachable")}
	d := NewDispatcher(appender, 4, zap.NewNop())

	d.Dispatch("alice", records(5))
	d.Close()

	// The failure is logged and counted only; subsequent jobs still run.
	assert.Zero(t, appender.batchCount())
}

func TestCloseIsIdempotent(t *testing.T) {
	d := NewDispatcher(&fakeAppender{}, 4, zap.NewNop())
	d.Close()
	d.Close()
}
