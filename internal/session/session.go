// Package session implements the annotation session state machine: sentence
// progression, deduplication against prior work, reward accrual, and the
// buffered flush policy.
package session

import (
	"errors"
	"sync"
	"time"

	"claim-annotator/internal/models"
)

var (
	ErrEmptyIdentity   = errors.New("user id must not be empty")
	ErrAccessDenied    = errors.New("user id is not authorized")
	ErrSessionFinished = errors.New("session is finished")
	ErrUnknownLabel    = errors.New("unknown label")
	ErrNoSession       = errors.New("no active session")
)

// Dispatcher receives snapshots of buffered records for background
// persistence. Implementations must not block.
type Dispatcher interface {
	Dispatch(userID string, records []models.AnnotationRecord)
}

// Session is the per-annotator state machine. One interactive caller drives
// it at a time; the mutex enforces that assumption against racing HTTP
// requests for the same identity.
type Session struct {
	ID     string
	UserID string

	mu         sync.Mutex
	pending    []string // pool minus completed, in pool order; fixed at login
	cursor     int      // 0 <= cursor <= len(pending), never decreases
	annotated  int      // prior work plus labels recorded this session
	unflushed  []models.AnnotationRecord
	finished   bool
	ticketEach int
	flushAt    int
	dispatcher Dispatcher
	now        func() time.Time
}

func newSession(id, userID string, pending []string, priorCount, ticketEach, flushAt int, dispatcher Dispatcher, now func() time.Time) *Session {
	return &Session{
		ID:         id,
		UserID:     userID,
		pending:    pending,
		annotated:  priorCount,
		finished:   len(pending) == 0,
		ticketEach: ticketEach,
		flushAt:    flushAt,
		dispatcher: dispatcher,
		now:        now,
	}
}

// CurrentSentence returns the sentence awaiting a label, or false when the
// session is finished.
func (s *Session) CurrentSentence() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor >= len(s.pending) {
		return "", false
	}
	return s.pending[s.cursor], true
}

// RecordLabel labels the current sentence and advances the cursor. The
// record is buffered; a flush is dispatched when the buffer reaches the
// flush threshold or the session finishes. TicketEarned in the result is
// set only on the call that crosses a reward threshold.
func (s *Session) RecordLabel(label models.Label) (models.AnnotateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return models.AnnotateResult{}, ErrSessionFinished
	}
	if !label.Valid() {
		return models.AnnotateResult{}, ErrUnknownLabel
	}

	s.unflushed = append(s.unflushed, models.AnnotationRecord{
		UserID:      s.UserID,
		Sentence:    s.pending[s.cursor],
		Label:       label,
		AnnotatedAt: s.now().Truncate(time.Second),
	})
	s.annotated++
	earned := s.annotated%s.ticketEach == 0

	s.cursor++
	if s.cursor == len(s.pending) {
		s.finished = true
		s.flushLocked()
	} else if len(s.unflushed) >= s.flushAt {
		s.flushLocked()
	}

	return models.AnnotateResult{
		SessionView:  s.viewLocked(),
		TicketEarned: earned,
	}, nil
}

// Skip advances past the current sentence without recording anything. The
// sentence is not re-offered this session and stays unannotated in the
// store.
func (s *Session) Skip() (models.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return models.SessionView{}, ErrSessionFinished
	}

	s.cursor++
	if s.cursor == len(s.pending) {
		s.finished = true
		s.flushLocked()
	}

	return s.viewLocked(), nil
}

// Logout flushes any buffered records and leaves the session ready to be
// discarded. The buffer is cleared whether or not the flush succeeds.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
}

// View returns the observable state for rendering. Reading never mutates
// the machine; in particular it never re-triggers the finish flush.
func (s *Session) View() models.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() models.SessionView {
	view := models.SessionView{
		UserID:         s.UserID,
		Finished:       s.finished,
		AnnotatedCount: s.annotated,
		TotalCount:     len(s.pending),
		RewardTickets:  s.annotated / s.ticketEach,
	}
	if s.cursor < len(s.pending) {
		view.CurrentSentence = s.pending[s.cursor]
	}
	if denom := s.annotated + len(s.pending) - s.cursor; denom > 0 {
		view.Progress = float64(s.annotated) / float64(denom)
	} else {
		view.Progress = 1
	}
	return view
}

// flushLocked hands the buffer snapshot to the dispatcher and clears it
// immediately. Empty buffers are a no-op, which keeps repeated finish-state
// polls from re-dispatching.
func (s *Session) flushLocked() {
	if len(s.unflushed) == 0 {
		return
	}
	snapshot := s.unflushed
	s.unflushed = nil
	s.dispatcher.Dispatch(s.UserID, snapshot)
}
