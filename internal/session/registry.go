package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Gate is the identity membership test. Backed by the allow-list snapshot.
type Gate interface {
	IsMember(userID string) bool
}

// Store is the read side of the annotation store used at login.
type Store interface {
	EnsureAnnotator(userID string) error
	ReadSentences(userID string) (map[string]struct{}, error)
}

// Pool supplies the full sentence pool, loaded once per process.
type Pool interface {
	All() []string
}

// RegistryConfig wires a Registry.
type RegistryConfig struct {
	Gate            Gate
	Store           Store
	Pool            Pool
	Dispatcher      Dispatcher
	TicketThreshold int
	FlushThreshold  int
	Logger          *zap.Logger
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Registry owns the live sessions, one per annotator identity.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	gate       Gate
	store      Store
	pool       Pool
	dispatcher Dispatcher
	ticketEach int
	flushAt    int
	logger     *zap.Logger
	now        func() time.Time
}

// NewRegistry creates an empty session registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Registry{
		sessions:   make(map[string]*Session),
		gate:       cfg.Gate,
		store:      cfg.Store,
		pool:       cfg.Pool,
		dispatcher: cfg.Dispatcher,
		ticketEach: cfg.TicketThreshold,
		flushAt:    cfg.FlushThreshold,
		logger:     cfg.Logger,
		now:        now,
	}
}

// Login admits an annotator and builds a fresh session: prior work is read
// from the store, the pending queue is the pool minus that work in pool
// order, and the per-annotator store destination is ensured in the
// background so admission never waits on it.
func (r *Registry) Login(userID string) (*Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrEmptyIdentity
	}
	if !r.gate.IsMember(userID) {
		return nil, ErrAccessDenied
	}

	completed, err := r.store.ReadSentences(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prior annotations: %w", err)
	}

	go func() {
		if err := r.store.EnsureAnnotator(userID); err != nil {
			r.logger.Warn("Failed to ensure annotator destination",
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}()

	pool := r.pool.All()
	pending := make([]string, 0, len(pool))
	for _, sentence := range pool {
		if _, done := completed[sentence]; done {
			continue
		}
		pending = append(pending, sentence)
	}

	sess := newSession(uuid.New().String(), userID, pending, len(completed), r.ticketEach, r.flushAt, r.dispatcher, r.now)

	r.mu.Lock()
	if old, ok := r.sessions[userID]; ok {
		// Re-login replaces the live session; don't lose its buffer.
		old.Logout()
	}
	r.sessions[userID] = sess
	r.mu.Unlock()

	r.logger.Info("Annotator logged in",
		zap.String("user_id", userID),
		zap.String("session_id", sess.ID),
		zap.Int("pending", len(pending)),
		zap.Int("completed", len(completed)))

	return sess, nil
}

// Get returns the live session for an identity.
func (r *Registry) Get(userID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return sess, nil
}

// Logout flushes and discards the identity's session. Discard happens
// unconditionally; a missing session is not an error.
func (r *Registry) Logout(userID string) {
	r.mu.Lock()
	sess, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()

	if !ok {
		return
	}

	sess.Logout()
	r.logger.Info("Annotator logged out",
		zap.String("user_id", userID),
		zap.String("session_id", sess.ID))
}

// Shutdown flushes every live session's buffer. Called on graceful process
// exit before the dispatcher drains.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		sessions = append(sessions, sess)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, sess := range sessions {
		sess.Logout()
	}
}
