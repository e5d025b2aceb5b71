package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/adapters/memory"
	"github.com/aretw0/stepwise/pkg/ports"
)

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = ports.ErrSessionNotFound

// Session is one running lesson.
type Session[M any] struct {
	ID         string
	Controller *stepwise.Controller[M]
	Model      M
	CreatedAt  time.Time
}

// Starter creates the controller and model of a new session. Every call must
// build a fresh graph, because traversal may change it.
type Starter[M any] func(ctx context.Context, sessionID string) (*stepwise.Controller[M], M, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager[M any] struct {
	store ports.SessionStore[*Session[M]]
	start Starter[M]

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

type options struct {
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures the Manager.
type Option func(*options)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock sets the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithIDGenerator replaces the default random UUID ids.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) {
		o.newID = newID
	}
}

// NewManager creates a Manager. A nil store keeps sessions in memory.
func NewManager[M any](store ports.SessionStore[*Session[M]], start Starter[M], opts ...Option) *Manager[M] {
	o := options{
		logger: logging.NewNop(), // Default to no-op
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if store == nil {
		store = memory.NewStore[*Session[M]]()
	}
	return &Manager[M]{
		store:  store,
		start:  start,
		locks:  make(map[string]*lockEntry),
		logger: o.logger,
		now:    o.now,
		newID:  o.newID,
	}
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager[M]) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager[M]) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

func (m *Manager[M]) lock(sessionID string, fn func() error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()
	return fn()
}

func (m *Manager[M]) create(ctx context.Context, sessionID string) (*Session[M], error) {
	ctrl, model, err := m.start(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	s := &Session[M]{ID: sessionID, Controller: ctrl, Model: model, CreatedAt: m.now()}
	if err := m.store.Save(ctx, sessionID, s); err != nil {
		ctrl.Stop()
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	m.logger.Debug("session created", "session_id", sessionID)
	return s, nil
}

// Create starts a new session under a generated id.
func (m *Manager[M]) Create(ctx context.Context) (*Session[M], error) {
	id := m.newID()
	var s *Session[M]
	err := m.lock(id, func() error {
		var err error
		s, err = m.create(ctx, id)
		return err
	})
	return s, err
}

// LoadOrCreate returns the session with the given id, starting it first if
// it does not exist yet. Concurrent calls for one id start it only once.
func (m *Manager[M]) LoadOrCreate(ctx context.Context, sessionID string) (*Session[M], error) {
	var s *Session[M]
	err := m.lock(sessionID, func() error {
		var err error
		s, err = m.store.Load(ctx, sessionID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}
		s, err = m.create(ctx, sessionID)
		return err
	})
	return s, err
}

// Get returns the session without locking it.
func (m *Manager[M]) Get(ctx context.Context, sessionID string) (*Session[M], error) {
	s, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, err)
	}
	return s, nil
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager[M]) WithLock(ctx context.Context, sessionID string, fn func(context.Context, *Session[M]) error) error {
	return m.lock(sessionID, func() error {
		s, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("session %q: %w", sessionID, err)
		}
		return fn(ctx, s)
	})
}

// Delete stops the session's timers and removes it.
func (m *Manager[M]) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context, s *Session[M]) error {
		s.Controller.Stop()
		if err := m.store.Delete(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		m.logger.Debug("session deleted", "session_id", sessionID)
		return nil
	})
}

// List delegates to the store.
func (m *Manager[M]) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Close deletes every session.
func (m *Manager[M]) Close(ctx context.Context) error {
	ids, err := m.List(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, id := range ids {
		if err := m.Delete(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
