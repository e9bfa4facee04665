package sync

import (
	"context"
	"errors"
	"time"

	"github.com/nerrad567/fleetwan-core/internal/handlers"
	"github.com/nerrad567/fleetwan-core/internal/session"
	"github.com/nerrad567/fleetwan-core/internal/store"
)

// Manager reconciles canonical state with remote networks: Pull imports a
// network's objects into the canonical model, Push mirrors canonical
// mutations out to every enabled and authorized network of the matching
// type.
type Manager struct {
	store   *store.Store
	coord   *session.Coordinator
	logger  Logger
	metrics Metrics

	// callTimeout bounds each remote operation; concurrency bounds the
	// parallel per-application device pulls.
	callTimeout time.Duration
	concurrency int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(l Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithMetrics sets the sync metrics sink.
func WithMetrics(mt Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithCallTimeout bounds individual remote operations.
func WithCallTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.callTimeout = d
		}
	}
}

// WithConcurrency bounds the parallel device pulls within one network.
func WithConcurrency(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.concurrency = n
		}
	}
}

// NewManager creates a sync manager.
func NewManager(st *store.Store, coord *session.Coordinator, opts ...Option) *Manager {
	m := &Manager{
		store:       st,
		coord:       coord,
		logger:      noopLogger{},
		metrics:     noopMetrics{},
		callTimeout: 30 * time.Second,
		concurrency: 8,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// withSession resolves the network's handler and a live session, then runs
// fn. An authentication rejection triggers exactly one forced re-login and
// retry; a rejection of the retry has already regressed the network's
// authorisation status by the time it is returned.
func (m *Manager) withSession(ctx context.Context, network *store.Network, fn func(h handlers.Handler, s *handlers.Session) error) error {
	h, err := m.coord.Handler(ctx, network)
	if err != nil {
		return err
	}
	s, err := m.coord.Session(ctx, network)
	if err != nil {
		return err
	}

	err = fn(h, s)
	if !errors.Is(err, handlers.ErrAuth) {
		return err
	}

	m.logger.Debug("remote call rejected, re-authenticating", "network_id", network.ID)
	s, err = m.coord.Reauthenticate(ctx, network)
	if err != nil {
		return err
	}
	return fn(h, s)
}

// callCtx derives the per-operation context.
func (m *Manager) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.callTimeout)
}
