package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/nerrad567/fleetwan-core/internal/handlers"
	"github.com/nerrad567/fleetwan-core/internal/store"
)

// Logger defines the logging interface used by the Coordinator.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Store is the slice of the entity store the coordinator needs: protocol
// lookup for handler resolution and persistence of authorisation outcomes.
type Store interface {
	GetNetworkProtocol(ctx context.Context, id string) (*store.NetworkProtocol, error)
	UpdateNetworkSecurity(ctx context.Context, id string, sec store.SecurityData) error
}

// Coordinator owns remote network sessions. It caches one session per
// network, re-authenticates through a single flight when concurrent sync
// work finds the session missing or expired, and persists authorisation
// state transitions on the network record.
//
// All public methods are thread-safe.
type Coordinator struct {
	store    Store
	registry *handlers.Registry
	logger   Logger

	mu       sync.RWMutex
	sessions map[string]*handlers.Session
	group    singleflight.Group
}

// NewCoordinator creates a session coordinator over the given store and
// handler registry.
func NewCoordinator(st Store, registry *handlers.Registry) *Coordinator {
	return &Coordinator{
		store:    st,
		registry: registry,
		logger:   noopLogger{},
		sessions: make(map[string]*handlers.Session),
	}
}

// SetLogger sets the logger for the coordinator.
func (c *Coordinator) SetLogger(logger Logger) {
	c.logger = logger
}

// Handler resolves the protocol handler serving the network.
func (c *Coordinator) Handler(ctx context.Context, network *store.Network) (handlers.Handler, error) {
	protocol, err := c.store.GetNetworkProtocol(ctx, network.NetworkProtocolID)
	if err != nil {
		return nil, fmt.Errorf("loading network protocol: %w", err)
	}
	return c.registry.Resolve(ctx, c.store, protocol)
}

// Session returns a live session for the network, logging in if the cached
// one is missing or expired. Concurrent callers for the same network share
// a single login.
func (c *Coordinator) Session(ctx context.Context, network *store.Network) (*handlers.Session, error) {
	c.mu.RLock()
	cached := c.sessions[network.ID]
	c.mu.RUnlock()

	if !cached.Expired() {
		return cached, nil
	}
	return c.login(ctx, network)
}

// Reauthenticate discards the cached session and logs in again. Sync calls
// this once when a remote call comes back with an authentication rejection;
// a rejection of the fresh login regresses the network's authorisation
// status.
func (c *Coordinator) Reauthenticate(ctx context.Context, network *store.Network) (*handlers.Session, error) {
	c.Invalidate(network.ID)
	return c.login(ctx, network)
}

// Invalidate drops the cached session for a network. Called when a network
// is removed or its credentials change.
func (c *Coordinator) Invalidate(networkID string) {
	c.mu.Lock()
	delete(c.sessions, networkID)
	c.mu.Unlock()
}

// Authorize performs a full credential check: login plus a side-effect-free
// probe, persisting the resulting authorisation status. The API layer calls
// it when a network is created or its securityData changes.
func (c *Coordinator) Authorize(ctx context.Context, network *store.Network) error {
	h, err := c.Handler(ctx, network)
	if err != nil {
		return err
	}

	sess, err := h.Login(ctx, network)
	if err != nil {
		c.recordFailure(ctx, network, err)
		return err
	}
	if err := h.Test(ctx, network, sess); err != nil {
		c.recordFailure(ctx, network, err)
		return err
	}

	c.mu.Lock()
	c.sessions[network.ID] = sess
	c.mu.Unlock()

	c.recordSuccess(ctx, network)
	return nil
}

func (c *Coordinator) login(ctx context.Context, network *store.Network) (*handlers.Session, error) {
	v, err, shared := c.group.Do(network.ID, func() (any, error) {
		// A concurrent caller may have refreshed the session while we
		// waited for the flight slot.
		c.mu.RLock()
		cached := c.sessions[network.ID]
		c.mu.RUnlock()
		if !cached.Expired() {
			return cached, nil
		}

		h, err := c.Handler(ctx, network)
		if err != nil {
			return nil, err
		}

		sess, err := h.Login(ctx, network)
		if err != nil {
			c.recordFailure(ctx, network, err)
			return nil, err
		}

		c.mu.Lock()
		c.sessions[network.ID] = sess
		c.mu.Unlock()

		c.recordSuccess(ctx, network)
		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		c.logger.Debug("session login shared across callers", "network_id", network.ID)
	}
	return v.(*handlers.Session), nil
}

// recordSuccess promotes the network to authorized if it is not already.
func (c *Coordinator) recordSuccess(ctx context.Context, network *store.Network) {
	sec := network.SecurityData
	if sec.Status == store.SecurityAuthorized && sec.Authorized && sec.Message == "" {
		return
	}
	sec.Status = store.SecurityAuthorized
	sec.Authorized = true
	sec.Message = ""
	if err := c.store.UpdateNetworkSecurity(ctx, network.ID, sec); err != nil {
		c.logger.Error("failed to persist authorisation success",
			"network_id", network.ID, "error", err)
		return
	}
	network.SecurityData = sec
	c.logger.Info("network authorized", "network_id", network.ID, "name", network.Name)
}

// recordFailure regresses the network on credential rejection. Remote
// outages are not credential failures and leave the status untouched.
func (c *Coordinator) recordFailure(ctx context.Context, network *store.Network, cause error) {
	if !errors.Is(cause, handlers.ErrAuth) {
		c.logger.Warn("network login failed", "network_id", network.ID, "error", cause)
		return
	}

	sec := network.SecurityData
	sec.Status = store.SecurityFailed
	sec.Authorized = false
	sec.Message = cause.Error()
	if err := c.store.UpdateNetworkSecurity(ctx, network.ID, sec); err != nil {
		c.logger.Error("failed to persist authorisation failure",
			"network_id", network.ID, "error", err)
		return
	}
	network.SecurityData = sec
	c.logger.Warn("network authorisation revoked",
		"network_id", network.ID, "name", network.Name, "error", cause)
}
