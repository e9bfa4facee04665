package handlers

import (
	"context"
	"fmt"
	"sync"

	"github.com/nerrad567/fleetwan-core/internal/store"
)

// Logger defines the logging interface used by the Registry.
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

// ProtocolSource resolves network protocol records, used by the registry to
// follow master protocol chains. *store.Store satisfies it.
type ProtocolSource interface {
	GetNetworkProtocol(ctx context.Context, id string) (*store.NetworkProtocol, error)
}

// Registry maps (protocol name, version) pairs to their Handler. Handlers
// register at startup; resolution at sync time follows the master protocol
// chain when a specific version has no handler of its own.
//
// All public methods are thread-safe.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   Logger
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Register binds a handler to a protocol name and version, replacing any
// previous binding for the same pair.
func (r *Registry) Register(name, version string, h Handler) {
	r.mu.Lock()
	r.handlers[protocolKey(name, version)] = h
	r.mu.Unlock()
	r.logger.Info("protocol handler registered", "protocol", name, "version", version)
}

// Handler returns the handler bound to exactly (name, version).
func (r *Registry) Handler(name, version string) (Handler, error) {
	r.mu.RLock()
	h, ok := r.handlers[protocolKey(name, version)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrUnsupported, name, version)
	}
	return h, nil
}

// Resolve returns the handler for a network protocol record. A version with
// no handler of its own falls back along its master protocol chain, so a
// deployment speaking "LoRa Server 2.3" can be served by the 2.0 handler
// its protocol row points at.
func (r *Registry) Resolve(ctx context.Context, src ProtocolSource, protocol *store.NetworkProtocol) (Handler, error) {
	p := protocol
	for {
		h, err := r.Handler(p.Name, p.Version)
		if err == nil {
			if p.ID != protocol.ID {
				r.logger.Debug("resolved handler via master protocol",
					"requested", protocol.Version, "served_by", p.Version, "protocol", p.Name)
			}
			return h, nil
		}
		if p.MasterProtocolID == nil {
			return nil, fmt.Errorf("%w: %s %s", ErrUnsupported, protocol.Name, protocol.Version)
		}
		p, err = src.GetNetworkProtocol(ctx, *p.MasterProtocolID)
		if err != nil {
			return nil, fmt.Errorf("resolving master protocol: %w", err)
		}
	}
}

// Protocols returns the registered (name, version) keys, for diagnostics.
func (r *Registry) Protocols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		keys = append(keys, k)
	}
	return keys
}

func protocolKey(name, version string) string {
	return name + "/" + version
}
