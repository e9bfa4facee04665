package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/fleetwan-core/internal/store"
)

// Uplink is one device data message received from a vendor network,
// normalised just enough to route it. Payload is passed through to the
// application's endpoint untouched.
type Uplink struct {
	ApplicationID string          `json:"applicationId"`
	NetworkID     string          `json:"networkId"`
	DevEUI        string          `json:"devEUI,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	ReceivedAt    time.Time       `json:"receivedAt"`
}

// Reporter delivers one uplink to an application's own endpoint.
type Reporter interface {
	Report(ctx context.Context, app *store.Application, up *Uplink) error
}

// Store is the subset of the data store the dispatcher needs.
type Store interface {
	GetApplication(ctx context.Context, id string) (*store.Application, error)
	GetReportingProtocol(ctx context.Context, id string) (*store.ReportingProtocol, error)
}

// Logger is the subset of logging the dispatcher needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(msg string, args ...any) {}
func (noopLogger) Warn(msg string, args ...any) {}

// Metrics records ingest throughput. Implementations must be safe for
// concurrent use.
type Metrics interface {
	RecordIngest(applicationID, networkID string, size int, duration time.Duration, err error)
}

type noopMetrics struct{}

func (noopMetrics) RecordIngest(applicationID, networkID string, size int, duration time.Duration, err error) {
}

// Dispatcher routes ingested uplinks to the reporter selected by the
// application's reporting protocol.
type Dispatcher struct {
	store   Store
	logger  Logger
	metrics Metrics

	mu        sync.RWMutex
	reporters map[string]Reporter
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher's logger.
func WithLogger(l Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithMetrics sets the dispatcher's metrics sink.
func WithMetrics(m Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// NewDispatcher creates a dispatcher with no reporters registered.
func NewDispatcher(st Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:     st,
		logger:    noopLogger{},
		metrics:   noopMetrics{},
		reporters: make(map[string]Reporter),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register binds a reporter to a reporting protocol handler name
// ("post", "mqtt"). Later registrations replace earlier ones.
func (d *Dispatcher) Register(handler string, r Reporter) {
	d.mu.Lock()
	d.reporters[handler] = r
	d.mu.Unlock()
}

// Dispatch delivers one raw uplink payload for an application. The
// networkID identifies which vendor network produced it and is carried
// through for logging and metrics only.
func (d *Dispatcher) Dispatch(ctx context.Context, applicationID, networkID string, payload []byte) error {
	start := time.Now()
	err := d.dispatch(ctx, applicationID, networkID, payload)
	d.metrics.RecordIngest(applicationID, networkID, len(payload), time.Since(start), err)
	return err
}

func (d *Dispatcher) dispatch(ctx context.Context, applicationID, networkID string, payload []byte) error {
	app, err := d.store.GetApplication(ctx, applicationID)
	if err != nil {
		return fmt.Errorf("loading application: %w", err)
	}

	if app.ReportingProtocolID == nil {
		return ErrNoReporting
	}
	proto, err := d.store.GetReportingProtocol(ctx, *app.ReportingProtocolID)
	if err != nil {
		return fmt.Errorf("loading reporting protocol: %w", err)
	}

	d.mu.RLock()
	reporter, ok := d.reporters[proto.Handler]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownHandler, proto.Handler)
	}

	up := &Uplink{
		ApplicationID: applicationID,
		NetworkID:     networkID,
		DevEUI:        extractDevEUI(payload),
		Payload:       payload,
		ReceivedAt:    time.Now().UTC(),
	}

	if err := reporter.Report(ctx, app, up); err != nil {
		d.logger.Warn("uplink delivery failed",
			"application_id", applicationID,
			"network_id", networkID,
			"handler", proto.Handler,
			"error", err,
		)
		return err
	}

	d.logger.Info("uplink delivered",
		"application_id", applicationID,
		"network_id", networkID,
		"handler", proto.Handler,
		"dev_eui", up.DevEUI,
	)
	return nil
}

// extractDevEUI pulls the device EUI out of a vendor uplink payload.
// Vendors disagree on the field name, so the common spellings are tried
// in order. Returns "" when none is present.
func extractDevEUI(payload []byte) string {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	for _, key := range []string{"devEUI", "dev_eui", "hardware_serial"} {
		raw, ok := body[key]
		if !ok {
			continue
		}
		var eui string
		if err := json.Unmarshal(raw, &eui); err == nil && eui != "" {
			return eui
		}
	}
	return ""
}
