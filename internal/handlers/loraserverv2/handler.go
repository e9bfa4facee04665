// Package loraserverv2 implements the protocol handler for LoRa Server
// version 2 deployments. Version 2 keeps most of the v1 REST surface, so
// the handler embeds the v1 implementation and overrides only what
// changed: non-expiring API key authentication (with username/password
// login kept as a fallback) and the query-style device listing.
package loraserverv2

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nerrad567/fleetwan-core/internal/handlers"
	"github.com/nerrad567/fleetwan-core/internal/handlers/loraserverv1"
	"github.com/nerrad567/fleetwan-core/internal/store"
)

// ProtocolName and ProtocolVersion identify this handler in the registry.
const (
	ProtocolName    = "LoRa Server"
	ProtocolVersion = "2.0"
)

// Handler speaks the LoRa Server v2 REST API.
type Handler struct {
	*loraserverv1.Handler
	logger handlers.Logger
}

// New creates a v2 handler. A nil client falls back to a client with a
// 30 second timeout.
func New(client *http.Client) *Handler {
	return &Handler{Handler: loraserverv1.New(client), logger: noopLogger{}}
}

// SetLogger sets the logger for this handler and the embedded v1 surface.
func (h *Handler) SetLogger(logger handlers.Logger) {
	h.logger = logger
	h.Handler.SetLogger(logger)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Login prefers the network's API key, which v2 accepts directly as a
// non-expiring bearer credential. Networks still configured with
// username/password go through the v1 login exchange.
func (h *Handler) Login(ctx context.Context, network *store.Network) (*handlers.Session, error) {
	if key := network.SecurityData.APIKey; key != "" {
		return &handlers.Session{Token: key}, nil
	}
	if network.SecurityData.Username != "" {
		return h.Handler.Login(ctx, network)
	}
	return nil, fmt.Errorf("%w: network %s has no apikey or username/password", handlers.ErrAuth, network.Name)
}

// Test probes the API with an authenticated read. API keys are only
// validated here, since Login accepts them without a round trip.
func (h *Handler) Test(ctx context.Context, network *store.Network, session *handlers.Session) error {
	var reply struct {
		Result []remoteDevice `json:"result"`
	}
	return h.Do(ctx, network, session, http.MethodGet, "/api/devices?limit=1&offset=0", nil, &reply)
}

// remoteDevice is the v2 device list item. v2 moved devices off the
// application sub-resource and onto a filtered collection.
type remoteDevice struct {
	DevEUI          string `json:"devEUI"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	DeviceProfileID string `json:"deviceProfileID"`
}

// PullDevices lists the devices of one remote application via the v2
// query-filtered collection endpoint.
func (h *Handler) PullDevices(ctx context.Context, network *store.Network, session *handlers.Session, appRemoteID string) ([]handlers.RemoteDevice, error) {
	var all []remoteDevice
	const limit = 100
	for offset := 0; ; offset += limit {
		var page struct {
			Result []remoteDevice `json:"result"`
		}
		path := fmt.Sprintf("/api/devices?applicationID=%s&limit=%d&offset=%d",
			url.QueryEscape(appRemoteID), limit, offset)
		if err := h.Do(ctx, network, session, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Result...)
		if len(page.Result) < limit {
			break
		}
	}

	out := make([]handlers.RemoteDevice, 0, len(all))
	for _, d := range all {
		// A malformed remote object costs only itself; its siblings still
		// translate.
		if d.DevEUI == "" {
			h.logger.Warn("skipping device that does not translate",
				"network", network.Name, "application_remote_id", appRemoteID,
				"reason", "missing devEUI")
			continue
		}
		out = append(out, handlers.RemoteDevice{
			RemoteID:        d.DevEUI,
			ProfileRemoteID: d.DeviceProfileID,
			Device:          store.Device{Name: d.Name, Description: d.Description},
			Settings:        store.Settings{"devEUI": d.DevEUI},
		})
	}
	return out, nil
}
