// Package ttnv2 implements the protocol handler for The Things Network
// v2: OAuth2 login (consent code, refresh token, or client-credentials
// grant, in that order) and the account-server application and device
// resources. TTN has no device profile concept, so profile operations
// are honest no-ops.
package ttnv2

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nerrad567/fleetwan-core/internal/handlers"
	"github.com/nerrad567/fleetwan-core/internal/store"
)

// ProtocolName and ProtocolVersion identify this handler in the registry.
const (
	ProtocolName    = "The Things Network"
	ProtocolVersion = "2.0"
)

// Handler speaks the TTN v2 account server API.
type Handler struct {
	http   *http.Client
	logger handlers.Logger
}

// New creates a TTN v2 handler. A nil client falls back to a client with a
// 30 second timeout.
func New(client *http.Client) *Handler {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Handler{http: client, logger: noopLogger{}}
}

// SetLogger sets the logger for the handler.
func (h *Handler) SetLogger(logger handlers.Logger) {
	h.logger = logger
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type tokenReply struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// Login obtains an OAuth access token. A pending consent code from the
// callback endpoint is exchanged first, then a stored refresh token;
// when both are absent or rejected, the handler falls back to the
// client-credentials grant. Fresh tokens are written back onto the
// network's SecurityData so the next authorisation persist carries them.
func (h *Handler) Login(ctx context.Context, network *store.Network) (*handlers.Session, error) {
	sec := &network.SecurityData
	if sec.ClientID == "" || sec.ClientSecret == "" {
		return nil, fmt.Errorf("%w: network %s has no OAuth client credentials", handlers.ErrAuth, network.Name)
	}

	if sec.AuthorizationCode != "" {
		code := sec.AuthorizationCode
		sec.AuthorizationCode = ""
		session, err := h.token(ctx, network, map[string]string{
			"grant_type": "authorization_code",
			"code":       code,
		})
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, handlers.ErrAuth) {
			return nil, err
		}
		// Code already spent or revoked; fall through to the other grants.
	}

	if sec.RefreshToken != "" {
		session, err := h.token(ctx, network, map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": sec.RefreshToken,
		})
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, handlers.ErrAuth) {
			return nil, err
		}
		// Refresh token revoked or expired; fall through to a full grant.
	}

	return h.token(ctx, network, map[string]string{
		"grant_type": "client_credentials",
	})
}

func (h *Handler) token(ctx context.Context, network *store.Network, grant map[string]string) (*handlers.Session, error) {
	sec := &network.SecurityData
	basic := "Basic " + base64.StdEncoding.EncodeToString([]byte(sec.ClientID+":"+sec.ClientSecret))

	var reply tokenReply
	if err := h.do(ctx, network, basic, http.MethodPost, "/users/token", grant, &reply); err != nil {
		return nil, err
	}
	if reply.AccessToken == "" {
		return nil, fmt.Errorf("%w: token endpoint returned no access token", handlers.ErrRemote)
	}

	expiry := time.Now().Add(time.Duration(reply.ExpiresIn) * time.Second)
	sec.AccessToken = reply.AccessToken
	sec.TokenExpiry = expiry
	if reply.RefreshToken != "" {
		sec.RefreshToken = reply.RefreshToken
	}

	return &handlers.Session{Token: reply.AccessToken, Expiry: expiry}, nil
}

// Test probes the API with the application listing.
func (h *Handler) Test(ctx context.Context, network *store.Network, session *handlers.Session) error {
	var apps []remoteApplication
	return h.do(ctx, network, bearer(session), http.MethodGet, "/applications", nil, &apps)
}

type remoteApplication struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	EUIs []string `json:"euis"`
}

// PullApplications lists all applications visible to the OAuth client.
// TTN does not expose an owning-company name, so cross-network company
// matching falls back to origin tracking alone.
func (h *Handler) PullApplications(ctx context.Context, network *store.Network, session *handlers.Session) ([]handlers.RemoteApplication, error) {
	var apps []remoteApplication
	if err := h.do(ctx, network, bearer(session), http.MethodGet, "/applications", nil, &apps); err != nil {
		return nil, err
	}

	out := make([]handlers.RemoteApplication, 0, len(apps))
	for _, a := range apps {
		// A malformed remote object costs only itself; its siblings still
		// translate.
		if a.ID == "" {
			h.logger.Warn("skipping application that does not translate",
				"network", network.Name, "reason", "missing id")
			continue
		}
		name := a.Name
		if name == "" {
			name = a.ID
		}
		settings := store.Settings{"applicationID": a.ID}
		if len(a.EUIs) > 0 {
			settings["appEUI"] = a.EUIs[0]
		}
		out = append(out, handlers.RemoteApplication{
			RemoteID:    a.ID,
			Application: store.Application{Name: name},
			Settings:    settings,
		})
	}
	return out, nil
}

// PullDeviceProfiles returns nothing: TTN v2 has no device profiles.
func (h *Handler) PullDeviceProfiles(context.Context, *store.Network, *handlers.Session) ([]handlers.RemoteDeviceProfile, error) {
	return nil, nil
}

type remoteDevice struct {
	DevID          string `json:"dev_id"`
	Description    string `json:"description"`
	LorawanDevice  struct {
		DevEUI  string `json:"dev_eui"`
		AppKey  string `json:"app_key"`
		DevAddr string `json:"dev_addr"`
	} `json:"lorawan_device"`
}

// PullDevices lists the devices of one remote application.
func (h *Handler) PullDevices(ctx context.Context, network *store.Network, session *handlers.Session, appRemoteID string) ([]handlers.RemoteDevice, error) {
	var reply struct {
		Devices []remoteDevice `json:"devices"`
	}
	path := "/applications/" + url.PathEscape(appRemoteID) + "/devices"
	if err := h.do(ctx, network, bearer(session), http.MethodGet, path, nil, &reply); err != nil {
		return nil, err
	}

	out := make([]handlers.RemoteDevice, 0, len(reply.Devices))
	for _, d := range reply.Devices {
		if d.DevID == "" {
			h.logger.Warn("skipping device that does not translate",
				"network", network.Name, "application_remote_id", appRemoteID,
				"reason", "missing dev_id")
			continue
		}
		settings := store.Settings{"devID": d.DevID}
		if d.LorawanDevice.DevEUI != "" {
			settings["devEUI"] = d.LorawanDevice.DevEUI
		}
		if d.LorawanDevice.AppKey != "" {
			settings["appKey"] = d.LorawanDevice.AppKey
		}
		if d.LorawanDevice.DevAddr != "" {
			settings["devAddr"] = d.LorawanDevice.DevAddr
		}
		out = append(out, handlers.RemoteDevice{
			RemoteID: appRemoteID + "/" + d.DevID,
			Device:   store.Device{Name: d.DevID, Description: d.Description},
			Settings: settings,
		})
	}
	return out, nil
}

// CreateApplication registers a canonical application with TTN. TTN
// requires a caller-chosen ID, derived here from the link settings or the
// application name.
func (h *Handler) CreateApplication(ctx context.Context, network *store.Network, session *handlers.Session, app *store.Application, link *store.ApplicationNetworkTypeLink) (string, error) {
	id, _ := link.NetworkSettings["applicationID"].(string)
	if id == "" {
		id = app.Name
	}
	body := map[string]any{"id": id, "name": app.Name}
	if err := h.do(ctx, network, bearer(session), http.MethodPost, "/applications", body, nil); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateApplication pushes the canonical application state to TTN.
func (h *Handler) UpdateApplication(ctx context.Context, network *store.Network, session *handlers.Session, remoteID string, app *store.Application, _ *store.ApplicationNetworkTypeLink) error {
	body := map[string]any{"name": app.Name}
	path := "/applications/" + url.PathEscape(remoteID)
	return h.do(ctx, network, bearer(session), http.MethodPatch, path, body, nil)
}

// DeleteApplication removes the remote counterpart of an application.
func (h *Handler) DeleteApplication(ctx context.Context, network *store.Network, session *handlers.Session, remoteID string) error {
	path := "/applications/" + url.PathEscape(remoteID)
	return h.do(ctx, network, bearer(session), http.MethodDelete, path, nil, nil)
}

// CreateDeviceProfile is a no-op: TTN v2 has no device profiles, so there
// is nothing to mirror and no remote ID to record.
func (h *Handler) CreateDeviceProfile(context.Context, *store.Network, *handlers.Session, *store.DeviceProfile) (string, error) {
	return "", nil
}

// UpdateDeviceProfile is a no-op, matching CreateDeviceProfile.
func (h *Handler) UpdateDeviceProfile(context.Context, *store.Network, *handlers.Session, string, *store.DeviceProfile) error {
	return nil
}

// DeleteDeviceProfile is a no-op, matching CreateDeviceProfile.
func (h *Handler) DeleteDeviceProfile(context.Context, *store.Network, *handlers.Session, string) error {
	return nil
}

// CreateDevice registers a canonical device under a remote application.
// The dev_id defaults to the device name; LoRaWAN identity and key
// material come from the link settings. TTN addresses devices by
// (application, device), so the returned remote ID is the composite
// "appID/devID".
func (h *Handler) CreateDevice(ctx context.Context, network *store.Network, session *handlers.Session, appRemoteID, _ string, dev *store.Device, link *store.DeviceNetworkTypeLink) (string, error) {
	devID, _ := link.NetworkSettings["devID"].(string)
	if devID == "" {
		devID = dev.Name
	}
	body := deviceBody(devID, appRemoteID, dev, link)
	path := "/applications/" + url.PathEscape(appRemoteID) + "/devices"
	if err := h.do(ctx, network, bearer(session), http.MethodPost, path, body, nil); err != nil {
		return "", err
	}
	return appRemoteID + "/" + devID, nil
}

// UpdateDevice pushes the canonical device state to TTN.
func (h *Handler) UpdateDevice(ctx context.Context, network *store.Network, session *handlers.Session, remoteID, _ string, dev *store.Device, link *store.DeviceNetworkTypeLink) error {
	appID, devID, err := splitRemoteID(remoteID)
	if err != nil {
		return err
	}
	body := deviceBody(devID, appID, dev, link)
	path := "/applications/" + url.PathEscape(appID) + "/devices/" + url.PathEscape(devID)
	return h.do(ctx, network, bearer(session), http.MethodPut, path, body, nil)
}

// DeleteDevice removes the remote counterpart of a device.
func (h *Handler) DeleteDevice(ctx context.Context, network *store.Network, session *handlers.Session, remoteID string) error {
	appID, devID, err := splitRemoteID(remoteID)
	if err != nil {
		return err
	}
	path := "/applications/" + url.PathEscape(appID) + "/devices/" + url.PathEscape(devID)
	return h.do(ctx, network, bearer(session), http.MethodDelete, path, nil, nil)
}

// splitRemoteID takes apart the composite "appID/devID" remote ID recorded
// at create time.
func splitRemoteID(remoteID string) (appID, devID string, err error) {
	appID, devID, ok := strings.Cut(remoteID, "/")
	if !ok || appID == "" || devID == "" {
		return "", "", fmt.Errorf("%w: malformed TTN device id %q", handlers.ErrMapping, remoteID)
	}
	return appID, devID, nil
}

func deviceBody(devID, appID string, dev *store.Device, link *store.DeviceNetworkTypeLink) map[string]any {
	lorawan := map[string]any{}
	for from, to := range map[string]string{
		"devEUI": "dev_eui", "appKey": "app_key", "devAddr": "dev_addr",
	} {
		if v, ok := link.NetworkSettings[from]; ok {
			lorawan[to] = v
		}
	}
	return map[string]any{
		"dev_id":         devID,
		"app_id":         appID,
		"description":    dev.Description,
		"lorawan_device": lorawan,
	}
}
