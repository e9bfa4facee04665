package loraserverv1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nerrad567/fleetwan-core/internal/handlers"
	"github.com/nerrad567/fleetwan-core/internal/store"
)

// ProtocolName and ProtocolVersion identify this handler in the registry.
const (
	ProtocolName    = "LoRa Server"
	ProtocolVersion = "1.0"
)

// defaultSessionTTL applies when the issued JWT carries no exp claim.
const defaultSessionTTL = 12 * time.Hour

// Handler speaks the LoRa Server v1 REST API: JWT login against
// /api/internal/login, paginated list envelopes, and flat entity payloads.
type Handler struct {
	http   *http.Client
	logger handlers.Logger
}

// New creates a v1 handler. A nil client falls back to a client with a
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

// Login exchanges the network's username and password for a JWT. The
// session expiry is read from the token's exp claim without verifying the
// signature; the remote signed it, we only transport it back.
func (h *Handler) Login(ctx context.Context, network *store.Network) (*handlers.Session, error) {
	sec := network.SecurityData
	if sec.Username == "" || sec.Password == "" {
		return nil, fmt.Errorf("%w: network %s has no username/password", handlers.ErrAuth, network.Name)
	}

	body := map[string]string{"username": sec.Username, "password": sec.Password}
	var reply struct {
		JWT string `json:"jwt"`
	}
	if err := h.Do(ctx, network, nil, http.MethodPost, "/api/internal/login", body, &reply); err != nil {
		return nil, err
	}
	if reply.JWT == "" {
		return nil, fmt.Errorf("%w: login returned no token", handlers.ErrRemote)
	}

	return &handlers.Session{Token: reply.JWT, Expiry: tokenExpiry(reply.JWT)}, nil
}

// Test probes the API with the cheapest authenticated read available.
func (h *Handler) Test(ctx context.Context, network *store.Network, session *handlers.Session) error {
	var page listPage[organization]
	return h.Do(ctx, network, session, http.MethodGet, "/api/organizations?limit=1&offset=0", nil, &page)
}

// tokenExpiry extracts the exp claim from an unverified JWT, falling back
// to a fixed TTL when the claim is absent or the token is not a JWT at all.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Now().Add(defaultSessionTTL)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Now().Add(defaultSessionTTL)
	}
	return exp.Time
}

// PullApplications lists all remote applications, resolving each owning
// organization's name so the reconciler can match companies across
// networks.
func (h *Handler) PullApplications(ctx context.Context, network *store.Network, session *handlers.Session) ([]handlers.RemoteApplication, error) {
	apps, err := listAll[application](ctx, h, network, session, "/api/applications")
	if err != nil {
		return nil, err
	}

	orgNames := map[string]string{}
	out := make([]handlers.RemoteApplication, 0, len(apps))
	for _, a := range apps {
		// A malformed remote object costs only itself; its siblings still
		// translate.
		if a.ID == "" || a.Name == "" {
			h.logger.Warn("skipping application that does not translate",
				"network", network.Name, "reason", "missing id or name")
			continue
		}

		companyName, err := h.organizationName(ctx, network, session, a.OrganizationID, orgNames)
		if err != nil {
			return nil, err
		}

		baseURL, err := h.integrationURL(ctx, network, session, a.ID)
		if err != nil {
			return nil, err
		}

		out = append(out, handlers.RemoteApplication{
			RemoteID:        a.ID,
			CompanyRemoteID: a.OrganizationID,
			CompanyName:     companyName,
			Application: store.Application{
				Name:        a.Name,
				Description: a.Description,
				BaseURL:     baseURL,
			},
			Settings: a.linkSettings(),
		})
	}
	return out, nil
}

// PullDeviceProfiles lists all remote device profiles. The list endpoint
// returns summaries only, so each profile is fetched individually for its
// radio parameters.
func (h *Handler) PullDeviceProfiles(ctx context.Context, network *store.Network, session *handlers.Session) ([]handlers.RemoteDeviceProfile, error) {
	summaries, err := listAll[deviceProfileSummary](ctx, h, network, session, "/api/device-profiles")
	if err != nil {
		return nil, err
	}

	out := make([]handlers.RemoteDeviceProfile, 0, len(summaries))
	for _, s := range summaries {
		var detail struct {
			DeviceProfile deviceProfile `json:"deviceProfile"`
		}
		path := "/api/device-profiles/" + url.PathEscape(s.DeviceProfileID)
		if err := h.Do(ctx, network, session, http.MethodGet, path, nil, &detail); err != nil {
			return nil, err
		}

		out = append(out, handlers.RemoteDeviceProfile{
			RemoteID: s.DeviceProfileID,
			Profile: store.DeviceProfile{
				NetworkTypeID:   network.NetworkTypeID,
				Name:            s.Name,
				NetworkSettings: detail.DeviceProfile.settings(s),
			},
		})
	}
	return out, nil
}

// PullDevices lists the devices of one remote application, attaching
// activation material where the remote has any.
func (h *Handler) PullDevices(ctx context.Context, network *store.Network, session *handlers.Session, appRemoteID string) ([]handlers.RemoteDevice, error) {
	path := "/api/applications/" + url.PathEscape(appRemoteID) + "/devices"
	devices, err := listAll[device](ctx, h, network, session, path)
	if err != nil {
		return nil, err
	}

	out := make([]handlers.RemoteDevice, 0, len(devices))
	for _, d := range devices {
		if d.DevEUI == "" {
			h.logger.Warn("skipping device that does not translate",
				"network", network.Name, "application_remote_id", appRemoteID,
				"reason", "missing devEUI")
			continue
		}

		settings := store.Settings{"devEUI": d.DevEUI}
		activation, err := h.deviceActivation(ctx, network, session, d.DevEUI)
		if err != nil {
			return nil, err
		}
		if activation != nil {
			settings["activation"] = activation
		}

		out = append(out, handlers.RemoteDevice{
			RemoteID:        d.DevEUI,
			ProfileRemoteID: d.DeviceProfileID,
			Device:          store.Device{Name: d.Name, Description: d.Description},
			Settings:        settings,
		})
	}
	return out, nil
}

// integrationURL fetches the application's HTTP integration uplink URL.
// Applications without an HTTP integration report nowhere; that is not an
// error.
func (h *Handler) integrationURL(ctx context.Context, network *store.Network, session *handlers.Session, appID string) (string, error) {
	var integration struct {
		DataUpURL string `json:"dataUpURL"`
	}
	path := "/api/applications/" + url.PathEscape(appID) + "/integrations/http"
	err := h.Do(ctx, network, session, http.MethodGet, path, nil, &integration)
	if err != nil {
		if errors.Is(err, handlers.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return integration.DataUpURL, nil
}

// deviceActivation fetches a device's session keys. Devices that have never
// joined have no activation; that is not an error.
func (h *Handler) deviceActivation(ctx context.Context, network *store.Network, session *handlers.Session, devEUI string) (map[string]any, error) {
	var activation map[string]any
	path := "/api/devices/" + url.PathEscape(devEUI) + "/activation"
	err := h.Do(ctx, network, session, http.MethodGet, path, nil, &activation)
	if err != nil {
		if errors.Is(err, handlers.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return activation, nil
}

// CreateApplication mirrors a canonical application to the remote network.
// The owning organization and service profile come from the link's vendor
// settings.
func (h *Handler) CreateApplication(ctx context.Context, network *store.Network, session *handlers.Session, app *store.Application, link *store.ApplicationNetworkTypeLink) (string, error) {
	body := applicationBody(app, link)
	var reply struct {
		ID string `json:"id"`
	}
	if err := h.Do(ctx, network, session, http.MethodPost, "/api/applications", body, &reply); err != nil {
		return "", err
	}
	if reply.ID == "" {
		return "", fmt.Errorf("%w: create application returned no id", handlers.ErrRemote)
	}
	if err := h.pushIntegration(ctx, network, session, reply.ID, app.BaseURL); err != nil {
		return "", err
	}
	return reply.ID, nil
}

// pushIntegration mirrors the application's reporting URL as an HTTP
// integration on the remote.
func (h *Handler) pushIntegration(ctx context.Context, network *store.Network, session *handlers.Session, remoteID, baseURL string) error {
	if baseURL == "" {
		return nil
	}
	body := map[string]string{"dataUpURL": baseURL}
	path := "/api/applications/" + url.PathEscape(remoteID) + "/integrations/http"
	err := h.Do(ctx, network, session, http.MethodPost, path, body, nil)
	if errors.Is(err, handlers.ErrConflict) {
		return h.Do(ctx, network, session, http.MethodPut, path, body, nil)
	}
	return err
}

// UpdateApplication pushes the canonical application state over the remote
// counterpart.
func (h *Handler) UpdateApplication(ctx context.Context, network *store.Network, session *handlers.Session, remoteID string, app *store.Application, link *store.ApplicationNetworkTypeLink) error {
	body := applicationBody(app, link)
	body["id"] = remoteID
	path := "/api/applications/" + url.PathEscape(remoteID)
	if err := h.Do(ctx, network, session, http.MethodPut, path, body, nil); err != nil {
		return err
	}
	return h.pushIntegration(ctx, network, session, remoteID, app.BaseURL)
}

// DeleteApplication removes the remote counterpart of an application.
func (h *Handler) DeleteApplication(ctx context.Context, network *store.Network, session *handlers.Session, remoteID string) error {
	path := "/api/applications/" + url.PathEscape(remoteID)
	return h.Do(ctx, network, session, http.MethodDelete, path, nil, nil)
}

// CreateDeviceProfile mirrors a canonical device profile to the remote
// network. Radio parameters travel opaquely from the profile's
// NetworkSettings.
func (h *Handler) CreateDeviceProfile(ctx context.Context, network *store.Network, session *handlers.Session, profile *store.DeviceProfile) (string, error) {
	var reply struct {
		DeviceProfileID string `json:"deviceProfileID"`
	}
	if err := h.Do(ctx, network, session, http.MethodPost, "/api/device-profiles", deviceProfileBody(profile), &reply); err != nil {
		return "", err
	}
	if reply.DeviceProfileID == "" {
		return "", fmt.Errorf("%w: create device profile returned no id", handlers.ErrRemote)
	}
	return reply.DeviceProfileID, nil
}

// UpdateDeviceProfile pushes the canonical profile state over the remote
// counterpart.
func (h *Handler) UpdateDeviceProfile(ctx context.Context, network *store.Network, session *handlers.Session, remoteID string, profile *store.DeviceProfile) error {
	body := deviceProfileBody(profile)
	if dp, ok := body["deviceProfile"].(map[string]any); ok {
		dp["deviceProfileID"] = remoteID
	}
	path := "/api/device-profiles/" + url.PathEscape(remoteID)
	return h.Do(ctx, network, session, http.MethodPut, path, body, nil)
}

// DeleteDeviceProfile removes the remote counterpart of a device profile.
func (h *Handler) DeleteDeviceProfile(ctx context.Context, network *store.Network, session *handlers.Session, remoteID string) error {
	path := "/api/device-profiles/" + url.PathEscape(remoteID)
	return h.Do(ctx, network, session, http.MethodDelete, path, nil, nil)
}

// CreateDevice mirrors a canonical device to the remote network. The
// devEUI must be present in the link's vendor settings; it doubles as the
// remote ID. Activation material in the link settings is pushed after the
// device exists.
func (h *Handler) CreateDevice(ctx context.Context, network *store.Network, session *handlers.Session, appRemoteID, profileRemoteID string, dev *store.Device, link *store.DeviceNetworkTypeLink) (string, error) {
	devEUI, err := linkDevEUI(link)
	if err != nil {
		return "", err
	}

	body := deviceBody(dev, link, appRemoteID, profileRemoteID)
	if err := h.Do(ctx, network, session, http.MethodPost, "/api/devices", body, nil); err != nil {
		return "", err
	}

	if err := h.pushActivation(ctx, network, session, devEUI, link); err != nil {
		return "", err
	}
	return devEUI, nil
}

// UpdateDevice pushes the canonical device state over the remote
// counterpart.
func (h *Handler) UpdateDevice(ctx context.Context, network *store.Network, session *handlers.Session, remoteID, profileRemoteID string, dev *store.Device, link *store.DeviceNetworkTypeLink) error {
	body := deviceBody(dev, link, "", profileRemoteID)
	body["devEUI"] = remoteID
	path := "/api/devices/" + url.PathEscape(remoteID)
	if err := h.Do(ctx, network, session, http.MethodPut, path, body, nil); err != nil {
		return err
	}
	return h.pushActivation(ctx, network, session, remoteID, link)
}

// DeleteDevice removes the remote counterpart of a device.
func (h *Handler) DeleteDevice(ctx context.Context, network *store.Network, session *handlers.Session, remoteID string) error {
	path := "/api/devices/" + url.PathEscape(remoteID)
	return h.Do(ctx, network, session, http.MethodDelete, path, nil, nil)
}

// pushActivation transfers session keys to the remote when the link carries
// them. Links without activation material are left to join over the air.
func (h *Handler) pushActivation(ctx context.Context, network *store.Network, session *handlers.Session, devEUI string, link *store.DeviceNetworkTypeLink) error {
	activation, ok := link.NetworkSettings["activation"].(map[string]any)
	if !ok || len(activation) == 0 {
		return nil
	}
	path := "/api/devices/" + url.PathEscape(devEUI) + "/activation"
	return h.Do(ctx, network, session, http.MethodPost, path, activation, nil)
}

// organizationName resolves an organization ID through the per-pull cache.
func (h *Handler) organizationName(ctx context.Context, network *store.Network, session *handlers.Session, orgID string, cache map[string]string) (string, error) {
	if orgID == "" {
		return "", nil
	}
	if name, ok := cache[orgID]; ok {
		return name, nil
	}

	var org organization
	path := "/api/organizations/" + url.PathEscape(orgID)
	if err := h.Do(ctx, network, session, http.MethodGet, path, nil, &org); err != nil {
		return "", err
	}
	cache[orgID] = org.Name
	return org.Name, nil
}
