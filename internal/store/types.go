package store

import "time"

// Settings is an opaque vendor-defined settings blob carried on
// *NetworkTypeLink records and DeviceProfiles. It is never interpreted
// outside the protocol handler that produced it.
type Settings map[string]any

// SecurityData holds a Network's credentials, tokens, and authorisation
// state. It is stored as a JSON column on the networks table and must never
// reach a non-admin API caller unredacted.
type SecurityData struct {
	// Credentials: exactly one of the three credential sets is normally
	// populated, depending on what the vendor's protocol expects.
	Username     string `json:"username,omitempty"`
	Password     string `json:"password,omitempty"`
	APIKey       string `json:"apikey,omitempty"`
	ClientID     string `json:"clientId,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`

	// OAuth state. OAuthState correlates a browser consent redirect with
	// this network; AuthorizationCode is the single-use code the callback
	// deposits for the handler's next login to exchange.
	AccessToken       string    `json:"accessToken,omitempty"`
	RefreshToken      string    `json:"refreshToken,omitempty"`
	TokenExpiry       time.Time `json:"tokenExpiry,omitempty"`
	OAuthState        string    `json:"oauthState,omitempty"`
	AuthorizationCode string    `json:"authorizationCode,omitempty"`

	// Authorisation status.
	Status     SecurityStatus `json:"status"`
	Authorized bool           `json:"authorized"`
	Enabled    bool           `json:"enabled"`
	Message    string         `json:"message,omitempty"`
}

// SecurityStatus is the authorisation lifecycle state of a Network.
type SecurityStatus string

const (
	// SecurityPending means the network awaits credentials or an OAuth callback.
	SecurityPending SecurityStatus = "pending"

	// SecurityAuthorized means the last credential check or handshake succeeded.
	SecurityAuthorized SecurityStatus = "authorized"

	// SecurityFailed means the last credential check was rejected.
	SecurityFailed SecurityStatus = "failed"
)

// NetworkType classifies a wireless technology (e.g. "LoRa", "IP") and gates
// which settings schema and handler family apply.
type NetworkType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReportingProtocol identifies how uplink data is delivered to an
// application's own endpoint (e.g. "POST", "MQTT").
type ReportingProtocol struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Handler string `json:"handler"`
}

// NetworkProtocol is a (vendor, version) pair mapping to exactly one handler
// implementation. MasterProtocolID optionally chains a version to its
// lineage root so a registry miss can fall back to the master's handler.
type NetworkProtocol struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Version          string  `json:"version"`
	NetworkTypeID    string  `json:"network_type_id"`
	MasterProtocolID *string `json:"master_protocol_id,omitempty"`
}

// Network is a configured remote endpoint: one vendor deployment reachable
// at BaseURL, speaking one NetworkProtocol.
type Network struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	NetworkProtocolID string       `json:"network_protocol_id"`
	NetworkTypeID     string       `json:"network_type_id"`
	BaseURL           string       `json:"base_url"`
	SecurityData      SecurityData `json:"security_data"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// SyncReady reports whether the network may participate in pull/push.
// Local CRUD continues regardless of this.
func (n *Network) SyncReady() bool {
	return n.SecurityData.Authorized && n.SecurityData.Enabled
}

// Company is a canonical tenant owning applications and device profiles.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Application is a canonical, vendor-agnostic application. BaseURL, when
// set, is where uplink data is reported via ReportingProtocolID.
type Application struct {
	ID                  string    `json:"id"`
	CompanyID           *string   `json:"company_id,omitempty"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	BaseURL             string    `json:"base_url,omitempty"`
	ReportingProtocolID *string   `json:"reporting_protocol_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// DeviceProfile is a canonical device profile. Everything a vendor defines
// beyond name/description lives in NetworkSettings.
type DeviceProfile struct {
	ID              string    `json:"id"`
	CompanyID       *string   `json:"company_id,omitempty"`
	NetworkTypeID   string    `json:"network_type_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	NetworkSettings Settings  `json:"network_settings"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Device is a canonical end device belonging to one application.
type Device struct {
	ID            string    `json:"id"`
	ApplicationID string    `json:"application_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	DeviceModel   string    `json:"device_model,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CompanyNetworkTypeLink attaches a Company to a NetworkType with opaque
// vendor settings. At most one link exists per (company, network type).
type CompanyNetworkTypeLink struct {
	ID              string    `json:"id"`
	CompanyID       string    `json:"company_id"`
	NetworkTypeID   string    `json:"network_type_id"`
	NetworkSettings Settings  `json:"network_settings"`
	Enabled         bool      `json:"enabled"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ApplicationNetworkTypeLink attaches an Application to a NetworkType.
type ApplicationNetworkTypeLink struct {
	ID              string    `json:"id"`
	ApplicationID   string    `json:"application_id"`
	NetworkTypeID   string    `json:"network_type_id"`
	NetworkSettings Settings  `json:"network_settings"`
	Enabled         bool      `json:"enabled"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DeviceNetworkTypeLink attaches a Device to a NetworkType. It additionally
// references a DeviceProfile, since a device may use a different profile per
// network type. NetworkSettings may carry activation data (session keys)
// consumed only by the handler that wrote it.
type DeviceNetworkTypeLink struct {
	ID              string    `json:"id"`
	DeviceID        string    `json:"device_id"`
	NetworkTypeID   string    `json:"network_type_id"`
	DeviceProfileID *string   `json:"device_profile_id,omitempty"`
	NetworkSettings Settings  `json:"network_settings"`
	Enabled         bool      `json:"enabled"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// OriginKind names the canonical entity family an origin row correlates.
type OriginKind string

const (
	OriginCompany       OriginKind = "company"
	OriginApplication   OriginKind = "application"
	OriginDeviceProfile OriginKind = "device_profile"
	OriginDevice        OriginKind = "device"
)

// Origin correlates one remote object on one network with one local record.
// RemoteID is vendor-specific (integer, UUID, or string) and is always
// treated as an opaque string when matching.
type Origin struct {
	ID        string     `json:"id"`
	NetworkID string     `json:"network_id"`
	Kind      OriginKind `json:"kind"`
	LocalID   string     `json:"local_id"`
	RemoteID  string     `json:"remote_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// User is a local API account. Role "admin" sees full network securityData;
// every other role sees only the redacted view.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleAdmin is the privileged role for securityData visibility.
const RoleAdmin = "admin"
