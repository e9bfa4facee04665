package handlers

import (
	"context"
	"time"

	"github.com/nerrad567/fleetwan-core/internal/store"
)

// Session is an authenticated connection to one remote network. Handlers
// produce it from Login and expect it back on every subsequent call. The
// security coordinator owns caching and refresh; handlers treat it as an
// opaque bearer credential with a lifetime.
type Session struct {
	// Token is the bearer credential in whatever shape the vendor issues
	// (JWT, opaque API key, OAuth access token).
	Token string

	// Expiry is when the token stops being accepted, or zero when the
	// vendor issues non-expiring credentials.
	Expiry time.Time
}

// Expired reports whether the session is past (or has no remaining margin
// before) its expiry. Sessions without an expiry never expire.
func (s *Session) Expired() bool {
	if s == nil || s.Token == "" {
		return true
	}
	if s.Expiry.IsZero() {
		return false
	}
	return time.Now().After(s.Expiry.Add(-30 * time.Second))
}

// RemoteApplication is one application as reported by a remote network,
// already translated to the canonical model. Vendor fields that have no
// canonical equivalent arrive in Settings and are stored opaquely on the
// application's network type link.
type RemoteApplication struct {
	RemoteID string

	// CompanyRemoteID and CompanyName identify the owning tenant on the
	// remote's ID scheme, when the vendor exposes one. The name lets the
	// reconciler match the same tenant across unrelated networks.
	CompanyRemoteID string
	CompanyName     string

	Application store.Application
	Settings    store.Settings
}

// RemoteDeviceProfile is one device profile as reported by a remote network.
// Everything beyond name and description is carried in the profile's own
// NetworkSettings.
type RemoteDeviceProfile struct {
	RemoteID string
	Profile  store.DeviceProfile
}

// RemoteDevice is one device as reported by a remote network.
// ProfileRemoteID names the device profile on the remote's ID scheme; the
// pull reconciler resolves it through the origins index. Settings carries
// link-level vendor data, including activation material when present.
type RemoteDevice struct {
	RemoteID        string
	ProfileRemoteID string
	Device          store.Device
	Settings        store.Settings
}

// Handler talks one vendor protocol version. One instance serves every
// network configured with that protocol; all per-network state travels in
// the Network record and the Session.
//
// Pull methods list remote objects translated to the canonical model. Push
// methods mirror one canonical object to the remote network and return the
// remote's ID for the created object so it can be recorded as an origin.
//
// Error contract: credential rejections wrap ErrAuth, missing remote
// objects wrap ErrNotFound, duplicate-on-create wraps ErrConflict,
// untranslatable payloads wrap ErrMapping, and everything else remote-side
// wraps ErrRemote.
type Handler interface {
	// Login authenticates against the network using its SecurityData.
	Login(ctx context.Context, network *store.Network) (*Session, error)

	// Test verifies connectivity and credentials without side effects.
	// Used when a network is created or its credentials change.
	Test(ctx context.Context, network *store.Network, session *Session) error

	// PullApplications lists all applications visible to the session.
	PullApplications(ctx context.Context, network *store.Network, session *Session) ([]RemoteApplication, error)

	// PullDeviceProfiles lists all device profiles visible to the session.
	PullDeviceProfiles(ctx context.Context, network *store.Network, session *Session) ([]RemoteDeviceProfile, error)

	// PullDevices lists the devices of one remote application.
	PullDevices(ctx context.Context, network *store.Network, session *Session, appRemoteID string) ([]RemoteDevice, error)

	// CreateApplication mirrors a canonical application to the network.
	// The link carries the vendor settings for this network type.
	CreateApplication(ctx context.Context, network *store.Network, session *Session, app *store.Application, link *store.ApplicationNetworkTypeLink) (string, error)

	// UpdateApplication pushes changed application fields to the network.
	UpdateApplication(ctx context.Context, network *store.Network, session *Session, remoteID string, app *store.Application, link *store.ApplicationNetworkTypeLink) error

	// DeleteApplication removes the remote counterpart of an application.
	DeleteApplication(ctx context.Context, network *store.Network, session *Session, remoteID string) error

	// CreateDeviceProfile mirrors a canonical device profile to the network.
	CreateDeviceProfile(ctx context.Context, network *store.Network, session *Session, profile *store.DeviceProfile) (string, error)

	// UpdateDeviceProfile pushes changed profile fields to the network.
	UpdateDeviceProfile(ctx context.Context, network *store.Network, session *Session, remoteID string, profile *store.DeviceProfile) error

	// DeleteDeviceProfile removes the remote counterpart of a profile.
	DeleteDeviceProfile(ctx context.Context, network *store.Network, session *Session, remoteID string) error

	// CreateDevice mirrors a canonical device to the network under the
	// given remote application. profileRemoteID is empty when the device's
	// link names no profile.
	CreateDevice(ctx context.Context, network *store.Network, session *Session, appRemoteID, profileRemoteID string, device *store.Device, link *store.DeviceNetworkTypeLink) (string, error)

	// UpdateDevice pushes changed device fields to the network.
	UpdateDevice(ctx context.Context, network *store.Network, session *Session, remoteID, profileRemoteID string, device *store.Device, link *store.DeviceNetworkTypeLink) error

	// DeleteDevice removes the remote counterpart of a device.
	DeleteDevice(ctx context.Context, network *store.Network, session *Session, remoteID string) error
}
