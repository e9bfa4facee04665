package session

import "github.com/nerrad567/fleetwan-core/internal/store"

// Redact returns a copy of the network safe to serialise for the given
// caller role. Admins see securityData in full; everyone else sees only the
// authorisation state (status, authorized, enabled, message) with all
// credential and token material stripped.
func Redact(n *store.Network, role string) *store.Network {
	out := *n
	if role == store.RoleAdmin {
		return &out
	}
	out.SecurityData = store.SecurityData{
		Status:     n.SecurityData.Status,
		Authorized: n.SecurityData.Authorized,
		Enabled:    n.SecurityData.Enabled,
		Message:    n.SecurityData.Message,
	}
	return &out
}

// RedactAll applies Redact to a slice of networks.
func RedactAll(networks []store.Network, role string) []store.Network {
	out := make([]store.Network, len(networks))
	for i := range networks {
		out[i] = *Redact(&networks[i], role)
	}
	return out
}
