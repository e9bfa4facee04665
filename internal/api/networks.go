package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/fleetwan-core/internal/audit"
	"github.com/nerrad567/fleetwan-core/internal/session"
	"github.com/nerrad567/fleetwan-core/internal/store"
	"github.com/nerrad567/fleetwan-core/internal/sync"
)

// backgroundPullTimeout bounds the import that runs after a network is
// first authorised.
const backgroundPullTimeout = 5 * time.Minute

// networkRequest is the request body for creating or updating a network.
type networkRequest struct {
	Name              string             `json:"name"`
	NetworkProtocolID string             `json:"network_protocol_id"`
	BaseURL           string             `json:"base_url"`
	SecurityData      store.SecurityData `json:"security_data"`
}

// handleListNetworks returns all networks. Non-admin callers receive the
// redacted view of security data.
func (s *Server) handleListNetworks(w http.ResponseWriter, r *http.Request) {
	networks, err := s.store.ListNetworks(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.RedactAll(networks, string(callerRole(r))))
}

// handleGetNetwork returns one network, redacted per the caller's role.
func (s *Server) handleGetNetwork(w http.ResponseWriter, r *http.Request) {
	network, err := s.store.GetNetwork(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.Redact(network, string(callerRole(r))))
}

// handleCreateNetwork creates a network, attempts authorisation against the
// remote endpoint, and on success launches an initial import in the
// background.
func (s *Server) handleCreateNetwork(w http.ResponseWriter, r *http.Request) {
	var req networkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == "" || req.NetworkProtocolID == "" || req.BaseURL == "" {
		writeBadRequest(w, "name, network_protocol_id, and base_url are required")
		return
	}

	proto, err := s.store.GetNetworkProtocol(r.Context(), req.NetworkProtocolID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeBadRequest(w, "unknown network protocol")
			return
		}
		writeStoreError(w, err)
		return
	}

	network := &store.Network{
		Name:              req.Name,
		NetworkProtocolID: proto.ID,
		NetworkTypeID:     proto.NetworkTypeID,
		BaseURL:           req.BaseURL,
		SecurityData:      req.SecurityData,
	}
	network.SecurityData.Status = store.SecurityPending
	network.SecurityData.Authorized = false

	if err := s.store.CreateNetwork(r.Context(), network); err != nil {
		writeStoreError(w, err)
		return
	}

	s.authorizeAndPull(r.Context(), network)
	s.recordAudit(r, audit.ActionCreate, "network", network.ID, map[string]any{"name": network.Name})

	writeJSON(w, http.StatusCreated, network)
}

// handleUpdateNetwork updates a network. Credential changes invalidate the
// cached session and trigger re-authorisation.
func (s *Server) handleUpdateNetwork(w http.ResponseWriter, r *http.Request) {
	network, err := s.store.GetNetwork(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var req networkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Name != "" {
		network.Name = req.Name
	}
	if req.BaseURL != "" {
		network.BaseURL = req.BaseURL
	}
	credentialsChanged := applyCredentials(&network.SecurityData, req.SecurityData)
	network.SecurityData.Enabled = req.SecurityData.Enabled

	if err := s.store.UpdateNetwork(r.Context(), network); err != nil {
		writeStoreError(w, err)
		return
	}

	if credentialsChanged {
		s.sessions.Invalidate(network.ID)
		s.authorizeAndPull(r.Context(), network)
	}
	s.recordAudit(r, audit.ActionUpdate, "network", network.ID, map[string]any{
		"credentials_changed": credentialsChanged,
	})

	writeJSON(w, http.StatusOK, network)
}

// handleDeleteNetwork removes a network and its cached session. Origin rows
// cascade in the store.
func (s *Server) handleDeleteNetwork(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.RemoveNetwork(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	s.sessions.Invalidate(id)
	s.recordAudit(r, audit.ActionDelete, "network", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// handleAuthorizeNetwork re-runs the credential check against the remote
// endpoint and returns the refreshed network.
func (s *Server) handleAuthorizeNetwork(w http.ResponseWriter, r *http.Request) {
	network, err := s.store.GetNetwork(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	authErr := s.sessions.Authorize(r.Context(), network)
	s.broadcastAuthChange(network)
	s.recordAudit(r, audit.ActionAuthorize, "network", network.ID, map[string]any{
		"authorized": network.SecurityData.Authorized,
	})

	if authErr != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"network": network,
			"error":   authErr.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"network": network})
}

// handlePullNetwork imports the remote network's applications, profiles,
// and devices into the canonical model.
func (s *Server) handlePullNetwork(w http.ResponseWriter, r *http.Request) {
	result, err := s.sync.PullNetwork(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeNotFound(w, "network not found")
		case errors.Is(err, sync.ErrNotReady):
			writeConflict(w, "network is not authorized and enabled")
		default:
			writeInternalError(w, "pull failed: "+err.Error())
		}
		return
	}

	s.hub.Broadcast("sync.pull_completed", result)
	s.recordAudit(r, audit.ActionPull, "network", result.NetworkID, map[string]any{
		"applications": result.Applications,
		"devices":      result.Devices,
		"created":      result.Created,
		"skipped":      result.Skipped,
	})
	writeJSON(w, http.StatusOK, result)
}

// handlePushNetwork mirrors every canonical entity onto one network and
// returns the per-operation access logs.
func (s *Server) handlePushNetwork(w http.ResponseWriter, r *http.Request) {
	logs, err := s.sync.PushNetwork(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeNotFound(w, "network not found")
		case errors.Is(err, sync.ErrNotReady):
			writeConflict(w, "network is not authorized and enabled")
		default:
			writeInternalError(w, "push failed: "+err.Error())
		}
		return
	}

	s.hub.Broadcast("sync.push_completed", map[string]any{
		"network_id":       chi.URLParam(r, "id"),
		"remoteAccessLogs": logs,
	})
	s.recordAudit(r, audit.ActionPush, "network", chi.URLParam(r, "id"), map[string]any{
		"operations": len(logs),
	})
	writeJSON(w, http.StatusOK, map[string]any{"remoteAccessLogs": logs})
}

// handlePushNetworkType mirrors every canonical entity onto all eligible
// networks of one network type.
func (s *Server) handlePushNetworkType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetNetworkType(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}

	logs, err := s.sync.PushNetworks(r.Context(), id)
	if err != nil {
		writeInternalError(w, "push failed: "+err.Error())
		return
	}

	s.hub.Broadcast("sync.push_completed", map[string]any{
		"network_type_id":  id,
		"remoteAccessLogs": logs,
	})
	s.recordAudit(r, audit.ActionPush, "network_type", id, map[string]any{
		"operations": len(logs),
	})
	writeJSON(w, http.StatusOK, map[string]any{"remoteAccessLogs": logs})
}

// handleOAuthCallback completes a browser-mediated vendor consent flow.
// The state query parameter was placed on the network's securityData when
// the consent redirect was issued; the returned code is deposited for the
// protocol handler to exchange on its next login. The vendor's consent
// page redirects here, so no JWT is present.
func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		writeBadRequest(w, "state and code are required")
		return
	}

	networks, err := s.store.ListNetworks(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	var network *store.Network
	for i := range networks {
		if networks[i].SecurityData.OAuthState == state {
			network = &networks[i]
			break
		}
	}
	if network == nil {
		writeNotFound(w, "no network awaiting this consent")
		return
	}

	// The state is single-use; the code is consumed by the next login.
	network.SecurityData.OAuthState = ""
	network.SecurityData.AuthorizationCode = code
	if err := s.store.UpdateNetworkSecurity(r.Context(), network.ID, network.SecurityData); err != nil {
		writeStoreError(w, err)
		return
	}

	s.sessions.Invalidate(network.ID)
	s.authorizeAndPull(r.Context(), network)
	s.recordAudit(r, audit.ActionAuthorize, "network", network.ID, map[string]any{
		"flow":       "oauth",
		"authorized": network.SecurityData.Authorized,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"network": session.Redact(network, string(callerRole(r))),
	})
}

// authorizeAndPull checks credentials against the remote endpoint and, on
// success, runs the initial import in the background so network creation
// does not block on a potentially large fleet.
func (s *Server) authorizeAndPull(ctx context.Context, network *store.Network) {
	if err := s.sessions.Authorize(ctx, network); err != nil {
		s.logger.Warn("network authorization failed",
			"network_id", network.ID,
			"error", err,
		)
		s.broadcastAuthChange(network)
		return
	}
	s.broadcastAuthChange(network)

	go func() {
		pullCtx, cancel := context.WithTimeout(context.Background(), backgroundPullTimeout)
		defer cancel()

		result, err := s.sync.PullNetwork(pullCtx, network.ID)
		if err != nil {
			s.logger.Warn("initial pull failed", "network_id", network.ID, "error", err)
			return
		}
		s.logger.Info("initial pull completed",
			"network_id", network.ID,
			"applications", result.Applications,
			"devices", result.Devices,
		)
		s.hub.Broadcast("sync.pull_completed", result)
	}()
}

// broadcastAuthChange publishes a redacted authorisation status change to
// WebSocket subscribers.
func (s *Server) broadcastAuthChange(network *store.Network) {
	s.hub.Broadcast("network.authorization_changed", map[string]any{
		"network_id": network.ID,
		"status":     network.SecurityData.Status,
		"authorized": network.SecurityData.Authorized,
		"message":    network.SecurityData.Message,
	})
}

// applyCredentials overlays non-empty credential fields from src onto dst.
// Returns true when any credential actually changed.
func applyCredentials(dst *store.SecurityData, src store.SecurityData) bool {
	changed := false
	apply := func(field *string, v string) {
		if v != "" && *field != v {
			*field = v
			changed = true
		}
	}
	apply(&dst.Username, src.Username)
	apply(&dst.Password, src.Password)
	apply(&dst.APIKey, src.APIKey)
	apply(&dst.ClientID, src.ClientID)
	apply(&dst.ClientSecret, src.ClientSecret)
	return changed
}
