package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/fleetwan-core/internal/audit"
	"github.com/nerrad567/fleetwan-core/internal/store"
	"github.com/nerrad567/fleetwan-core/internal/sync"
)

// applicationRequest is the request body for creating or updating an
// application.
type applicationRequest struct {
	CompanyID           *string `json:"company_id"`
	Name                string  `json:"name"`
	Description         string  `json:"description"`
	BaseURL             string  `json:"base_url"`
	ReportingProtocolID *string `json:"reporting_protocol_id"`
}

// linkRequest is the request body for attaching an entity to a network type.
type linkRequest struct {
	NetworkSettings store.Settings `json:"network_settings"`
	Enabled         *bool          `json:"enabled"`
}

// mutationResponse pairs the mutated entity with the outcome of mirroring it
// onto each enabled network.
type mutationResponse struct {
	Application   *store.Application     `json:"application,omitempty"`
	DeviceProfile *store.DeviceProfile   `json:"device_profile,omitempty"`
	Device        *store.Device          `json:"device,omitempty"`
	AccessLogs    []sync.RemoteAccessLog `json:"remoteAccessLogs,omitempty"`
}

func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.store.ListApplications(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	app, err := s.store.GetApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}

	app := &store.Application{
		CompanyID:           req.CompanyID,
		Name:                req.Name,
		Description:         req.Description,
		BaseURL:             req.BaseURL,
		ReportingProtocolID: req.ReportingProtocolID,
	}
	if err := s.store.CreateApplication(r.Context(), app); err != nil {
		writeStoreError(w, err)
		return
	}

	s.recordAudit(r, audit.ActionCreate, "application", app.ID, map[string]any{"name": app.Name})

	// A new application has no network type links yet, so there is nothing
	// to mirror until a link is attached.
	writeJSON(w, http.StatusCreated, mutationResponse{Application: app})
}

func (s *Server) handleUpdateApplication(w http.ResponseWriter, r *http.Request) {
	app, err := s.store.GetApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var req applicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name != "" {
		app.Name = req.Name
	}
	app.Description = req.Description
	app.BaseURL = req.BaseURL
	if req.CompanyID != nil {
		app.CompanyID = req.CompanyID
	}
	if req.ReportingProtocolID != nil {
		app.ReportingProtocolID = req.ReportingProtocolID
	}

	if err := s.store.UpdateApplication(r.Context(), app); err != nil {
		writeStoreError(w, err)
		return
	}

	logs, err := s.sync.PushApplication(r.Context(), app.ID)
	if err != nil {
		s.logger.Warn("application push failed", "application_id", app.ID, "error", err)
	}
	s.recordAudit(r, audit.ActionUpdate, "application", app.ID, nil)
	writeJSON(w, http.StatusOK, mutationResponse{Application: app, AccessLogs: logs})
}

// handleDeleteApplication removes the application from every linked network
// first, then locally. Remote failures are reported but do not block the
// local delete.
func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	logs, err := s.sync.PushApplicationDelete(r.Context(), id)
	if err != nil {
		s.logger.Warn("application remote delete failed", "application_id", id, "error", err)
	}

	if err := s.store.RemoveApplication(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	s.recordAudit(r, audit.ActionDelete, "application", id, nil)
	writeJSON(w, http.StatusOK, map[string]any{"remoteAccessLogs": logs})
}

func (s *Server) handleListApplicationLinks(w http.ResponseWriter, r *http.Request) {
	links, err := s.store.ListApplicationLinks(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

// handleUpsertApplicationLink attaches the application to a network type and
// mirrors it onto that type's enabled networks.
func (s *Server) handleUpsertApplicationLink(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "id")
	networkTypeID := chi.URLParam(r, "networkTypeID")

	if _, err := s.store.GetApplication(r.Context(), appID); err != nil {
		writeStoreError(w, err)
		return
	}
	if _, err := s.store.GetNetworkType(r.Context(), networkTypeID); err != nil {
		writeStoreError(w, err)
		return
	}

	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	link := &store.ApplicationNetworkTypeLink{
		ApplicationID:   appID,
		NetworkTypeID:   networkTypeID,
		NetworkSettings: req.NetworkSettings,
		Enabled:         true,
	}
	if req.Enabled != nil {
		link.Enabled = *req.Enabled
	}

	saved, err := s.store.UpsertApplicationLink(r.Context(), link)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	logs, err := s.sync.PushApplication(r.Context(), appID)
	if err != nil {
		s.logger.Warn("application push failed", "application_id", appID, "error", err)
	}
	s.recordAudit(r, audit.ActionUpdate, "application", appID, map[string]any{
		"network_type_id": networkTypeID,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"link":             saved,
		"remoteAccessLogs": logs,
	})
}

// handlePushApplication re-mirrors the application onto every eligible
// network of its linked types without mutating it locally. Useful after a
// network recovers from an outage.
func (s *Server) handlePushApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	logs, err := s.sync.PushApplication(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.recordAudit(r, audit.ActionPush, "application", id, map[string]any{
		"operations": len(logs),
	})
	writeJSON(w, http.StatusOK, map[string]any{"remoteAccessLogs": logs})
}

func (s *Server) handleListApplicationDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.store.ListApplicationDevices(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}
