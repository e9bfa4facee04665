package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/fleetwan-core/internal/audit"
	"github.com/nerrad567/fleetwan-core/internal/store"
)

// deviceProfileRequest is the request body for creating or updating a
// device profile.
type deviceProfileRequest struct {
	CompanyID       *string        `json:"company_id"`
	NetworkTypeID   string         `json:"network_type_id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	NetworkSettings store.Settings `json:"network_settings"`
}

func (s *Server) handleListDeviceProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.store.ListDeviceProfiles(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (s *Server) handleGetDeviceProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.store.GetDeviceProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleCreateDeviceProfile(w http.ResponseWriter, r *http.Request) {
	var req deviceProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == "" || req.NetworkTypeID == "" {
		writeBadRequest(w, "name and network_type_id are required")
		return
	}
	if _, err := s.store.GetNetworkType(r.Context(), req.NetworkTypeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeBadRequest(w, "unknown network type")
			return
		}
		writeStoreError(w, err)
		return
	}

	profile := &store.DeviceProfile{
		CompanyID:       req.CompanyID,
		NetworkTypeID:   req.NetworkTypeID,
		Name:            req.Name,
		Description:     req.Description,
		NetworkSettings: req.NetworkSettings,
	}
	if err := s.store.CreateDeviceProfile(r.Context(), profile); err != nil {
		writeStoreError(w, err)
		return
	}

	logs, err := s.sync.PushDeviceProfile(r.Context(), profile.ID)
	if err != nil {
		s.logger.Warn("device profile push failed", "profile_id", profile.ID, "error", err)
	}
	s.recordAudit(r, audit.ActionCreate, "device_profile", profile.ID, map[string]any{"name": profile.Name})
	writeJSON(w, http.StatusCreated, mutationResponse{DeviceProfile: profile, AccessLogs: logs})
}

func (s *Server) handleUpdateDeviceProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.store.GetDeviceProfile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var req deviceProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name != "" {
		profile.Name = req.Name
	}
	profile.Description = req.Description
	if req.NetworkSettings != nil {
		profile.NetworkSettings = req.NetworkSettings
	}
	if req.CompanyID != nil {
		profile.CompanyID = req.CompanyID
	}

	if err := s.store.UpdateDeviceProfile(r.Context(), profile); err != nil {
		writeStoreError(w, err)
		return
	}

	logs, err := s.sync.PushDeviceProfile(r.Context(), profile.ID)
	if err != nil {
		s.logger.Warn("device profile push failed", "profile_id", profile.ID, "error", err)
	}
	s.recordAudit(r, audit.ActionUpdate, "device_profile", profile.ID, nil)
	writeJSON(w, http.StatusOK, mutationResponse{DeviceProfile: profile, AccessLogs: logs})
}

// handlePushDeviceProfile re-mirrors the profile onto every eligible
// network of its type without mutating it locally.
func (s *Server) handlePushDeviceProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	logs, err := s.sync.PushDeviceProfile(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.recordAudit(r, audit.ActionPush, "device_profile", id, map[string]any{
		"operations": len(logs),
	})
	writeJSON(w, http.StatusOK, map[string]any{"remoteAccessLogs": logs})
}

// handleDeleteDeviceProfile removes the profile from linked networks first,
// then locally. The local delete fails with a conflict while device links
// still reference the profile.
func (s *Server) handleDeleteDeviceProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	logs, err := s.sync.PushDeviceProfileDelete(r.Context(), id)
	if err != nil {
		s.logger.Warn("device profile remote delete failed", "profile_id", id, "error", err)
	}

	if err := s.store.RemoveDeviceProfile(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	s.recordAudit(r, audit.ActionDelete, "device_profile", id, nil)
	writeJSON(w, http.StatusOK, map[string]any{"remoteAccessLogs": logs})
}
