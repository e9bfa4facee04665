package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/fleetwan-core/internal/audit"
	"github.com/nerrad567/fleetwan-core/internal/store"
)

// deviceRequest is the request body for creating or updating a device.
type deviceRequest struct {
	ApplicationID string `json:"application_id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	DeviceModel   string `json:"device_model"`
}

// deviceLinkRequest is the request body for attaching a device to a
// network type.
type deviceLinkRequest struct {
	DeviceProfileID *string        `json:"device_profile_id"`
	NetworkSettings store.Settings `json:"network_settings"`
	Enabled         *bool          `json:"enabled"`
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.store.ListDevices(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	device, err := s.store.GetDevice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == "" || req.ApplicationID == "" {
		writeBadRequest(w, "name and application_id are required")
		return
	}
	if _, err := s.store.GetApplication(r.Context(), req.ApplicationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeBadRequest(w, "unknown application")
			return
		}
		writeStoreError(w, err)
		return
	}

	device := &store.Device{
		ApplicationID: req.ApplicationID,
		Name:          req.Name,
		Description:   req.Description,
		DeviceModel:   req.DeviceModel,
	}
	if err := s.store.CreateDevice(r.Context(), device); err != nil {
		writeStoreError(w, err)
		return
	}

	s.recordAudit(r, audit.ActionCreate, "device", device.ID, map[string]any{"name": device.Name})

	// Mirroring waits until a network type link supplies the per-type
	// profile and activation settings.
	writeJSON(w, http.StatusCreated, mutationResponse{Device: device})
}

func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	device, err := s.store.GetDevice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name != "" {
		device.Name = req.Name
	}
	device.Description = req.Description
	device.DeviceModel = req.DeviceModel

	if err := s.store.UpdateDevice(r.Context(), device); err != nil {
		writeStoreError(w, err)
		return
	}

	logs, err := s.sync.PushDevice(r.Context(), device.ID)
	if err != nil {
		s.logger.Warn("device push failed", "device_id", device.ID, "error", err)
	}
	s.recordAudit(r, audit.ActionUpdate, "device", device.ID, nil)
	writeJSON(w, http.StatusOK, mutationResponse{Device: device, AccessLogs: logs})
}

// handleDeleteDevice removes the device from every linked network first,
// then locally. Remote failures are reported but do not block the local
// delete.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	logs, err := s.sync.PushDeviceDelete(r.Context(), id)
	if err != nil {
		s.logger.Warn("device remote delete failed", "device_id", id, "error", err)
	}

	if err := s.store.RemoveDevice(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	s.recordAudit(r, audit.ActionDelete, "device", id, nil)
	writeJSON(w, http.StatusOK, map[string]any{"remoteAccessLogs": logs})
}

// handlePushDevice re-mirrors the device onto every eligible network of
// its linked types without mutating it locally.
func (s *Server) handlePushDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	logs, err := s.sync.PushDevice(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.recordAudit(r, audit.ActionPush, "device", id, map[string]any{
		"operations": len(logs),
	})
	writeJSON(w, http.StatusOK, map[string]any{"remoteAccessLogs": logs})
}

func (s *Server) handleListDeviceLinks(w http.ResponseWriter, r *http.Request) {
	links, err := s.store.ListDeviceLinks(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

// handleUpsertDeviceLink attaches the device to a network type and mirrors
// it onto that type's enabled networks.
func (s *Server) handleUpsertDeviceLink(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "id")
	networkTypeID := chi.URLParam(r, "networkTypeID")

	if _, err := s.store.GetDevice(r.Context(), deviceID); err != nil {
		writeStoreError(w, err)
		return
	}
	if _, err := s.store.GetNetworkType(r.Context(), networkTypeID); err != nil {
		writeStoreError(w, err)
		return
	}

	var req deviceLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.DeviceProfileID != nil {
		if _, err := s.store.GetDeviceProfile(r.Context(), *req.DeviceProfileID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeBadRequest(w, "unknown device profile")
				return
			}
			writeStoreError(w, err)
			return
		}
	}

	link := &store.DeviceNetworkTypeLink{
		DeviceID:        deviceID,
		NetworkTypeID:   networkTypeID,
		DeviceProfileID: req.DeviceProfileID,
		NetworkSettings: req.NetworkSettings,
		Enabled:         true,
	}
	if req.Enabled != nil {
		link.Enabled = *req.Enabled
	}

	saved, err := s.store.UpsertDeviceLink(r.Context(), link)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	logs, err := s.sync.PushDevice(r.Context(), deviceID)
	if err != nil {
		s.logger.Warn("device push failed", "device_id", deviceID, "error", err)
	}
	s.recordAudit(r, audit.ActionUpdate, "device", deviceID, map[string]any{
		"network_type_id": networkTypeID,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"link":             saved,
		"remoteAccessLogs": logs,
	})
}
