package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/fleetwan-core/internal/reporting"
	"github.com/nerrad567/fleetwan-core/internal/store"
)

// handleIngest accepts an uplink from a remote network server and forwards
// it to the application's configured reporting protocol. The payload passes
// through untouched.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if s.dispatcher == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "uplink reporting is not configured")
		return
	}

	applicationID := chi.URLParam(r, "applicationID")
	networkID := chi.URLParam(r, "networkID")

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "failed to read request body")
		return
	}
	if len(payload) == 0 {
		writeBadRequest(w, "empty payload")
		return
	}

	err = s.dispatcher.Dispatch(r.Context(), applicationID, networkID, payload)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, store.ErrNotFound):
		writeNotFound(w, "application not found")
	case errors.Is(err, reporting.ErrNoReporting):
		// The application exists but has no reporting protocol configured.
		// Acknowledge so the network server does not retry.
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, reporting.ErrNoEndpoint), errors.Is(err, reporting.ErrUnknownHandler):
		writeConflict(w, err.Error())
	default:
		writeError(w, http.StatusBadGateway, ErrCodeInternal, "uplink delivery failed")
	}
}
