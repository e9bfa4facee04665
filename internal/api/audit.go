package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/fleetwan-core/internal/audit"
)

// handleListAuditLogs returns the paginated activity trail.
func (s *Server) handleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeJSON(w, http.StatusOK, audit.ListResult{Logs: []audit.AuditLog{}})
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
	}
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v) //nolint:errcheck // zero falls back to the default page size
	}
	if v := q.Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v) //nolint:errcheck // zero is the first page
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		writeInternalError(w, "failed to query audit logs")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// recordAudit writes an audit entry attributed to the authenticated caller.
// Failures are logged, never surfaced: the mutation already happened.
func (s *Server) recordAudit(r *http.Request, action, entityType, entityID string, details map[string]any) {
	if s.audit == nil {
		return
	}
	entry := &audit.AuditLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     callerID(r),
		Source:     audit.SourceAPI,
		Details:    details,
	}
	if err := s.audit.Create(r.Context(), entry); err != nil {
		s.logger.Warn("audit write failed", "action", action, "entity_type", entityType, "error", err)
	}
}
