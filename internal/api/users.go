package api

import (
	"encoding/json"
	"net/http"

	"github.com/nerrad567/fleetwan-core/internal/audit"
	"github.com/nerrad567/fleetwan-core/internal/auth"
	"github.com/nerrad567/fleetwan-core/internal/store"
)

// createUserRequest is the request body for POST /users.
type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// minPasswordLength is the minimum accepted password length for local
// accounts.
const minPasswordLength = 8

// handleListUsers returns all local accounts. Password hashes never leave
// the store layer's JSON encoding.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// handleCreateUser creates a local account.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if !auth.IsValidUsername(req.Username) {
		writeBadRequest(w, "username must be 1-64 characters of letters, digits, dot, underscore, or hyphen")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeBadRequest(w, "password must be at least 8 characters")
		return
	}
	if req.Role == "" {
		req.Role = string(auth.RoleUser)
	}
	if !auth.IsValidUserRole(auth.Role(req.Role)) {
		writeBadRequest(w, "role must be one of: user, admin")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeInternalError(w, "failed to hash password")
		return
	}

	user := &store.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		writeStoreError(w, err)
		return
	}
	s.recordAudit(r, audit.ActionCreate, "user", user.ID, map[string]any{
		"username": user.Username,
		"role":     user.Role,
	})
	writeJSON(w, http.StatusCreated, user)
}
