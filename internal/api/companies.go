package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/fleetwan-core/internal/audit"
	"github.com/nerrad567/fleetwan-core/internal/store"
)

type companyRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.store.ListCompanies(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, companies)
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	company, err := s.store.GetCompany(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}

	company := &store.Company{Name: req.Name}
	if err := s.store.CreateCompany(r.Context(), company); err != nil {
		writeStoreError(w, err)
		return
	}
	s.recordAudit(r, audit.ActionCreate, "company", company.ID, map[string]any{"name": company.Name})
	writeJSON(w, http.StatusCreated, company)
}

func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	company, err := s.store.GetCompany(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var req companyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Name != "" {
		company.Name = req.Name
	}

	if err := s.store.UpdateCompany(r.Context(), company); err != nil {
		writeStoreError(w, err)
		return
	}
	s.recordAudit(r, audit.ActionUpdate, "company", company.ID, nil)
	writeJSON(w, http.StatusOK, company)
}

func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.RemoveCompany(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	s.recordAudit(r, audit.ActionDelete, "company", id, nil)
	w.WriteHeader(http.StatusNoContent)
}
