package api

import "net/http"

// handleListNetworkTypes returns the seeded network type catalogue.
func (s *Server) handleListNetworkTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.store.ListNetworkTypes(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

// handleListNetworkProtocols returns the known (vendor, version) protocol
// catalogue, including master protocol lineage.
func (s *Server) handleListNetworkProtocols(w http.ResponseWriter, r *http.Request) {
	protos, err := s.store.ListNetworkProtocols(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, protos)
}

// handleListReportingProtocols returns the available uplink delivery
// mechanisms.
func (s *Server) handleListReportingProtocols(w http.ResponseWriter, r *http.Request) {
	protos, err := s.store.ListReportingProtocols(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, protos)
}
