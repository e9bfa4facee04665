package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// Vendor consent pages redirect the browser here; the state
		// parameter ties the redirect back to a pending network.
		r.Get("/oauth/callback", s.handleOAuthCallback)

		// Vendor networks post uplinks here. These arrive from remote
		// network servers, not API users, so they bypass JWT auth.
		r.Post("/ingest/{applicationID}/{networkID}", s.handleIngest)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// WS ticket requires authentication - user must be logged in to request a ticket
			r.Post("/auth/ws-ticket", s.handleWSTicket)
			r.Get("/auth/me", s.handleMe)

			// Reference data
			r.Route("/network-types", func(r chi.Router) {
				r.Get("/", s.handleListNetworkTypes)

				r.Group(func(r chi.Router) {
					r.Use(s.requireAdmin)
					r.Post("/{id}/push", s.handlePushNetworkType)
				})
			})
			r.Get("/network-protocols", s.handleListNetworkProtocols)
			r.Get("/reporting-protocols", s.handleListReportingProtocols)

			// Network endpoints (admin only: these carry credentials)
			r.Route("/networks", func(r chi.Router) {
				r.Get("/", s.handleListNetworks)

				r.Group(func(r chi.Router) {
					r.Use(s.requireAdmin)
					r.Post("/", s.handleCreateNetwork)
				})

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetNetwork)

					r.Group(func(r chi.Router) {
						r.Use(s.requireAdmin)
						r.Put("/", s.handleUpdateNetwork)
						r.Delete("/", s.handleDeleteNetwork)
						r.Post("/authorize", s.handleAuthorizeNetwork)
						r.Post("/pull", s.handlePullNetwork)
						r.Post("/push", s.handlePushNetwork)
					})
				})
			})

			// Company endpoints
			r.Route("/companies", func(r chi.Router) {
				r.Get("/", s.handleListCompanies)
				r.Post("/", s.handleCreateCompany)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetCompany)
					r.Put("/", s.handleUpdateCompany)
					r.Delete("/", s.handleDeleteCompany)
				})
			})

			// Application endpoints
			r.Route("/applications", func(r chi.Router) {
				r.Get("/", s.handleListApplications)
				r.Post("/", s.handleCreateApplication)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetApplication)
					r.Put("/", s.handleUpdateApplication)
					r.Delete("/", s.handleDeleteApplication)
					r.Post("/push", s.handlePushApplication)
					r.Get("/links", s.handleListApplicationLinks)
					r.Put("/links/{networkTypeID}", s.handleUpsertApplicationLink)
					r.Get("/devices", s.handleListApplicationDevices)
				})
			})

			// Device profile endpoints
			r.Route("/device-profiles", func(r chi.Router) {
				r.Get("/", s.handleListDeviceProfiles)
				r.Post("/", s.handleCreateDeviceProfile)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetDeviceProfile)
					r.Put("/", s.handleUpdateDeviceProfile)
					r.Delete("/", s.handleDeleteDeviceProfile)
					r.Post("/push", s.handlePushDeviceProfile)
				})
			})

			// Device endpoints
			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)
				r.Post("/", s.handleCreateDevice)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetDevice)
					r.Put("/", s.handleUpdateDevice)
					r.Delete("/", s.handleDeleteDevice)
					r.Post("/push", s.handlePushDevice)
					r.Get("/links", s.handleListDeviceLinks)
					r.Put("/links/{networkTypeID}", s.handleUpsertDeviceLink)
				})
			})

			// User management (admin only)
			r.Route("/users", func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Get("/", s.handleListUsers)
				r.Post("/", s.handleCreateUser)
			})

			// Activity trail (admin only)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Get("/audit-logs", s.handleListAuditLogs)
			})

			// System metrics
			r.Get("/metrics", s.handleMetrics)

			// Live event stream (auth via ticket, validated in handler)
			r.Get("/events", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
