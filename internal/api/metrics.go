package api

import (
	"net/http"
	"runtime"
	"time"
)

// metricsResponse is the response body for GET /metrics.
type metricsResponse struct {
	Version          string  `json:"version"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	Goroutines       int     `json:"goroutines"`
	HeapAllocBytes   uint64  `json:"heap_alloc_bytes"`
	HeapSysBytes     uint64  `json:"heap_sys_bytes"`
	NumGC            uint32  `json:"num_gc"`
	WebSocketClients int     `json:"websocket_clients"`
}

// handleMetrics returns process-level runtime statistics. Per-network sync
// and ingest measurements go to the time-series database instead.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	clients := 0
	if s.hub != nil {
		clients = s.hub.ClientCount()
	}

	writeJSON(w, http.StatusOK, metricsResponse{
		Version:          s.version,
		UptimeSeconds:    time.Since(s.started).Seconds(),
		Goroutines:       runtime.NumGoroutine(),
		HeapAllocBytes:   mem.HeapAlloc,
		HeapSysBytes:     mem.HeapSys,
		NumGC:            mem.NumGC,
		WebSocketClients: clients,
	})
}
