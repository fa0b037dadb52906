package handler

import "net/http"

// HealthResponse is the body of GET /healthz and GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store,omitempty"`
}

// Liveness handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// GetHealth handles GET /api/health. The server is up either way; the store
// field says whether shared storage is configured.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	store := "available"
	if s.Store == nil || !s.Store.Available() {
		store = "unavailable"
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Store: store})
}
