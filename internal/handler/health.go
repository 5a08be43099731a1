package handler

import (
	"net/http"
	"time"
)

// HandleRoot is the liveness probe at GET /.
// Deliberately plain text — load balancers and humans both read it.
func HandleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("API is running..."))
}

// HandleTest is a JSON probe at GET /api/auth/test, kept for the SPA's
// connectivity check during development.
func HandleTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Backend is working!",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
