package handlers

import "net/http"

// Version is reported by the API root.
const Version = "1.0.0"

// Root handles GET /.
func Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "PDF Extract API Running",
	})
}

// APIRoot handles GET /api/.
func APIRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "MCQ PDF Extractor API is running",
		"version": Version,
	})
}

// Health handles GET /api/health.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "pdf-extractor",
	})
}
