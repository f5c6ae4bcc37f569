// Package handlers provides HTTP handlers for the MCQ extractor API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/spherical/mcq-extractor/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, domain.ErrorResponse{
		Error:  code,
		Detail: detail,
	})
}
