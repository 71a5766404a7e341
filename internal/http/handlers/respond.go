package handlers

import (
	"encoding/json"
	"net/http"
)

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

// respondMessage writes a {"message": ...} body, the shape every error path
// and most success paths share.
func respondMessage(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, map[string]string{"message": message})
}
