package handlers

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// RequireMethod rejects requests that do not use the expected HTTP
// method, writing a 405 with an Allow header. Returns true when the
// method matches.
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// WriteJSON serializes data as the response body with the given status.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes the standard error envelope.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, errorBody{Status: "error", Error: message})
}
