package devgateway

import (
	"encoding/json"
	"net/http"
)

// problemDetails mirrors the validation error body ASP.NET gateways return.
type problemDetails struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Errors map[string][]string `json:"errors,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondMessage writes {"message": msg}.
func respondMessage(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"message": msg})
}

// respondValidation writes a 400 problem-details body for one field.
func respondValidation(w http.ResponseWriter, field, msg string) {
	w.Header().Set("Content-Type", "application/problem+json; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(problemDetails{
		Type:   "https://tools.ietf.org/html/rfc9110#section-15.5.1",
		Title:  msg,
		Status: http.StatusBadRequest,
		Errors: map[string][]string{field: {msg}},
	})
}

// decodeBody reads a JSON request body into v, answering 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondValidation(w, "body", "A non-empty request body is required.")
		return false
	}
	return true
}
