package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
	"github.com/sonirghv/Gemini-backend/internal/domain"
)

var validate = validator.New()

// validateRequest decodes the JSON body into req and runs struct validation.
// It writes the error response itself; callers only need to return.
func validateRequest(w http.ResponseWriter, r *http.Request, req interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return err
	}

	if err := validate.Struct(req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// currentUserID reads the authenticated user's ID placed by the auth middleware
func currentUserID(r *http.Request) (ulid.ULID, bool) {
	id, ok := r.Context().Value(domain.UserIDKey).(ulid.ULID)
	return id, ok
}
