// Helper functions for sending standardized JSON responses.

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/studyplanner/planner/internal/errors"
)

// RespondWithJSON writes a JSON response with the given status code and payload.
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to marshal response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// RespondWithError writes a standardized JSON error response.
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithDomainError maps err to a status through its error code. Errors
// without a code are logged and reported as a generic 500.
func respondWithDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var de *errors.Error
	if !errors.As(err, &de) || de.Code == errors.CodeInternal {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if de.Code == errors.CodeInvariantViolation {
		slog.Error("invariant violated", "path", r.URL.Path, "error", err)
	}

	body := map[string]any{"error": de.Message, "code": de.Code}
	if de.Details != nil {
		body["details"] = de.Details
	}
	RespondWithJSON(w, de.HTTPStatus(), body)
}

// decodeAndValidate reads a JSON body into dst and validates it.
func (s *Server) decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Validation("Invalid request payload")
	}
	return s.validate.Validate(dst)
}
