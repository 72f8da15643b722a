package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/waitlist/backend/internal/ratelimit"
	"github.com/waitlist/backend/internal/repository"
	"github.com/waitlist/backend/internal/validate"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error  string   `json:"error"`
	Detail string   `json:"detail,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

// decodeJSON reads a size-capped JSON body into dst. On failure it writes
// the response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "body_too_large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_json", Detail: "request body must be a JSON object"})
		return false
	}
	return true
}

// writeError maps a service error onto a status code and JSON body.
// Unrecognized errors are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		ve  *validate.ValidationError
		ce  *repository.ConflictError
		ree *ratelimit.ExceededError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: ve.Code, Detail: ve.Error()})
	case errors.As(err, &ce):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "duplicate", Detail: ce.Error(), Fields: ce.Fields})
	case errors.As(err, &ree):
		w.Header().Set("Retry-After", retryAfterSeconds(ree.RetryAfter))
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate_limited", Detail: "too many submissions, try again later"})
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found"})
	default:
		slog.Error(op+" failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
	}
}
