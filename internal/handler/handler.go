// Package handler implements the HTTP API: public signup and contact routes,
// admin routes, and the middleware in front of them.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/waitlist/backend/internal/repository"
)

// Handler serves the service banner and health check.
type Handler struct {
	db   repository.DB
	name string
}

func New(db repository.DB, name string) *Handler {
	return &Handler{db: db, name: name}
}

type rootResponse struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Health string `json:"health"`
}

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{Name: h.name, Status: "running", Health: "/health"})
}

// CORS allows the configured browser origins to call the API.
func CORS(origins []string) func(http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-Admin-Key", HeaderRequestID}),
		handlers.ExposedHeaders([]string{"Retry-After", HeaderRequestID}),
	)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
