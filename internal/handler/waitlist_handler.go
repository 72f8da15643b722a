package handler

import (
	"net/http"

	"github.com/waitlist/backend/internal/model"
	"github.com/waitlist/backend/internal/service"
)

// WaitlistHandler handles waitlist signups.
type WaitlistHandler struct {
	waitlistService service.WaitlistService
}

// NewWaitlistHandler creates a WaitlistHandler with the given service.
func NewWaitlistHandler(waitlistService service.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{waitlistService: waitlistService}
}

// Join handles POST /waitlist.
func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	var in model.WaitlistInput
	if !decodeJSON(w, r, &in) {
		return
	}
	entry, err := h.waitlistService.Join(r.Context(), in)
	if err != nil {
		writeError(w, r, "waitlist join", err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}
