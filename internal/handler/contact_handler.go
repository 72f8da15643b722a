package handler

import (
	"net/http"
	"strconv"

	"github.com/waitlist/backend/internal/model"
	"github.com/waitlist/backend/internal/repository"
	"github.com/waitlist/backend/internal/service"
)

const contactAcceptedMessage = "Thanks for reaching out! We'll get back to you soon."

// ContactHandler handles contact form submission and admin listing.
type ContactHandler struct {
	contactService    service.ContactService
	trustedProxyCount int
}

// NewContactHandler creates a ContactHandler with the given service.
func NewContactHandler(contactService service.ContactService, trustedProxyCount int) *ContactHandler {
	return &ContactHandler{contactService: contactService, trustedProxyCount: trustedProxyCount}
}

// submitRequest is the expected JSON body for POST /contact.
type submitRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Website string `json:"website"`
}

type submitResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Submit handles POST /contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, err := h.contactService.Submit(r.Context(), model.ContactInput{
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		Website:   req.Website,
		IPAddress: ClientIP(r, h.trustedProxyCount),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeError(w, r, "contact submit", err)
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse{OK: true, Message: contactAcceptedMessage})
}

// adminListResponse is the JSON response for GET /admin/contacts.
type adminListResponse struct {
	Messages []*model.ContactMessage `json:"messages"`
}

var validStatuses = map[string]bool{"": true, "all": true, "unread": true, "read": true, "spam": true}

// AdminList handles GET /admin/contacts.
// Supports query params: status (all/unread/read/spam), limit, offset.
func (h *ContactHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := model.ContactListOptions{
		Status: q.Get("status"),
		Limit:  20,
		Offset: 0,
	}
	if !validStatuses[opts.Status] {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_status", Detail: "status must be one of all, unread, read, spam"})
		return
	}

	if l := q.Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
			opts.Limit = n
		}
	}
	if o := q.Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			opts.Offset = n
		}
	}

	messages, err := h.contactService.List(r.Context(), opts)
	if err != nil {
		writeError(w, r, "contact list", err)
		return
	}

	// Return [] not null for empty lists
	if messages == nil {
		messages = []*model.ContactMessage{}
	}
	writeJSON(w, http.StatusOK, adminListResponse{Messages: messages})
}

// UpdateFlags handles PATCH /admin/contacts/{id}.
func (h *ContactHandler) UpdateFlags(w http.ResponseWriter, r *http.Request) {
	id, ok := repository.ParseContactID(r.PathValue("id"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_id"})
		return
	}
	var upd model.ContactFlagsUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}
	if upd.Empty() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "no_changes", Detail: "set is_read or is_spam"})
		return
	}

	msg, err := h.contactService.UpdateFlags(r.Context(), id, upd)
	if err != nil {
		writeError(w, r, "contact update", err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}
