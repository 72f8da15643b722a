package model

import "time"

// ContactMessage represents a message submitted via the contact form.
type ContactMessage struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	IPAddress *string   `json:"ip_address,omitempty"`
	UserAgent *string   `json:"user_agent,omitempty"`
	IsSpam    bool      `json:"is_spam"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactInput is the raw, untrusted contact form payload plus request metadata.
type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
	// Website is the honeypot field. Humans never see it, so it must stay empty.
	Website   string
	IPAddress string
	UserAgent string
}

// ContactListOptions carries filter and pagination parameters for listing contact messages.
type ContactListOptions struct {
	// Status filters by message state: "", "all", "unread", "read", "spam".
	// Empty string and "all" return all messages.
	Status string
	Limit  int
	Offset int
}

// ContactFlagsUpdate carries the admin-settable flags. Nil fields are left unchanged.
type ContactFlagsUpdate struct {
	IsRead *bool `json:"is_read"`
	IsSpam *bool `json:"is_spam"`
}

// Empty reports whether the update changes nothing.
func (u ContactFlagsUpdate) Empty() bool {
	return u.IsRead == nil && u.IsSpam == nil
}
