package model

import "time"

// WaitlistEntry is a single waitlist signup.
type WaitlistEntry struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Source    *string   `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// WaitlistInput is the raw signup payload before validation.
type WaitlistInput struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Source    *string `json:"source"`
}

// WaitlistCSVHeader is the fixed column order of the waitlist export.
var WaitlistCSVHeader = []string{"id", "first_name", "last_name", "email", "phone", "source", "created_at"}
