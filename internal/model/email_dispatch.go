package model

import "time"

// Email kinds recorded in the dispatch log.
const (
	EmailKindWelcome             = "welcome"
	EmailKindContactNotification = "contact_notification"
)

// Dispatch outcomes.
const (
	DispatchSent    = "sent"
	DispatchFailed  = "failed"
	DispatchSkipped = "skipped"
)

// EmailDispatch records one attempted outbound email. Rows with status
// "sent" back the daily sending quota.
type EmailDispatch struct {
	ID         int64
	Kind       string
	Recipient  string
	Status     string
	ProviderID string
	Error      string
	CreatedAt  time.Time
}
