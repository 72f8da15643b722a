package service

import (
	"context"

	"github.com/waitlist/backend/internal/model"
)

// Notifier sends emails about newly stored records. Implementations must
// return immediately; delivery happens in the background, outlives ctx's
// cancellation and never reports failure to the caller.
type Notifier interface {
	Welcome(ctx context.Context, entry *model.WaitlistEntry)
	ContactReceived(ctx context.Context, msg *model.ContactMessage)
}

type nopNotifier struct{}

func (nopNotifier) Welcome(context.Context, *model.WaitlistEntry) {}
func (nopNotifier) ContactReceived(context.Context, *model.ContactMessage) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
