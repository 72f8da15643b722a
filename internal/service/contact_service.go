package service

import (
	"context"

	"github.com/waitlist/backend/internal/model"
)

// ContactService defines the business logic for contact form submissions.
type ContactService interface {
	// Submit validates in, screens it for spam, applies the rate limit and
	// stores the message. Returns *validate.ValidationError,
	// *ratelimit.ExceededError or an ErrStorage wrap on failure.
	Submit(ctx context.Context, in model.ContactInput) (*model.ContactMessage, error)

	// List returns contact messages according to the given options.
	List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error)

	// UpdateFlags sets is_read / is_spam. Unknown ids return repository.ErrNotFound.
	UpdateFlags(ctx context.Context, id int64, upd model.ContactFlagsUpdate) (*model.ContactMessage, error)
}
