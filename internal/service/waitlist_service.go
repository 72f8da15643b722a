package service

import (
	"context"

	"github.com/waitlist/backend/internal/model"
)

// WaitlistService defines the business logic for waitlist signups.
type WaitlistService interface {
	// Join validates in, stores the entry and queues a welcome email.
	// Duplicate email or phone returns *repository.ConflictError.
	Join(ctx context.Context, in model.WaitlistInput) (*model.WaitlistEntry, error)

	// Count returns the number of stored signups.
	Count(ctx context.Context) (int, error)
}
