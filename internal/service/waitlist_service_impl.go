package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/waitlist/backend/internal/metrics"
	"github.com/waitlist/backend/internal/model"
	"github.com/waitlist/backend/internal/repository"
	"github.com/waitlist/backend/internal/validate"
)

// waitlistServiceImpl is the production implementation of WaitlistService.
type waitlistServiceImpl struct {
	repo     repository.WaitlistRepository
	phones   *validate.PhonePlan
	notifier Notifier
}

// NewWaitlistService creates a WaitlistService. A nil plan uses
// validate.DefaultPhonePlan; a nil notifier sends nothing.
func NewWaitlistService(repo repository.WaitlistRepository, plan *validate.PhonePlan, notifier Notifier) WaitlistService {
	if plan == nil {
		plan = validate.DefaultPhonePlan
	}
	return &waitlistServiceImpl{repo: repo, phones: plan, notifier: notifierOrNop(notifier)}
}

// Join stores a new signup. The repository owns the transaction, so a
// failed insert leaves nothing behind.
func (s *waitlistServiceImpl) Join(ctx context.Context, in model.WaitlistInput) (*model.WaitlistEntry, error) {
	entry, err := s.buildEntry(in)
	if err != nil {
		metrics.WaitlistRejectionsTotal.WithLabelValues(metrics.ReasonValidation).Inc()
		return nil, err
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		var conflict *repository.ConflictError
		if errors.As(err, &conflict) {
			metrics.WaitlistRejectionsTotal.WithLabelValues(metrics.ReasonConflict).Inc()
			return nil, conflict
		}
		metrics.WaitlistRejectionsTotal.WithLabelValues(metrics.ReasonStorage).Inc()
		slog.Error("waitlist insert failed", "error", err)
		return nil, storageError("create waitlist entry", err)
	}

	metrics.WaitlistSignupsTotal.Inc()
	s.notifier.Welcome(ctx, entry)
	return entry, nil
}

func (s *waitlistServiceImpl) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, storageError("count waitlist", err)
	}
	return n, nil
}

func (s *waitlistServiceImpl) buildEntry(in model.WaitlistInput) (*model.WaitlistEntry, error) {
	first, err := validate.PersonName("first_name", in.FirstName)
	if err != nil {
		return nil, err
	}
	last, err := validate.PersonName("last_name", in.LastName)
	if err != nil {
		return nil, err
	}
	email, err := validate.Email(in.Email)
	if err != nil {
		return nil, err
	}
	phone, err := s.phones.Normalize(in.Phone)
	if err != nil {
		return nil, err
	}
	source, err := validate.Source(in.Source)
	if err != nil {
		return nil, err
	}
	return &model.WaitlistEntry{
		FirstName: first,
		LastName:  last,
		Email:     validate.NormalizeEmail(email),
		Phone:     phone,
		Source:    source,
	}, nil
}
