package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/waitlist/backend/internal/metrics"
	"github.com/waitlist/backend/internal/model"
	"github.com/waitlist/backend/internal/ratelimit"
	"github.com/waitlist/backend/internal/repository"
	"github.com/waitlist/backend/internal/spam"
	"github.com/waitlist/backend/internal/validate"
)

// ContactOptions configures NewContactService.
type ContactOptions struct {
	Spam     *spam.Engine
	Limits   ratelimit.Config // zero value means ratelimit.DefaultConfig
	Notifier Notifier

	// Strict runs the rate-limit count and the insert in one transaction
	// under per-sender advisory locks. Otherwise the check happens before
	// the insert and two simultaneous requests may both pass it.
	Strict bool
}

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo     repository.ContactRepository
	spam     *spam.Engine
	limiter  *ratelimit.Limiter
	notifier Notifier
	strict   bool
}

// NewContactService creates a ContactService backed by the given repository.
// The repository also serves as the rate limiter's counter.
func NewContactService(repo repository.ContactRepository, opts ContactOptions) ContactService {
	engine := opts.Spam
	if engine == nil {
		engine = spam.Default()
	}
	limits := opts.Limits
	if limits == (ratelimit.Config{}) {
		limits = ratelimit.DefaultConfig()
	}
	return &contactServiceImpl{
		repo:     repo,
		spam:     engine,
		limiter:  ratelimit.New(repo, limits),
		notifier: notifierOrNop(opts.Notifier),
		strict:   opts.Strict,
	}
}

// Submit validates, screens for spam, applies the rate limit, stores and notifies, in that order.
func (s *contactServiceImpl) Submit(ctx context.Context, in model.ContactInput) (*model.ContactMessage, error) {
	msg, err := buildContactMessage(in)
	if err != nil {
		metrics.ContactSubmissionsTotal.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, err
	}

	if err := s.spam.Check(spam.Submission{
		Name:     msg.Name,
		Subject:  msg.Subject,
		Message:  msg.Message,
		Honeypot: in.Website,
	}); err != nil {
		var ve *validate.ValidationError
		if errors.As(err, &ve) {
			metrics.SpamRejectionsTotal.WithLabelValues(ve.Code).Inc()
		}
		metrics.ContactSubmissionsTotal.WithLabelValues(metrics.OutcomeSpam).Inc()
		slog.Info("contact submission rejected as spam", "reason", err.Error())
		return nil, err
	}

	ip := ""
	if msg.IPAddress != nil {
		ip = *msg.IPAddress
	}

	if s.strict {
		err = s.repo.SaveGuarded(ctx, msg, func(ctx context.Context, counter repository.WindowCounter) error {
			return s.limiter.CheckWith(ctx, counter, ip, msg.Email)
		})
	} else {
		err = s.limiter.Check(ctx, ip, msg.Email)
		if err == nil {
			err = s.repo.Save(ctx, msg)
		}
	}
	if err != nil {
		return nil, s.submitFailed(err)
	}

	metrics.ContactSubmissionsTotal.WithLabelValues(metrics.OutcomeAccepted).Inc()
	s.notifier.ContactReceived(ctx, msg)
	return msg, nil
}

func (s *contactServiceImpl) submitFailed(err error) error {
	var exceeded *ratelimit.ExceededError
	if errors.As(err, &exceeded) {
		metrics.RateLimitHitsTotal.WithLabelValues(string(exceeded.Scope)).Inc()
		metrics.ContactSubmissionsTotal.WithLabelValues(metrics.OutcomeRateLimited).Inc()
		return exceeded
	}
	metrics.ContactSubmissionsTotal.WithLabelValues(metrics.OutcomeStorage).Inc()
	slog.Error("contact insert failed", "error", err)
	return storageError("save contact message", err)
}

// List returns contact messages according to the given filter/pagination options.
func (s *contactServiceImpl) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	messages, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, storageError("list contact messages", err)
	}
	return messages, nil
}

// UpdateFlags changes the admin flags of a contact message.
func (s *contactServiceImpl) UpdateFlags(ctx context.Context, id int64, upd model.ContactFlagsUpdate) (*model.ContactMessage, error) {
	if upd.Empty() {
		return nil, validate.Errorf("", "no_changes", "provide is_read and/or is_spam")
	}
	msg, err := s.repo.UpdateFlags(ctx, id, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, storageError("update contact flags", err)
	}
	return msg, nil
}

func buildContactMessage(in model.ContactInput) (*model.ContactMessage, error) {
	name, err := validate.ContactName(in.Name)
	if err != nil {
		return nil, err
	}
	email, err := validate.Email(in.Email)
	if err != nil {
		return nil, err
	}
	subject, err := validate.Subject(in.Subject)
	if err != nil {
		return nil, err
	}
	body, err := validate.Message(in.Message)
	if err != nil {
		return nil, err
	}
	return &model.ContactMessage{
		Name:      name,
		Email:     email,
		Subject:   subject,
		Message:   body,
		IPAddress: validate.IPAddress(in.IPAddress),
		UserAgent: validate.UserAgent(in.UserAgent),
	}, nil
}
