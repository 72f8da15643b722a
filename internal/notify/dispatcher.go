// Package notify sends the welcome and operator emails in the background.
// Delivery never blocks or fails the request that triggered it.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/waitlist/backend/internal/metrics"
	"github.com/waitlist/backend/internal/model"
	"github.com/waitlist/backend/internal/repository"
	"github.com/waitlist/backend/pkg/mailer"
)

// Options configures a Dispatcher.
type Options struct {
	From           string
	NotifyTo       string // operator address; empty disables contact notifications
	NotifySubject  string
	WelcomeSubject string // text/template over the waitlist entry
	// DailyLimit caps sent emails per local calendar day. Zero means no cap.
	DailyLimit int
	Timeout    time.Duration
	Location   *time.Location
}

// Dispatcher implements service.Notifier on top of a mailer.Sender.
type Dispatcher struct {
	sender         mailer.Sender
	dispatches     repository.EmailDispatchRepository
	opts           Options
	welcomeSubject executor
	now            func() time.Time
	wg             sync.WaitGroup
}

// New returns a Dispatcher. dispatches may be nil, in which case nothing is
// recorded and the daily limit cannot be enforced.
func New(sender mailer.Sender, dispatches repository.EmailDispatchRepository, opts Options) (*Dispatcher, error) {
	if opts.WelcomeSubject == "" {
		opts.WelcomeSubject = "Welcome to the Waitlist, {{.FirstName}}!"
	}
	if opts.NotifySubject == "" {
		opts.NotifySubject = "New contact message"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	subject, err := parseSubject("welcome-subject", opts.WelcomeSubject)
	if err != nil {
		return nil, fmt.Errorf("notify: welcome subject: %w", err)
	}
	return &Dispatcher{
		sender:         sender,
		dispatches:     dispatches,
		opts:           opts,
		welcomeSubject: subject,
		now:            time.Now,
	}, nil
}

// Welcome queues the personalized welcome email for a new signup.
func (d *Dispatcher) Welcome(ctx context.Context, entry *model.WaitlistEntry) {
	d.spawn(ctx, model.EmailKindWelcome, entry.Email, func() (mailer.Message, error) {
		subject, err := render(d.welcomeSubject, entry)
		if err != nil {
			return mailer.Message{}, err
		}
		html, err := render(welcomeHTML, entry)
		if err != nil {
			return mailer.Message{}, err
		}
		return mailer.Message{
			From:    d.opts.From,
			To:      []string{entry.Email},
			Subject: subject,
			HTML:    html,
		}, nil
	})
}

// ContactReceived queues the operator notification for a stored contact message.
func (d *Dispatcher) ContactReceived(ctx context.Context, msg *model.ContactMessage) {
	if d.opts.NotifyTo == "" {
		return
	}
	d.spawn(ctx, model.EmailKindContactNotification, d.opts.NotifyTo, func() (mailer.Message, error) {
		ip := ""
		if msg.IPAddress != nil {
			ip = *msg.IPAddress
		}
		text, err := render(contactText, struct {
			ID                            int64
			Name, Email, Subject, Message string
			IP, Received                  string
		}{
			ID: msg.ID, Name: msg.Name, Email: msg.Email, Subject: msg.Subject, Message: msg.Message,
			IP: ip, Received: msg.CreatedAt.In(d.opts.Location).Format("2006-01-02 15:04:05 MST"),
		})
		if err != nil {
			return mailer.Message{}, err
		}
		return mailer.Message{
			From:    d.opts.From,
			To:      []string{d.opts.NotifyTo},
			Subject: d.opts.NotifySubject + ": " + msg.Subject,
			Text:    text,
			ReplyTo: msg.Email,
		}, nil
	})
}

// Wait blocks until every queued email has been attempted.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) spawn(ctx context.Context, kind, recipient string, build func() (mailer.Message, error)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.opts.Timeout)
		defer cancel()
		d.deliver(ctx, kind, recipient, build)
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, kind, recipient string, build func() (mailer.Message, error)) {
	log := slog.With("kind", kind, "recipient", recipient)
	dispatch := &model.EmailDispatch{Kind: kind, Recipient: recipient}

	if ok, err := d.underDailyLimit(ctx); err != nil {
		log.Error("email quota check failed", "error", err)
	} else if !ok {
		log.Warn("daily email limit reached, skipping", "limit", d.opts.DailyLimit)
		dispatch.Status, dispatch.Error = model.DispatchSkipped, "daily limit reached"
		d.record(ctx, dispatch)
		return
	}

	msg, err := build()
	if err != nil {
		log.Error("email render failed", "error", err)
		dispatch.Status, dispatch.Error = model.DispatchFailed, err.Error()
		d.record(ctx, dispatch)
		return
	}

	id, err := d.sender.Send(ctx, msg)
	switch {
	case mailer.Delivered(err):
		log.Info("email sent", "provider_id", id)
		dispatch.Status, dispatch.ProviderID = model.DispatchSent, id
	case errors.Is(err, mailer.ErrNotConfigured):
		log.Warn("email provider not configured, skipping")
		dispatch.Status, dispatch.Error = model.DispatchSkipped, err.Error()
	default:
		log.Error("email send failed", "error", err)
		dispatch.Status, dispatch.Error = model.DispatchFailed, err.Error()
	}
	d.record(ctx, dispatch)
}

// underDailyLimit counts today's sent rows. The day starts at local midnight.
func (d *Dispatcher) underDailyLimit(ctx context.Context) (bool, error) {
	if d.opts.DailyLimit <= 0 || d.dispatches == nil {
		return true, nil
	}
	n, err := d.dispatches.CountSentSince(ctx, startOfDay(d.now(), d.opts.Location))
	if err != nil {
		return false, err
	}
	return n < d.opts.DailyLimit, nil
}

func (d *Dispatcher) record(ctx context.Context, dispatch *model.EmailDispatch) {
	metrics.EmailsTotal.WithLabelValues(dispatch.Kind, dispatch.Status).Inc()
	if d.dispatches == nil {
		return
	}
	if err := d.dispatches.Record(ctx, dispatch); err != nil {
		slog.Error("record email dispatch failed", "kind", dispatch.Kind, "error", err)
	}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}
