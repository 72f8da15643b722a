package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/waitlist/backend/internal/model"
	"github.com/waitlist/backend/pkg/mailer"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
	// block, when set, holds Send until the context ends.
	block bool
}

func (s *fakeSender) Send(ctx context.Context, msg mailer.Message) (string, error) {
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, msg)
	return "msg_" + msg.To[0], nil
}

type memDispatches struct {
	mu        sync.Mutex
	rows      []model.EmailDispatch
	sentToday int
	countErr  error
}

func (m *memDispatches) Record(_ context.Context, d *model.EmailDispatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, *d)
	if d.Status == model.DispatchSent {
		m.sentToday++
	}
	return nil
}

func (m *memDispatches) CountSentSince(context.Context, time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sentToday, m.countErr
}

func (m *memDispatches) DeleteBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (m *memDispatches) statuses() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, r := range m.rows {
		out = append(out, r.Status)
	}
	return out
}

func newDispatcher(t *testing.T, sender mailer.Sender, log *memDispatches, opts Options) *Dispatcher {
	t.Helper()
	if opts.From == "" {
		opts.From = "Waitlist <onboarding@resend.dev>"
	}
	d, err := New(sender, log, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestDispatcher_Welcome_PersonalizesAndRecords(t *testing.T) {
	sender := &fakeSender{}
	log := &memDispatches{}
	d := newDispatcher(t, sender, log, Options{})

	d.Welcome(context.Background(), &model.WaitlistEntry{ID: 1, FirstName: "Ada", Email: "ada@example.com"})
	d.Wait()

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.Subject != "Welcome to the Waitlist, Ada!" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "Hey Ada") {
		t.Errorf("html not personalized: %q", msg.HTML)
	}
	if got := log.statuses(); len(got) != 1 || got[0] != model.DispatchSent {
		t.Errorf("dispatch log = %v, want [sent]", got)
	}
	if log.rows[0].ProviderID != "msg_ada@example.com" {
		t.Errorf("provider id = %q", log.rows[0].ProviderID)
	}
}

func TestDispatcher_Welcome_EscapesHTML(t *testing.T) {
	sender := &fakeSender{}
	d := newDispatcher(t, sender, &memDispatches{}, Options{})

	d.Welcome(context.Background(), &model.WaitlistEntry{FirstName: "<b>x</b>", Email: "x@example.com"})
	d.Wait()

	if strings.Contains(sender.sent[0].HTML, "<b>x</b>") {
		t.Error("first name must be escaped in the html body")
	}
}

func TestDispatcher_ContactReceived(t *testing.T) {
	sender := &fakeSender{}
	log := &memDispatches{}
	d := newDispatcher(t, sender, log, Options{NotifyTo: "ops@example.com", Location: time.UTC})

	ip := "203.0.113.7"
	d.ContactReceived(context.Background(), &model.ContactMessage{
		ID: 9, Name: "Jane", Email: "Jane@Example.com", Subject: "Launch date",
		Message: "When does the beta open?", IPAddress: &ip,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	d.Wait()

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To[0] != "ops@example.com" || msg.ReplyTo != "Jane@Example.com" {
		t.Errorf("to = %v reply-to = %q", msg.To, msg.ReplyTo)
	}
	if msg.Subject != "New contact message: Launch date" {
		t.Errorf("subject = %q", msg.Subject)
	}
	for _, want := range []string{"#9", "Jane <Jane@Example.com>", "203.0.113.7", "2026-01-02 03:04:05 UTC", "When does the beta open?"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("body missing %q:\n%s", want, msg.Text)
		}
	}
}

func TestDispatcher_ContactReceived_NoOperatorAddress(t *testing.T) {
	sender := &fakeSender{}
	log := &memDispatches{}
	d := newDispatcher(t, sender, log, Options{})

	d.ContactReceived(context.Background(), &model.ContactMessage{ID: 1, Email: "a@example.com"})
	d.Wait()

	if len(sender.sent) != 0 || len(log.rows) != 0 {
		t.Error("nothing should be sent without an operator address")
	}
}

func TestDispatcher_DailyLimitSkips(t *testing.T) {
	sender := &fakeSender{}
	log := &memDispatches{sentToday: 2}
	d := newDispatcher(t, sender, log, Options{DailyLimit: 2})

	d.Welcome(context.Background(), &model.WaitlistEntry{FirstName: "Ada", Email: "ada@example.com"})
	d.Wait()

	if len(sender.sent) != 0 {
		t.Error("limit reached, nothing should be sent")
	}
	if got := log.statuses(); len(got) != 1 || got[0] != model.DispatchSkipped {
		t.Errorf("dispatch log = %v, want [skipped]", got)
	}
}

func TestDispatcher_DailyLimitCountsPersistedSends(t *testing.T) {
	sender := &fakeSender{}
	log := &memDispatches{}
	d := newDispatcher(t, sender, log, Options{DailyLimit: 1})

	d.Welcome(context.Background(), &model.WaitlistEntry{FirstName: "Ada", Email: "ada@example.com"})
	d.Wait()
	d.Welcome(context.Background(), &model.WaitlistEntry{FirstName: "Bob", Email: "bob@example.com"})
	d.Wait()

	if len(sender.sent) != 1 {
		t.Errorf("sent %d emails, want 1", len(sender.sent))
	}
	got := log.statuses()
	if len(got) != 2 || got[0] != model.DispatchSent || got[1] != model.DispatchSkipped {
		t.Errorf("dispatch log = %v, want [sent skipped]", got)
	}
}

func TestDispatcher_SendFailureIsRecordedNotPropagated(t *testing.T) {
	sender := &fakeSender{err: &mailer.APIError{Err: errors.New("[ERROR]: 500 boom")}}
	log := &memDispatches{}
	d := newDispatcher(t, sender, log, Options{})

	d.Welcome(context.Background(), &model.WaitlistEntry{FirstName: "Ada", Email: "ada@example.com"})
	d.Wait()

	if got := log.statuses(); len(got) != 1 || got[0] != model.DispatchFailed {
		t.Errorf("dispatch log = %v, want [failed]", got)
	}
	if !strings.Contains(log.rows[0].Error, "500") {
		t.Errorf("error = %q", log.rows[0].Error)
	}
}

func TestDispatcher_NotConfiguredIsSkipped(t *testing.T) {
	log := &memDispatches{}
	d := newDispatcher(t, mailer.NewClient(""), log, Options{})

	d.Welcome(context.Background(), &model.WaitlistEntry{FirstName: "Ada", Email: "ada@example.com"})
	d.Wait()

	if got := log.statuses(); len(got) != 1 || got[0] != model.DispatchSkipped {
		t.Errorf("dispatch log = %v, want [skipped]", got)
	}
}

func TestDispatcher_OutlivesRequestContext(t *testing.T) {
	sender := &fakeSender{}
	d := newDispatcher(t, sender, &memDispatches{}, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Welcome(ctx, &model.WaitlistEntry{FirstName: "Ada", Email: "ada@example.com"})
	d.Wait()

	if len(sender.sent) != 1 {
		t.Error("a finished request must not cancel its email")
	}
}

func TestDispatcher_TimeoutBoundsSend(t *testing.T) {
	sender := &fakeSender{block: true}
	log := &memDispatches{}
	d := newDispatcher(t, sender, log, Options{Timeout: 20 * time.Millisecond})

	start := time.Now()
	d.Welcome(context.Background(), &model.WaitlistEntry{FirstName: "Ada", Email: "ada@example.com"})
	d.Wait()

	if time.Since(start) > 2*time.Second {
		t.Error("send was not bounded by the timeout")
	}
	if got := log.statuses(); len(got) != 1 || got[0] != model.DispatchFailed {
		t.Errorf("dispatch log = %v, want [failed]", got)
	}
}

func TestDispatcher_QuotaCheckErrorStillSends(t *testing.T) {
	sender := &fakeSender{}
	d := newDispatcher(t, sender, &memDispatches{countErr: errors.New("db down")}, Options{DailyLimit: 5})

	d.Welcome(context.Background(), &model.WaitlistEntry{FirstName: "Ada", Email: "ada@example.com"})
	d.Wait()

	if len(sender.sent) != 1 {
		t.Error("a failing quota lookup should not block delivery")
	}
}

func TestNew_RejectsBadSubjectTemplate(t *testing.T) {
	if _, err := New(&fakeSender{}, nil, Options{WelcomeSubject: "Hi {{.FirstName"}); err == nil {
		t.Error("expected template parse error")
	}
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("WAT", 3600)
	got := startOfDay(time.Date(2026, 5, 1, 23, 30, 0, 0, time.UTC), loc)
	want := time.Date(2026, 5, 2, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("startOfDay = %v, want %v", got, want)
	}
}
