// Package mailer sends transactional email through Resend.
package mailer

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/resend/resend-go/v2"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("mailer: not configured")

// Message is one outbound email. At least one of HTML and Text should be set.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
}

// Sender delivers a message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// APIError wraps a failure reported by the Resend client.
type APIError struct {
	Err error
}

func (e *APIError) Error() string {
	return "mailer: resend: " + e.Err.Error()
}

func (e *APIError) Unwrap() error { return e.Err }

// Delivered reports whether a Send result means the provider accepted the message.
func Delivered(err error) bool {
	return err == nil
}

// Client is the Resend implementation of Sender.
type Client struct {
	apiKey string
	resend *resend.Client
}

// NewClient returns a Client. An empty apiKey makes every Send fail with ErrNotConfigured.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		resend: resend.NewCustomClient(&http.Client{Timeout: 30 * time.Second}, apiKey),
	}
}

// WithBaseURL points the client at another Resend-compatible API root.
func (c *Client) WithBaseURL(raw string) (*Client, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	c.resend.BaseURL = u
	return c, nil
}

var _ Sender = (*Client)(nil)

// Send hands msg to Resend.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return "", errors.New("mailer: no recipients")
	}

	sent, err := c.resend.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &APIError{Err: err}
	}
	if sent == nil || sent.Id == "" {
		return "", errors.New("mailer: empty message id in response")
	}
	return sent.Id, nil
}
