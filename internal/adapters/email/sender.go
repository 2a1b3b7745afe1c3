package email

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNoRecipients = errors.New("email needs at least one recipient")
	ErrNoSubject    = errors.New("email subject is required")
	ErrNoBody       = errors.New("email body is required")
)

// SendRequest is one outgoing message.
type SendRequest struct {
	To      []string
	From    string // "SAGRA <noreply@example.org>"; the sender default applies when empty
	Subject string
	HTML    string
	ReplyTo string
}

// Validate checks the request before it reaches a provider.
// PRE: none
// POST: Returns nil when there is a non-blank recipient, subject and body
func (r SendRequest) Validate() error {
	hasRecipient := false
	for _, to := range r.To {
		if strings.TrimSpace(to) != "" {
			hasRecipient = true
			break
		}
	}
	if !hasRecipient {
		return ErrNoRecipients
	}
	if strings.TrimSpace(r.Subject) == "" {
		return ErrNoSubject
	}
	if strings.TrimSpace(r.HTML) == "" {
		return ErrNoBody
	}
	return nil
}

// SendResult is the provider's acknowledgement.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers email through an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	SendBatch(ctx context.Context, reqs []SendRequest) ([]SendResult, error)
}
