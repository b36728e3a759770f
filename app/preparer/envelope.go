package preparer

import (
	"context"
	"fmt"
	"strings"

	"github.com/vibast-solutions/ms-go-campaigns/app/campaign"
	mail "github.com/wneessen/go-mail"
)

type EnvelopeStep struct{}

// NewEnvelopeStep creates the step that starts the message and sets its headers.
func NewEnvelopeStep() *EnvelopeStep {
	return &EnvelopeStep{}
}

// Prepare sets From, To, Subject, Date and Message-ID.
func (s *EnvelopeStep) Prepare(_ context.Context, msg *Message) error {
	if strings.ContainsAny(msg.Subject, "\r\n") {
		return &campaign.ValidationError{Field: "subject", Reason: "subject contains invalid characters"}
	}

	m := mail.NewMsg(mail.WithCharset(mail.CharsetUTF8))
	if err := m.From(msg.From); err != nil {
		return &campaign.ConfigError{Field: "from", Reason: fmt.Sprintf("invalid sender %q: %v", msg.From, err)}
	}
	if strings.TrimSpace(msg.Recipient) == "" {
		return &campaign.PermanentSendError{Err: fmt.Errorf("recipient is required")}
	}
	if err := m.To(msg.Recipient); err != nil {
		return &campaign.PermanentSendError{Err: fmt.Errorf("invalid recipient %q: %w", msg.Recipient, err)}
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()

	msg.Mail = m
	return nil
}
