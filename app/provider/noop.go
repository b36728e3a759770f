package provider

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-campaigns/app/campaign"
	mail "github.com/wneessen/go-mail"
)

// NoopTransport is a stubbed transport that pretends to send emails.
type NoopTransport struct {
	log logrus.FieldLogger
}

// NewNoopTransport constructs a no-op transport.
func NewNoopTransport(log logrus.FieldLogger) *NoopTransport {
	return &NoopTransport{log: log}
}

// Open returns a session without dialing anything.
func (t *NoopTransport) Open(_ context.Context, cfg campaign.SMTPConfig) (campaign.Session, error) {
	t.log.WithField("smtp", cfg.String()).Debug("Opening no-op session")
	return &noopSession{log: t.log}, nil
}

type noopSession struct {
	log logrus.FieldLogger
}

// Send discards msg.
func (s *noopSession) Send(_ context.Context, msg *mail.Msg) error {
	rcpts, err := msg.GetRecipients()
	if err != nil {
		return &campaign.PermanentSendError{Err: err}
	}
	s.log.WithField("recipients", rcpts).Debug("Discarding message")
	return nil
}

func (s *noopSession) Close() error { return nil }
