package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/vibast-solutions/ms-go-campaigns/app/campaign"
	mail "github.com/wneessen/go-mail"
)

var ErrSendingDisabled = errors.New("ses sending is disabled for this account")

type sesAPI interface {
	GetAccount(ctx context.Context, params *sesv2.GetAccountInput, optFns ...func(*sesv2.Options)) (*sesv2.GetAccountOutput, error)
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type SESTransport struct {
	client sesAPI
	source string
}

// NewSESTransport builds a transport that sends email via AWS SES. A
// non-empty source overrides the campaign sender.
func NewSESTransport(cfg aws.Config, source string) *SESTransport {
	return newSESTransport(sesv2.NewFromConfig(cfg), source)
}

func newSESTransport(client sesAPI, source string) *SESTransport {
	return &SESTransport{client: client, source: source}
}

// Open checks the account can send. SES has no connection to hold, so the
// session is a thin wrapper over the shared client.
func (t *SESTransport) Open(ctx context.Context, cfg campaign.SMTPConfig) (campaign.Session, error) {
	out, err := t.client.GetAccount(ctx, &sesv2.GetAccountInput{})
	if err != nil {
		return nil, fmt.Errorf("ses get account: %w", err)
	}
	if !out.SendingEnabled {
		return nil, ErrSendingDisabled
	}

	source := t.source
	if source == "" {
		source = cfg.Sender()
	}
	return &sesSession{client: t.client, source: source}, nil
}

type sesSession struct {
	client sesAPI
	source string
}

// Send sends msg as a raw MIME email.
func (s *sesSession) Send(ctx context.Context, msg *mail.Msg) error {
	recipients, err := msg.GetRecipients()
	if err != nil {
		return &campaign.PermanentSendError{Err: err}
	}

	var raw bytes.Buffer
	if _, err := msg.WriteTo(&raw); err != nil {
		return &campaign.PermanentSendError{Err: fmt.Errorf("render message: %w", err)}
	}

	_, err = s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.source),
		Destination: &types.Destination{
			ToAddresses: recipients,
		},
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw.Bytes()},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send raw email: %w", err)
	}

	return nil
}

func (s *sesSession) Close() error { return nil }
