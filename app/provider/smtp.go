package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-campaigns/app/campaign"
	mail "github.com/wneessen/go-mail"
)

type SMTPTransport struct {
	timeout time.Duration
}

// NewSMTPTransport builds a transport that delivers over authenticated SMTP.
func NewSMTPTransport(timeout time.Duration) *SMTPTransport {
	return &SMTPTransport{timeout: timeout}
}

// Open dials the server and authenticates. With UseSSL the connection uses
// implicit TLS, otherwise STARTTLS is mandatory.
func (t *SMTPTransport) Open(ctx context.Context, cfg campaign.SMTPConfig) (campaign.Session, error) {
	client, err := mail.NewClient(cfg.Host, t.options(cfg)...)
	if err != nil {
		return nil, &campaign.ConfigError{Field: "smtp_host", Reason: err.Error()}
	}
	if err := client.DialWithContext(ctx); err != nil {
		return nil, fmt.Errorf("smtp dial %s: %w", cfg.Address(), err)
	}
	return &smtpSession{client: client}, nil
}

func (t *SMTPTransport) options(cfg campaign.SMTPConfig) []mail.Option {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}
	if cfg.UseSSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	}
	if t.timeout > 0 {
		opts = append(opts, mail.WithTimeout(t.timeout))
	}
	return opts
}

type smtpSession struct {
	client *mail.Client
}

// Send delivers msg on the open connection.
func (s *smtpSession) Send(_ context.Context, msg *mail.Msg) error {
	if err := s.client.Send(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// Close quits the SMTP session.
func (s *smtpSession) Close() error {
	return s.client.Close()
}
