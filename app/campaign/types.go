package campaign

import (
	"context"
	"fmt"
	"net"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-campaigns/app/entity"
	gomail "github.com/wneessen/go-mail"
)

// Settings controls pacing and retry behaviour of one run.
type Settings struct {
	Subject              string
	PauseBetweenMessages time.Duration
	PauseBetweenBlocks   time.Duration
	MessagesPerBlock     int
	MaxConnections       int
	Retries              int
}

// Validate checks the settings before a run starts.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.Subject) == "" {
		return &ValidationError{Field: "subject", Reason: "subject is required"}
	}
	if strings.ContainsAny(s.Subject, "\r\n") {
		return &ValidationError{Field: "subject", Reason: "subject contains invalid characters"}
	}
	if s.MessagesPerBlock <= 0 {
		return &ConfigError{Field: "messages_per_block", Reason: "must be a positive integer"}
	}
	if s.MaxConnections <= 0 {
		return &ConfigError{Field: "max_connections", Reason: "must be a positive integer"}
	}
	if s.Retries < 0 {
		return &ConfigError{Field: "retries", Reason: "must not be negative"}
	}
	if s.PauseBetweenMessages < 0 {
		return &ConfigError{Field: "pause_between_messages", Reason: "must not be negative"}
	}
	if s.PauseBetweenBlocks < 0 {
		return &ConfigError{Field: "pause_between_blocks", Reason: "must not be negative"}
	}
	return nil
}

// SMTPConfig holds outbound credentials. It is never logged verbatim.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	UseSSL   bool
	From     string
}

// Validate checks that the credentials are complete.
func (c SMTPConfig) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return &ValidationError{Field: "smtp_host", Reason: "smtp host is required"}
	}
	if c.Port <= 0 || c.Port > 65535 {
		return &ValidationError{Field: "port", Reason: "port must be between 1 and 65535"}
	}
	if c.Username == "" || c.Password == "" {
		return &ValidationError{Field: "username", Reason: "username and password are required"}
	}
	if _, err := mail.ParseAddress(c.Sender()); err != nil {
		return &ValidationError{Field: "from", Reason: "sender must be a valid email address"}
	}
	return nil
}

// Sender returns the envelope sender, defaulting to the username.
func (c SMTPConfig) Sender() string {
	if c.From != "" {
		return c.From
	}
	return c.Username
}

// Address returns host:port.
func (c SMTPConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// String masks the password.
func (c SMTPConfig) String() string {
	return fmt.Sprintf("smtp://%s@%s (ssl=%t)", c.Username, c.Address(), c.UseSSL)
}

// GoString masks the password for %#v as well.
func (c SMTPConfig) GoString() string { return c.String() }

// Session is one authenticated outbound connection.
type Session interface {
	Send(ctx context.Context, msg *gomail.Msg) error
	Close() error
}

// Transport opens sessions. Open must authenticate before returning.
type Transport interface {
	Open(ctx context.Context, cfg SMTPConfig) (Session, error)
}

// Composer builds the outgoing message for one rendered job.
type Composer interface {
	Compose(ctx context.Context, from string, recipient string, subject string, body string, attachments []entity.Attachment) (*gomail.Msg, error)
}

// Request carries everything a run needs. Contacts and templates are
// treated as immutable for the run.
type Request struct {
	Settings    Settings
	SMTP        SMTPConfig
	Templates   entity.TemplateSet
	Contacts    []entity.Contact
	Attachments []entity.Attachment
}

// Job is one contact's delivery within a run.
type Job struct {
	Index    int
	Contact  entity.Contact
	Subject  string
	Body     string
	Attempts int
	Status   int16
	LastErr  error
}
