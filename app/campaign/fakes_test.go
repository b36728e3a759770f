package campaign

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-campaigns/app/entity"
	gomail "github.com/wneessen/go-mail"
)

type fakeTransport struct {
	mu       sync.Mutex
	openErr  func(opened int) error
	sendErr  func(recipient string) error
	sendWait time.Duration

	opens    int
	live     int
	maxLive  int
	closed   int
	attempts map[string]int
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{attempts: make(map[string]int)}
}

func (t *fakeTransport) Open(_ context.Context, _ SMTPConfig) (Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.openErr != nil {
		if err := t.openErr(t.opens); err != nil {
			return nil, err
		}
	}
	t.opens++
	t.live++
	if t.live > t.maxLive {
		t.maxLive = t.live
	}
	return &fakeSession{transport: t}, nil
}

func (t *fakeTransport) attemptsFor(recipient string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attempts[recipient]
}

func (t *fakeTransport) stats() (opens, live, maxLive, closed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.opens, t.live, t.maxLive, t.closed
}

type fakeSession struct {
	transport *fakeTransport
	closeOnce sync.Once
}

func (s *fakeSession) Send(_ context.Context, msg *gomail.Msg) error {
	rcpts, err := msg.GetRecipients()
	if err != nil {
		return err
	}
	t := s.transport
	if t.sendWait > 0 {
		time.Sleep(t.sendWait)
	}
	t.mu.Lock()
	t.attempts[rcpts[0]]++
	sendErr := t.sendErr
	t.mu.Unlock()
	if sendErr != nil {
		return sendErr(rcpts[0])
	}
	return nil
}

func (s *fakeSession) Close() error {
	s.closeOnce.Do(func() {
		s.transport.mu.Lock()
		s.transport.live--
		s.transport.closed++
		s.transport.mu.Unlock()
	})
	return nil
}

type fakeComposer struct{}

func (fakeComposer) Compose(_ context.Context, from string, recipient string, subject string, _ string, _ []entity.Attachment) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, &ConfigError{Field: "from", Reason: err.Error()}
	}
	if err := msg.To(recipient); err != nil {
		return nil, &PermanentSendError{Err: err}
	}
	msg.Subject(subject)
	return msg, nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) Observe(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) remaining() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, 0, len(r.events))
	for _, e := range r.events {
		if e.Type == EventFinished {
			continue
		}
		out = append(out, e.Snapshot.Remaining)
	}
	return out
}

func (r *eventRecorder) each(fn func(Event)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		fn(e)
	}
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testContacts(n int) []entity.Contact {
	out := make([]entity.Contact, n)
	for i := range out {
		out[i] = entity.Contact{
			Email:    "user" + string(rune('a'+i)) + "@example.com",
			Name:     "User " + string(rune('A'+i)),
			Language: "EN",
		}
	}
	return out
}

func testRequest(contacts []entity.Contact) Request {
	return Request{
		Settings: Settings{
			Subject:          "Hello [NAME]",
			MessagesPerBlock: 10,
			MaxConnections:   1,
		},
		SMTP: SMTPConfig{
			Host:     "smtp.example.com",
			Port:     587,
			Username: "sender@example.com",
			Password: "secret",
		},
		Templates: entity.DefaultTemplates(),
		Contacts:  contacts,
	}
}

var errAuth = errors.New("535 5.7.8 authentication failed")
