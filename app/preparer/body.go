package preparer

import (
	"context"
	"fmt"

	mail "github.com/wneessen/go-mail"
)

type BodyStep struct{}

// NewBodyStep creates the step that sets the plain text body.
func NewBodyStep() *BodyStep {
	return &BodyStep{}
}

// Prepare sets the rendered template as the text/plain body.
func (s *BodyStep) Prepare(_ context.Context, msg *Message) error {
	if msg.Mail == nil {
		return fmt.Errorf("body step requires an envelope")
	}
	msg.Mail.SetBodyString(mail.TypeTextPlain, msg.Body)
	return nil
}
