package preparer

import (
	"context"
	"fmt"

	"github.com/vibast-solutions/ms-go-campaigns/app/entity"
	mail "github.com/wneessen/go-mail"
)

type Message struct {
	From        string
	Recipient   string
	Subject     string
	Body        string
	Attachments []entity.Attachment
	Mail        *mail.Msg
}

type Step interface {
	Prepare(ctx context.Context, msg *Message) error
}

type Chain struct {
	steps []Step
}

// NewChain builds a message preparer chain from steps.
func NewChain(steps ...Step) *Chain {
	return &Chain{steps: steps}
}

// NewDefaultChain returns the envelope, body and attachment steps in order.
func NewDefaultChain() *Chain {
	return NewChain(NewEnvelopeStep(), NewBodyStep(), NewAttachmentStep())
}

// Compose runs all preparer steps and returns the final message.
func (c *Chain) Compose(ctx context.Context, from string, recipient string, subject string, body string, attachments []entity.Attachment) (*mail.Msg, error) {
	msg := &Message{
		From:        from,
		Recipient:   recipient,
		Subject:     subject,
		Body:        body,
		Attachments: attachments,
	}

	for _, step := range c.steps {
		if err := step.Prepare(ctx, msg); err != nil {
			return nil, err
		}
	}

	if msg.Mail == nil {
		return nil, fmt.Errorf("prepared message is empty")
	}

	return msg.Mail, nil
}
