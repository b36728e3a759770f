package preparer

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	mail "github.com/wneessen/go-mail"
)

type AttachmentStep struct{}

// NewAttachmentStep creates the step that attaches every uploaded file.
func NewAttachmentStep() *AttachmentStep {
	return &AttachmentStep{}
}

// Prepare attaches each file under its base name. Files without a content
// type go out as application/octet-stream.
func (s *AttachmentStep) Prepare(_ context.Context, msg *Message) error {
	if msg.Mail == nil {
		return fmt.Errorf("attachment step requires an envelope")
	}
	for _, a := range msg.Attachments {
		name := filepath.Base(a.Name)
		contentType := mail.TypeAppOctetStream
		if a.ContentType != "" {
			contentType = mail.ContentType(a.ContentType)
		}
		if err := msg.Mail.AttachReader(name, bytes.NewReader(a.Data), mail.WithFileContentType(contentType)); err != nil {
			return fmt.Errorf("attach %s: %w", name, err)
		}
	}
	return nil
}
