package preparer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/vibast-solutions/ms-go-campaigns/app/campaign"
	"github.com/vibast-solutions/ms-go-campaigns/app/entity"
)

func render(t *testing.T, c *Chain, attachments []entity.Attachment) string {
	t.Helper()
	msg, err := c.Compose(context.Background(), "sender@example.com", "ana@example.com", "Hello Ana", "Hi Ana, welcome.", attachments)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	return buf.String()
}

func TestDefaultChainBuildsPlainMessage(t *testing.T) {
	t.Parallel()

	raw := render(t, NewDefaultChain(), nil)
	for _, want := range []string{
		"From: <sender@example.com>",
		"To: <ana@example.com>",
		"Subject: Hello Ana",
		"Message-ID:",
		"text/plain",
		"Hi Ana, welcome.",
	} {
		if !strings.Contains(raw, want) {
			t.Fatalf("expected %q in message:\n%s", want, raw)
		}
	}
	if strings.Contains(raw, "Content-Disposition: attachment") {
		t.Fatalf("unexpected attachment part")
	}
}

func TestDefaultChainAttachesFiles(t *testing.T) {
	t.Parallel()

	data := []byte("%PDF-1.4 brochure")
	raw := render(t, NewDefaultChain(), []entity.Attachment{
		{Name: "uploads/brochure.pdf", ContentType: "application/pdf", Data: data},
		{Name: "notes.bin", Data: []byte{0x01, 0x02}},
	})

	if !strings.Contains(raw, `filename="brochure.pdf"`) {
		t.Fatalf("expected base name of first attachment:\n%s", raw)
	}
	if !strings.Contains(raw, `filename="notes.bin"`) {
		t.Fatalf("expected second attachment:\n%s", raw)
	}
	if !strings.Contains(raw, "application/pdf") || !strings.Contains(raw, "application/octet-stream") {
		t.Fatalf("expected attachment content types:\n%s", raw)
	}
	if !strings.Contains(raw, base64.StdEncoding.EncodeToString(data)) {
		t.Fatalf("expected base64 payload of first attachment")
	}
}

func TestEnvelopeStepClassifiesAddressErrors(t *testing.T) {
	t.Parallel()

	c := NewDefaultChain()

	_, err := c.Compose(context.Background(), "not an address", "ana@example.com", "s", "b", nil)
	var cfgErr *campaign.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "from" {
		t.Fatalf("expected sender ConfigError, got %v", err)
	}

	_, err = c.Compose(context.Background(), "sender@example.com", "broken@@example", "s", "b", nil)
	var permErr *campaign.PermanentSendError
	if !errors.As(err, &permErr) {
		t.Fatalf("expected PermanentSendError for bad recipient, got %v", err)
	}

	_, err = c.Compose(context.Background(), "sender@example.com", "ana@example.com", "bad\r\nBcc: x@example.com", "b", nil)
	var valErr *campaign.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError for header injection, got %v", err)
	}
}

func TestChainRequiresEnvelope(t *testing.T) {
	t.Parallel()

	if _, err := NewChain(NewBodyStep()).Compose(context.Background(), "a@example.com", "b@example.com", "s", "b", nil); err == nil {
		t.Fatalf("expected error without envelope step")
	}
	if _, err := NewChain().Compose(context.Background(), "a@example.com", "b@example.com", "s", "b", nil); err == nil {
		t.Fatalf("expected error for empty chain")
	}
}
