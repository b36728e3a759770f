package logger

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" -> "jo***@example.com"
// Short local parts (2 chars or less) are fully masked: "ab@example.com" -> "***@example.com"
func RedactEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***@" + parts[1]
	}
	return "***@" + parts[1]
}

// RedactHook masks recipient addresses in log fields and drops anything
// that looks like a credential.
type RedactHook struct {
	emailFields  map[string]bool
	secretFields map[string]bool
}

// NewRedactHook builds the hook with the field names used across the service.
func NewRedactHook() *RedactHook {
	return &RedactHook{
		emailFields:  map[string]bool{"recipient": true, "email": true, "recipients": true},
		secretFields: map[string]bool{"password": true, "smtp_password": true},
	}
}

func (h *RedactHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *RedactHook) Fire(entry *logrus.Entry) error {
	for key, value := range entry.Data {
		switch {
		case h.secretFields[key]:
			entry.Data[key] = "[REDACTED]"
		case h.emailFields[key]:
			entry.Data[key] = redactValue(value)
		}
	}
	return nil
}

func redactValue(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return RedactEmail(v)
	case []string:
		out := make([]string, len(v))
		for i, s := range v {
			out[i] = RedactEmail(s)
		}
		return out
	default:
		return value
	}
}
