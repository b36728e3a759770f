package campaign

import (
	"errors"
	"testing"

	"github.com/vibast-solutions/ms-go-campaigns/app/entity"
)

func TestRenderLanguageFallback(t *testing.T) {
	t.Parallel()

	templates := entity.TemplateSet{
		"EN": "Hello [NAME]",
		"ES": "Hola [NAME]",
	}

	tests := []struct {
		name     string
		language string
		body     string
	}{
		{name: "exact match", language: "ES", body: "Hola Ana"},
		{name: "lower case code", language: "es", body: "Hola Ana"},
		{name: "unknown code", language: "DE", body: "Hello Ana"},
		{name: "absent code", language: "", body: "Hello Ana"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, body, err := Render(entity.Contact{Email: "a@b.com", Name: "Ana", Language: tc.language}, templates, "Hi")
			if err != nil {
				t.Fatalf("Render returned error: %v", err)
			}
			if body != tc.body {
				t.Fatalf("expected %q, got %q", tc.body, body)
			}
		})
	}
}

func TestRenderReplacesEveryPlaceholder(t *testing.T) {
	t.Parallel()

	templates := entity.TemplateSet{"EN": "[NAME], dear [NAME]. {{name}} stays."}
	subject, body, err := Render(entity.Contact{Name: "Bob"}, templates, "News for [NAME]")
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if subject != "News for Bob" {
		t.Fatalf("unexpected subject %q", subject)
	}
	if body != "Bob, dear Bob. {{name}} stays." {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestRenderMissingEnglish(t *testing.T) {
	t.Parallel()

	_, _, err := Render(entity.Contact{Name: "Bob", Language: "DE"}, entity.TemplateSet{"ES": "Hola"}, "Hi")
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}
