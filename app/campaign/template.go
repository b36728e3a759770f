package campaign

import (
	"strings"

	"github.com/vibast-solutions/ms-go-campaigns/app/entity"
)

// ValidateTemplates fails when the EN fallback is missing.
func ValidateTemplates(templates entity.TemplateSet) error {
	if _, ok := templates[entity.DefaultLanguage]; !ok {
		return &ConfigError{Field: "templates", Reason: "English (EN) template is required"}
	}
	return nil
}

// Render picks the contact's template, falling back to EN, and replaces
// every [NAME] in subject and body with the contact name.
func Render(contact entity.Contact, templates entity.TemplateSet, subject string) (string, string, error) {
	body, ok := templates.Lookup(contact.Language)
	if !ok {
		return "", "", ValidateTemplates(templates)
	}
	return strings.ReplaceAll(subject, entity.NamePlaceholder, contact.Name),
		strings.ReplaceAll(body, entity.NamePlaceholder, contact.Name), nil
}
