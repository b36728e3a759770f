package entity

import "strings"

// NamePlaceholder is the only interpolation token supported in templates.
const NamePlaceholder = "[NAME]"

// TemplateSet maps an upper-case language code to a message body.
type TemplateSet map[string]string

// DefaultTemplates returns the templates a fresh store starts with.
func DefaultTemplates() TemplateSet {
	return TemplateSet{
		"EN": "Default English template. Hello [NAME]",
		"ES": "Default Spanish template. Hola [NAME]",
		"FR": "Default French template. Bonjour [NAME]",
	}
}

// Lookup returns the body for lang, falling back to EN.
func (t TemplateSet) Lookup(lang string) (string, bool) {
	if body, ok := t[strings.ToUpper(strings.TrimSpace(lang))]; ok {
		return body, true
	}
	body, ok := t[DefaultLanguage]
	return body, ok
}

// Normalize upper-cases and trims every language key.
func (t TemplateSet) Normalize() TemplateSet {
	out := make(TemplateSet, len(t))
	for lang, body := range t {
		out[strings.ToUpper(strings.TrimSpace(lang))] = body
	}
	return out
}
