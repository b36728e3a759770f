package entity

// DefaultName is used when a contact row carries no name.
const DefaultName = "Valued Customer"

// DefaultLanguage is the fallback template language.
const DefaultLanguage = "EN"

type Contact struct {
	Email    string
	Name     string
	Language string
}

type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}
