package contacts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/vibast-solutions/ms-go-campaigns/app/campaign"
	"github.com/vibast-solutions/ms-go-campaigns/app/entity"
)

// maxRowErrors caps the row errors quoted back to the caller.
const maxRowErrors = 20

var headerAliases = map[string]string{
	"email":         "email",
	"e-mail":        "email",
	"email_address": "email",
	"name":          "name",
	"full_name":     "name",
	"language":      "language",
	"lang":          "language",
}

type columns struct {
	email, name, language int
}

// Parse reads a contacts CSV. The first row is always a header. Known
// header names (email, name, language) are mapped by name; otherwise the
// columns are taken positionally in that order. Every malformed row is
// reported, none is dropped.
func Parse(r io.Reader) ([]entity.Contact, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &campaign.ValidationError{Field: "contacts", Reason: "file is empty"}
	}
	if err != nil {
		return nil, &campaign.ValidationError{Field: "contacts", Reason: fmt.Sprintf("row 1: %v", err)}
	}
	cols := mapColumns(header)

	var (
		out     []entity.Contact
		rowErrs []string
		invalid int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, fmt.Errorf("read contacts: %w", err)
			}
			invalid++
			rowErrs = appendRowError(rowErrs, fmt.Sprintf("row %d: %v", parseErr.StartLine, parseErr.Err))
			continue
		}
		if isBlank(record) {
			continue
		}

		contact, reason := parseRecord(record, cols)
		if reason != "" {
			line, _ := reader.FieldPos(0)
			invalid++
			rowErrs = appendRowError(rowErrs, fmt.Sprintf("row %d: %s", line, reason))
			continue
		}
		out = append(out, contact)
	}

	if len(rowErrs) > 0 {
		reason := strings.Join(rowErrs, "; ")
		if invalid > len(rowErrs) {
			reason = fmt.Sprintf("%s; and %d more", reason, invalid-len(rowErrs))
		}
		return nil, &campaign.ValidationError{Field: "contacts", Reason: reason}
	}
	if len(out) == 0 {
		return nil, &campaign.ValidationError{Field: "contacts", Reason: "no contacts found in file"}
	}
	return out, nil
}

// Dedupe keeps the first occurrence of every email, compared case-insensitively.
func Dedupe(in []entity.Contact) []entity.Contact {
	seen := make(map[string]struct{}, len(in))
	out := make([]entity.Contact, 0, len(in))
	for _, c := range in {
		key := strings.ToLower(c.Email)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

func mapColumns(header []string) columns {
	cols := columns{email: -1, name: -1, language: -1}
	for i, h := range header {
		switch headerAliases[normalizeHeader(h)] {
		case "email":
			if cols.email < 0 {
				cols.email = i
			}
		case "name":
			if cols.name < 0 {
				cols.name = i
			}
		case "language":
			if cols.language < 0 {
				cols.language = i
			}
		}
	}
	if cols.email < 0 {
		return columns{email: 0, name: 1, language: 2}
	}
	return cols
}

func parseRecord(record []string, cols columns) (entity.Contact, string) {
	email := field(record, cols.email)
	if email == "" {
		return entity.Contact{}, "email is required"
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return entity.Contact{}, fmt.Sprintf("invalid email address %q", email)
	}

	name := field(record, cols.name)
	if name == "" {
		name = entity.DefaultName
	}

	lang := strings.ToUpper(field(record, cols.language))
	if lang == "" {
		lang = entity.DefaultLanguage
	}
	if !isLanguageCode(lang) {
		return entity.Contact{}, fmt.Sprintf("invalid language code %q", lang)
	}

	return entity.Contact{Email: email, Name: name, Language: lang}, ""
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

func isLanguageCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func appendRowError(errs []string, msg string) []string {
	if len(errs) >= maxRowErrors {
		return errs
	}
	return append(errs, msg)
}
