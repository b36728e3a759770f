package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/vibast-solutions/ms-go-campaigns/app/entity"
)

// contactBatchSize bounds the rows per INSERT statement.
const contactBatchSize = 500

type UploadRepository struct {
	db *sql.DB
}

// NewUploadRepository constructs a repository backed by MySQL.
func NewUploadRepository(db *sql.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

// ReplaceContacts swaps the stored contact list for contacts in one transaction.
func (r *UploadRepository) ReplaceContacts(ctx context.Context, contacts []entity.Contact) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM campaign_contacts`); err != nil {
			return fmt.Errorf("clear contacts: %w", err)
		}
		for start := 0; start < len(contacts); start += contactBatchSize {
			end := min(start+contactBatchSize, len(contacts))
			batch := contacts[start:end]

			query := `INSERT INTO campaign_contacts (position, email, name, language) VALUES ` +
				strings.TrimSuffix(strings.Repeat("(?, ?, ?, ?), ", len(batch)), ", ")
			args := make([]interface{}, 0, len(batch)*4)
			for i, c := range batch {
				args = append(args, start+i, c.Email, c.Name, c.Language)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert contacts: %w", err)
			}
		}
		return nil
	})
}

// ListContacts returns the stored contacts in upload order.
func (r *UploadRepository) ListContacts(ctx context.Context) ([]entity.Contact, error) {
	const query = `
		SELECT email, name, language
		FROM campaign_contacts
		ORDER BY position
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Contact
	for rows.Next() {
		var c entity.Contact
		if err := rows.Scan(&c.Email, &c.Name, &c.Language); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SaveTemplates replaces every stored template.
func (r *UploadRepository) SaveTemplates(ctx context.Context, templates entity.TemplateSet) error {
	langs := make([]string, 0, len(templates))
	for lang := range templates {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM campaign_templates`); err != nil {
			return fmt.Errorf("clear templates: %w", err)
		}
		const query = `
			INSERT INTO campaign_templates (language, body)
			VALUES (?, ?)
		`
		for _, lang := range langs {
			if _, err := tx.ExecContext(ctx, query, lang, templates[lang]); err != nil {
				return fmt.Errorf("insert template %s: %w", lang, err)
			}
		}
		return nil
	})
}

// LoadTemplates returns the stored templates, or the defaults when none were saved.
func (r *UploadRepository) LoadTemplates(ctx context.Context) (entity.TemplateSet, error) {
	const query = `
		SELECT language, body
		FROM campaign_templates
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := entity.TemplateSet{}
	for rows.Next() {
		var lang, body string
		if err := rows.Scan(&lang, &body); err != nil {
			return nil, err
		}
		out[lang] = body
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return entity.DefaultTemplates(), nil
	}
	return out, nil
}

// SaveAttachment stores a file, overwriting any previous file of the same name.
func (r *UploadRepository) SaveAttachment(ctx context.Context, a entity.Attachment) error {
	const query = `
		INSERT INTO campaign_attachments (name, content_type, data)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE content_type = VALUES(content_type), data = VALUES(data)
	`
	_, err := r.db.ExecContext(ctx, query, a.Name, a.ContentType, a.Data)
	return err
}

// ListAttachments returns every stored file ordered by name.
func (r *UploadRepository) ListAttachments(ctx context.Context) ([]entity.Attachment, error) {
	const query = `
		SELECT name, content_type, data
		FROM campaign_attachments
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Attachment
	for rows.Next() {
		var a entity.Attachment
		if err := rows.Scan(&a.Name, &a.ContentType, &a.Data); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *UploadRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
