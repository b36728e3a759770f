package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/vibast-solutions/ms-go-campaigns/app/entity"
)

// MemoryStore keeps uploads in process memory. It is used when no MySQL
// DSN is configured; uploads are lost on restart.
type MemoryStore struct {
	mu          sync.RWMutex
	contacts    []entity.Contact
	templates   entity.TemplateSet
	attachments map[string]entity.Attachment
}

// NewMemoryStore returns a store seeded with the default templates.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		templates:   entity.DefaultTemplates(),
		attachments: make(map[string]entity.Attachment),
	}
}

func (s *MemoryStore) ReplaceContacts(_ context.Context, contacts []entity.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = append([]entity.Contact(nil), contacts...)
	return nil
}

func (s *MemoryStore) ListContacts(_ context.Context) ([]entity.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.Contact(nil), s.contacts...), nil
}

func (s *MemoryStore) SaveTemplates(_ context.Context, templates entity.TemplateSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates = copyTemplates(templates)
	return nil
}

func (s *MemoryStore) LoadTemplates(_ context.Context) (entity.TemplateSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyTemplates(s.templates), nil
}

func (s *MemoryStore) SaveAttachment(_ context.Context, a entity.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.Data = append([]byte(nil), a.Data...)
	s.attachments[a.Name] = a
	return nil
}

func (s *MemoryStore) ListAttachments(_ context.Context) ([]entity.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Attachment, 0, len(s.attachments))
	for _, a := range s.attachments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func copyTemplates(in entity.TemplateSet) entity.TemplateSet {
	out := make(entity.TemplateSet, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
