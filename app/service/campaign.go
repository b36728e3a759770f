package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-campaigns/app/campaign"
	"github.com/vibast-solutions/ms-go-campaigns/app/contacts"
	"github.com/vibast-solutions/ms-go-campaigns/app/entity"
	"github.com/vibast-solutions/ms-go-campaigns/app/lock"
	"github.com/vibast-solutions/ms-go-campaigns/app/queue"
)

// mysqlErrDataTooLong is ER_DATA_TOO_LONG.
const mysqlErrDataTooLong = 1406

// Store persists uploads between requests.
type Store interface {
	ReplaceContacts(ctx context.Context, contacts []entity.Contact) error
	ListContacts(ctx context.Context) ([]entity.Contact, error)
	SaveTemplates(ctx context.Context, templates entity.TemplateSet) error
	LoadTemplates(ctx context.Context) (entity.TemplateSet, error)
	SaveAttachment(ctx context.Context, a entity.Attachment) error
	ListAttachments(ctx context.Context) ([]entity.Attachment, error)
}

// EventPublisher forwards campaign events to the event stream.
type EventPublisher interface {
	Publish(ctx context.Context, event queue.CampaignEvent) error
}

type Options struct {
	LockTTL            time.Duration
	MaxAttachmentBytes int64
	DedupeContacts     bool
}

type StartInput struct {
	Settings campaign.Settings
	SMTP     campaign.SMTPConfig
}

type CampaignService struct {
	store      Store
	locker     lock.Locker
	publisher  EventPublisher
	dispatcher *campaign.Dispatcher
	log        logrus.FieldLogger
	opts       Options

	mu      sync.Mutex
	runID   string
	refresh *refresher
}

// NewCampaignService builds the service and the dispatcher it drives. A nil
// publisher disables the event stream.
func NewCampaignService(store Store, transport campaign.Transport, composer campaign.Composer, locker lock.Locker, publisher EventPublisher, log logrus.FieldLogger, opts Options) *CampaignService {
	if opts.LockTTL <= 0 {
		opts.LockTTL = time.Minute
	}
	s := &CampaignService{
		store:     store,
		locker:    locker,
		publisher: publisher,
		log:       log,
		opts:      opts,
	}
	s.dispatcher = campaign.NewDispatcher(transport, composer, log, campaign.WithObserver(s), campaign.WithFinalizer(s.finalize))
	return s
}

// ImportContacts parses a contacts CSV and replaces the stored list.
func (s *CampaignService) ImportContacts(ctx context.Context, r io.Reader) (int, error) {
	list, err := contacts.Parse(r)
	if err != nil {
		return 0, err
	}
	if s.opts.DedupeContacts {
		list = contacts.Dedupe(list)
	}
	if err := s.store.ReplaceContacts(ctx, list); err != nil {
		return 0, fmt.Errorf("store contacts: %w", err)
	}
	s.log.WithField("total", len(list)).Info("Contacts imported")
	return len(list), nil
}

// SaveTemplates validates and replaces the stored templates.
func (s *CampaignService) SaveTemplates(ctx context.Context, templates entity.TemplateSet) error {
	normalized := templates.Normalize()
	if _, ok := normalized[""]; ok {
		return &campaign.ValidationError{Field: "templates", Reason: "language code must not be empty"}
	}
	if err := campaign.ValidateTemplates(normalized); err != nil {
		return err
	}
	if err := s.store.SaveTemplates(ctx, normalized); err != nil {
		return fmt.Errorf("store templates: %w", err)
	}
	return nil
}

// SaveAttachment stores an uploaded file under its base name.
func (s *CampaignService) SaveAttachment(ctx context.Context, name string, contentType string, r io.Reader) error {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return &campaign.ValidationError{Field: "file", Reason: "file name is required"}
	}

	limit := s.opts.MaxAttachmentBytes
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read attachment: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return &campaign.ValidationError{Field: "file", Reason: ErrAttachmentTooLarge.Error()}
	}

	err = s.store.SaveAttachment(ctx, entity.Attachment{Name: name, ContentType: contentType, Data: data})
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDataTooLong {
			return &campaign.ValidationError{Field: "file", Reason: ErrAttachmentTooLarge.Error()}
		}
		return fmt.Errorf("store attachment: %w", err)
	}
	s.log.WithFields(logrus.Fields{"name": name, "bytes": len(data)}).Info("Attachment stored")
	return nil
}

// Start loads the uploads and launches a campaign. It fails with
// campaign.ErrConflict when a run is active here or on another replica.
func (s *CampaignService) Start(ctx context.Context, in StartInput) (campaign.Snapshot, error) {
	if s.dispatcher.Status().IsRunning {
		return campaign.Snapshot{}, campaign.ErrConflict
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dispatcher.Status().IsRunning {
		return campaign.Snapshot{}, campaign.ErrConflict
	}
	if err := s.locker.Acquire(ctx, lock.RunKey, s.opts.LockTTL); err != nil {
		if errors.Is(err, lock.ErrNotAcquired) || errors.Is(err, lock.ErrAlreadyHeld) {
			return campaign.Snapshot{}, campaign.ErrConflict
		}
		return campaign.Snapshot{}, fmt.Errorf("acquire run lock: %w", err)
	}

	req, err := s.load(ctx, in)
	if err != nil {
		s.releaseLock()
		return campaign.Snapshot{}, err
	}
	snap, err := s.dispatcher.Start(ctx, req)
	if err != nil {
		s.releaseLock()
		return campaign.Snapshot{}, err
	}

	s.runID = snap.RunID
	if s.refresh != nil {
		s.refresh.stop()
	}
	s.refresh = newRefresher(s.locker, s.opts.LockTTL, s.log)

	runEntry(ctx, s.log, snap.RunID).Info("Campaign accepted")
	return snap, nil
}

// Stop asks the running campaign to finish gracefully.
func (s *CampaignService) Stop(ctx context.Context) (campaign.Snapshot, error) {
	snap, err := s.dispatcher.Stop()
	if err != nil {
		return snap, err
	}
	runEntry(ctx, s.log, snap.RunID).Info("Campaign stop accepted")
	return snap, nil
}

// Status returns the current run snapshot.
func (s *CampaignService) Status() campaign.Snapshot {
	return s.dispatcher.Status()
}

// Wait blocks until the current run, if any, has finished.
func (s *CampaignService) Wait(ctx context.Context) error {
	return s.dispatcher.Wait(ctx)
}

// Observe forwards dispatcher events to the event stream.
func (s *CampaignService) Observe(e campaign.Event) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.publisher.Publish(ctx, queue.NewCampaignEvent(e)); err != nil {
		s.log.WithError(err).WithField("type", e.Type).Warn("Failed to publish campaign event")
	}
}

// finalize stops the lock refresh and releases the run lock. The dispatcher
// calls it before the run leaves Running, so the lock is free by the time
// a new Start can pass the running check.
func (s *CampaignService) finalize(runID string) {
	// Start holds mu until the run ID is recorded, so a fast run cannot
	// finish unnoticed.
	s.mu.Lock()
	defer s.mu.Unlock()
	if runID != s.runID {
		return
	}
	if s.refresh != nil {
		s.refresh.stop()
		s.refresh = nil
	}
	s.runID = ""
	s.releaseLock()
}

func (s *CampaignService) load(ctx context.Context, in StartInput) (campaign.Request, error) {
	templates, err := s.store.LoadTemplates(ctx)
	if err != nil {
		return campaign.Request{}, fmt.Errorf("load templates: %w", err)
	}
	list, err := s.store.ListContacts(ctx)
	if err != nil {
		return campaign.Request{}, fmt.Errorf("load contacts: %w", err)
	}
	attachments, err := s.store.ListAttachments(ctx)
	if err != nil {
		return campaign.Request{}, fmt.Errorf("load attachments: %w", err)
	}
	return campaign.Request{
		Settings:    in.Settings,
		SMTP:        in.SMTP,
		Templates:   templates,
		Contacts:    list,
		Attachments: attachments,
	}, nil
}

func (s *CampaignService) releaseLock() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.locker.Release(ctx, lock.RunKey); err != nil {
		s.log.WithError(err).Warn("Failed to release run lock")
	}
}
