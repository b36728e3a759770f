package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/vibast-solutions/ms-go-campaigns/app/entity"
)

func TestUploadRepositoryContacts(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewUploadRepository(db)
	contacts := []entity.Contact{
		{Email: "ana@example.com", Name: "Ana", Language: "ES"},
		{Email: "bob@example.com", Name: "Bob", Language: "EN"},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM campaign_contacts").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO campaign_contacts").
		WithArgs(0, "ana@example.com", "Ana", "ES", 1, "bob@example.com", "Bob", "EN").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()
	if err := repo.ReplaceContacts(context.Background(), contacts); err != nil {
		t.Fatalf("ReplaceContacts: %v", err)
	}

	mock.ExpectQuery("SELECT email, name, language").
		WillReturnRows(sqlmock.NewRows([]string{"email", "name", "language"}).
			AddRow("ana@example.com", "Ana", "ES").
			AddRow("bob@example.com", "Bob", "EN"))
	got, err := repo.ListContacts(context.Background())
	if err != nil {
		t.Fatalf("ListContacts: %v", err)
	}
	if !reflect.DeepEqual(got, contacts) {
		t.Fatalf("got %+v, want %+v", got, contacts)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUploadRepositoryReplaceContactsRollsBack(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	boom := errors.New("disk full")
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM campaign_contacts").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO campaign_contacts").WillReturnError(boom)
	mock.ExpectRollback()

	err = NewUploadRepository(db).ReplaceContacts(context.Background(), []entity.Contact{{Email: "a@example.com", Name: "A", Language: "EN"}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped insert error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUploadRepositoryBatchesLargeContactLists(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	contacts := make([]entity.Contact, contactBatchSize+1)
	for i := range contacts {
		contacts[i] = entity.Contact{Email: "a@example.com", Name: "A", Language: "EN"}
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM campaign_contacts").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO campaign_contacts").WillReturnResult(sqlmock.NewResult(0, contactBatchSize))
	mock.ExpectExec("INSERT INTO campaign_contacts").
		WithArgs(contactBatchSize, "a@example.com", "A", "EN").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := NewUploadRepository(db).ReplaceContacts(context.Background(), contacts); err != nil {
		t.Fatalf("ReplaceContacts: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUploadRepositoryTemplates(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewUploadRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM campaign_templates").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO campaign_templates").WithArgs("EN", "Hi [NAME]").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO campaign_templates").WithArgs("ES", "Hola [NAME]").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	if err := repo.SaveTemplates(context.Background(), entity.TemplateSet{"ES": "Hola [NAME]", "EN": "Hi [NAME]"}); err != nil {
		t.Fatalf("SaveTemplates: %v", err)
	}

	mock.ExpectQuery("SELECT language, body").
		WillReturnRows(sqlmock.NewRows([]string{"language", "body"}).AddRow("EN", "Hi [NAME]"))
	got, err := repo.LoadTemplates(context.Background())
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	if !reflect.DeepEqual(got, entity.TemplateSet{"EN": "Hi [NAME]"}) {
		t.Fatalf("unexpected templates %v", got)
	}

	mock.ExpectQuery("SELECT language, body").WillReturnRows(sqlmock.NewRows([]string{"language", "body"}))
	got, err = repo.LoadTemplates(context.Background())
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	if !reflect.DeepEqual(got, entity.DefaultTemplates()) {
		t.Fatalf("expected defaults, got %v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUploadRepositoryAttachments(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	repo := NewUploadRepository(db)
	a := entity.Attachment{Name: "brochure.pdf", ContentType: "application/pdf", Data: []byte("pdf")}

	mock.ExpectExec("INSERT INTO campaign_attachments").
		WithArgs("brochure.pdf", "application/pdf", []byte("pdf")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	if err := repo.SaveAttachment(context.Background(), a); err != nil {
		t.Fatalf("SaveAttachment: %v", err)
	}

	mock.ExpectQuery("SELECT name, content_type, data").
		WillReturnRows(sqlmock.NewRows([]string{"name", "content_type", "data"}).AddRow("brochure.pdf", "application/pdf", []byte("pdf")))
	got, err := repo.ListAttachments(context.Background())
	if err != nil {
		t.Fatalf("ListAttachments: %v", err)
	}
	if len(got) != 1 || !reflect.DeepEqual(got[0], a) {
		t.Fatalf("unexpected attachments %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
