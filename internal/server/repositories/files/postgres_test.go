package files

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/securechain/securechain/internal/common"
	"github.com/securechain/securechain/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func fileColumns() []string {
	return []string{"file_id", "file_name", "file_url", "storage_key", "sender",
		"recipient", "key_commitment", "algorithm", "unlock_time", "tx_hash", "created_at"}
}

func sampleRecord() *models.FileRecord {
	return &models.FileRecord{
		FileID:        "0xabc",
		FileName:      "report.pdf.enc",
		FileURL:       "http://127.0.0.1:9000/vault/files/2026/1/2/x",
		StorageKey:    "files/2026/1/2/x",
		Sender:        "0xSENDER",
		Recipient:     "0xRCPT",
		KeyCommitment: "deadbeef",
		Algorithm:     "aes-256-gcm",
		UnlockTime:    time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rec := sampleRecord()
	mock.ExpectExec(`(?s)INSERT\s+INTO\s+files`).
		WithArgs(rec.FileID, rec.FileName, rec.FileURL, rec.StorageKey, rec.Sender,
			rec.Recipient, rec.KeyCommitment, rec.Algorithm, rec.UnlockTime).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestCreate_DuplicateID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+files`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Create(context.Background(), sampleRecord())
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("expected ErrorAlreadyExists, got %v", err)
	}
}

func TestSetTxHash(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)UPDATE\s+files\s+SET\s+tx_hash=\$2\s+WHERE\s+file_id=\$1`).
		WithArgs("0xabc", "0xtx").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetTxHash(context.Background(), "0xabc", "0xtx"); err != nil {
		t.Fatalf("SetTxHash error: %v", err)
	}
}

func TestSetTxHash_NoMatchingRowIsFine(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)UPDATE\s+files\s+SET\s+tx_hash=\$2\s+WHERE\s+file_id=\$1`).
		WithArgs("0xelsewhere", "0xtx").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.SetTxHash(context.Background(), "0xelsewhere", "0xtx"); err != nil {
		t.Fatalf("SetTxHash error: %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rec := sampleRecord()
	rows := sqlmock.NewRows(fileColumns()).
		AddRow(rec.FileID, rec.FileName, rec.FileURL, rec.StorageKey, rec.Sender,
			rec.Recipient, rec.KeyCommitment, rec.Algorithm, rec.UnlockTime, "", time.Now())
	mock.ExpectQuery(`(?s)SELECT\s+.*FROM\s+files\s+WHERE\s+file_id=\$1`).
		WithArgs("0xabc").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "0xabc")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Recipient != "0xRCPT" || got.KeyCommitment != "deadbeef" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT\s+.*FROM\s+files\s+WHERE\s+file_id=\$1`).
		WithArgs("0xghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "0xghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestListByRecipient(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rec := sampleRecord()
	rows := sqlmock.NewRows(fileColumns()).
		AddRow("0x1", rec.FileName, rec.FileURL, rec.StorageKey, rec.Sender,
			rec.Recipient, rec.KeyCommitment, rec.Algorithm, rec.UnlockTime, "", time.Now()).
		AddRow("0x2", rec.FileName, rec.FileURL, rec.StorageKey, rec.Sender,
			rec.Recipient, rec.KeyCommitment, rec.Algorithm, rec.UnlockTime, "", time.Now())
	mock.ExpectQuery(`(?s)SELECT\s+.*FROM\s+files\s+WHERE\s+recipient=\$1\s+ORDER\s+BY\s+created_at\s+DESC`).
		WithArgs("0xRCPT").
		WillReturnRows(rows)

	got, err := repo.ListByRecipient(context.Background(), "0xRCPT")
	if err != nil {
		t.Fatalf("ListByRecipient error: %v", err)
	}
	if len(got) != 2 || got[0].FileID != "0x1" || got[1].FileID != "0x2" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestListBySender_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT\s+.*FROM\s+files\s+WHERE\s+sender=\$1`).
		WithArgs("0xNOBODY").
		WillReturnRows(sqlmock.NewRows(fileColumns()))

	got, err := repo.ListBySender(context.Background(), "0xNOBODY")
	if err != nil {
		t.Fatalf("ListBySender error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}
