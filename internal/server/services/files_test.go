package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/securechain/securechain/internal/common"
	"github.com/securechain/securechain/internal/cryptox"
	"github.com/securechain/securechain/internal/dbx"
	"github.com/securechain/securechain/internal/ledger"
	"github.com/securechain/securechain/internal/server/models"
	"github.com/securechain/securechain/internal/server/repositories/files"
	"github.com/securechain/securechain/internal/server/repositories/ledgerrecords"
	"github.com/securechain/securechain/internal/server/repositories/notifications"
	"github.com/securechain/securechain/internal/server/repositories/repomanager"
	"github.com/securechain/securechain/internal/server/repositories/users"
)

// -------- test fakes --------

type fakeUsersRepo struct {
	users.Repository
	byUsername map[string]*models.User
	byWallet   map[string]*models.User
	byID       map[string]*models.User
	createErr  error
	created    []*models.User
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, u)
	return nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if u, ok := f.byUsername[username]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByWalletAddress(ctx context.Context, wallet string) (*models.User, error) {
	if u, ok := f.byWallet[wallet]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type fakeFilesRepo struct {
	files.Repository
	byID      map[string]*models.FileRecord
	createErr error
	created   []*models.FileRecord
}

func (f *fakeFilesRepo) Create(ctx context.Context, rec *models.FileRecord) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, rec)
	return nil
}

func (f *fakeFilesRepo) SetTxHash(ctx context.Context, fileID, txHash string) error {
	if rec, ok := f.byID[fileID]; ok {
		rec.TxHash = txHash
	}
	return nil
}

func (f *fakeFilesRepo) GetByID(ctx context.Context, fileID string) (*models.FileRecord, error) {
	if rec, ok := f.byID[fileID]; ok {
		return rec, nil
	}
	return nil, common.ErrorNotFound
}

type fakeLedgerRepo struct {
	ledgerrecords.Repository
	byFileID map[string]*models.LedgerRecord
	created  []*models.LedgerRecord
}

func (f *fakeLedgerRepo) Create(ctx context.Context, rec *models.LedgerRecord) error {
	if _, ok := f.byFileID[rec.FileID]; ok {
		return common.ErrDuplicateRecord
	}
	if f.byFileID == nil {
		f.byFileID = map[string]*models.LedgerRecord{}
	}
	f.byFileID[rec.FileID] = rec
	f.created = append(f.created, rec)
	return nil
}

func (f *fakeLedgerRepo) GetByFileID(ctx context.Context, fileID string) (*models.LedgerRecord, error) {
	if rec, ok := f.byFileID[fileID]; ok {
		return rec, nil
	}
	return nil, common.ErrorNotFound
}

type fakeNotificationsRepo struct {
	notifications.Repository
	created []*models.Notification
}

func (f *fakeNotificationsRepo) Create(ctx context.Context, n *models.Notification) error {
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationsRepo) ListByRecipient(ctx context.Context, wallet string) ([]*models.Notification, error) {
	var result []*models.Notification
	for _, n := range f.created {
		if n.Recipient == wallet {
			result = append(result, n)
		}
	}
	return result, nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	u *fakeUsersRepo
	f *fakeFilesRepo
	l *fakeLedgerRepo
	n *fakeNotificationsRepo
}

func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository { return m.u }
func (m *fakeRepoManager) Files(db dbx.DBTX) files.Repository { return m.f }
func (m *fakeRepoManager) LedgerRecords(db dbx.DBTX) ledgerrecords.Repository {
	return m.l
}
func (m *fakeRepoManager) Notifications(db dbx.DBTX) notifications.Repository {
	return m.n
}

type fakeBlobStore struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeBlobStore) Put(ctx context.Context, key string, data []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = data
	return nil
}

func (f *fakeBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return data, nil
}

func (f *fakeBlobStore) URL(key string) string {
	return "http://blobs.test/vault/" + key
}

// -------- helpers --------

func newSQLMockDB(t *testing.T) *sql.DB {
	db, _ := newSQLMockPair(t)
	return db
}

// newSQLMockPair also returns the mock for services that open transactions.
func newSQLMockPair(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func testKeyAndCommitment(t *testing.T) (string, string) {
	t.Helper()
	key := cryptox.GenerateKey()
	return key.String(), cryptox.Commit(key)
}

func storedRecord(recipient, commitment string, unlockTime time.Time) *models.FileRecord {
	return &models.FileRecord{
		FileID:        "0xfile",
		FileName:      "report.pdf.enc",
		FileURL:       "http://blobs.test/vault/files/1",
		StorageKey:    "files/1",
		Sender:        "0xSENDER",
		Recipient:     recipient,
		KeyCommitment: commitment,
		Algorithm:     string(cryptox.AlgorithmAES256GCM),
		UnlockTime:    unlockTime,
	}
}

// -------- FileService --------

func TestFileService_Upload(t *testing.T) {
	filesRepo := &fakeFilesRepo{}
	blobs := &fakeBlobStore{}
	svc := NewFileService(newSQLMockDB(t), &fakeRepoManager{f: filesRepo}, blobs)

	_, commitment := testKeyAndCommitment(t)
	unlock := time.Now().Add(time.Hour)

	rec, err := svc.Upload(context.Background(), "0xSENDER", "report.pdf.enc",
		[]byte("ciphertext"), "0xRCPT", commitment, cryptox.AlgorithmAES256GCM, unlock)
	if err != nil {
		t.Fatalf("Upload error: %v", err)
	}

	if rec.FileID != ledger.DeriveFileID(rec.FileURL) {
		t.Errorf("fileId not derived from URL: %s", rec.FileID)
	}
	if len(filesRepo.created) != 1 {
		t.Fatalf("expected 1 created record, got %d", len(filesRepo.created))
	}
	if got, ok := blobs.objects[rec.StorageKey]; !ok || string(got) != "ciphertext" {
		t.Errorf("ciphertext not stored under %s", rec.StorageKey)
	}
	if filesRepo.created[0].KeyCommitment != commitment {
		t.Errorf("commitment not persisted")
	}
}

func TestFileService_VerifyKey_Success(t *testing.T) {
	keyHex, commitment := testKeyAndCommitment(t)
	rec := storedRecord("0xRCPT", commitment, time.Now().Add(time.Hour))
	svc := NewFileService(newSQLMockDB(t),
		&fakeRepoManager{f: &fakeFilesRepo{byID: map[string]*models.FileRecord{rec.FileID: rec}}},
		&fakeBlobStore{})

	got, err := svc.VerifyKey(context.Background(), "0xRCPT", rec.FileID, keyHex)
	if err != nil {
		t.Fatalf("VerifyKey error: %v", err)
	}
	if got.Algorithm != string(cryptox.AlgorithmAES256GCM) {
		t.Errorf("unexpected algorithm: %s", got.Algorithm)
	}
}

func TestFileService_VerifyKey_IdentityBeforeKey(t *testing.T) {
	// A wrong caller with a wrong key must see the identity error, never the
	// key error.
	_, commitment := testKeyAndCommitment(t)
	rec := storedRecord("0xRCPT", commitment, time.Now().Add(time.Hour))
	svc := NewFileService(newSQLMockDB(t),
		&fakeRepoManager{f: &fakeFilesRepo{byID: map[string]*models.FileRecord{rec.FileID: rec}}},
		&fakeBlobStore{})

	wrongKey := cryptox.GenerateKey().String()
	_, err := svc.VerifyKey(context.Background(), "0xINTRUDER", rec.FileID, wrongKey)
	if !errors.Is(err, common.ErrIdentityMismatch) {
		t.Fatalf("expected ErrIdentityMismatch, got %v", err)
	}
}

func TestFileService_VerifyKey_WrongKey(t *testing.T) {
	_, commitment := testKeyAndCommitment(t)
	rec := storedRecord("0xRCPT", commitment, time.Now().Add(time.Hour))
	svc := NewFileService(newSQLMockDB(t),
		&fakeRepoManager{f: &fakeFilesRepo{byID: map[string]*models.FileRecord{rec.FileID: rec}}},
		&fakeBlobStore{})

	wrongKey := cryptox.GenerateKey().String()
	_, err := svc.VerifyKey(context.Background(), "0xRCPT", rec.FileID, wrongKey)
	if !errors.Is(err, common.ErrKeyMismatch) {
		t.Fatalf("expected ErrKeyMismatch, got %v", err)
	}
}

func TestFileService_VerifyKey_MalformedKey(t *testing.T) {
	_, commitment := testKeyAndCommitment(t)
	rec := storedRecord("0xRCPT", commitment, time.Now().Add(time.Hour))
	svc := NewFileService(newSQLMockDB(t),
		&fakeRepoManager{f: &fakeFilesRepo{byID: map[string]*models.FileRecord{rec.FileID: rec}}},
		&fakeBlobStore{})

	_, err := svc.VerifyKey(context.Background(), "0xRCPT", rec.FileID, "not-hex")
	if !errors.Is(err, common.ErrKeyMismatch) {
		t.Fatalf("expected ErrKeyMismatch, got %v", err)
	}
}

func TestFileService_VerifyKey_UnknownFile(t *testing.T) {
	svc := NewFileService(newSQLMockDB(t),
		&fakeRepoManager{f: &fakeFilesRepo{}}, &fakeBlobStore{})

	keyHex, _ := testKeyAndCommitment(t)
	_, err := svc.VerifyKey(context.Background(), "0xRCPT", "0xghost", keyHex)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestFileService_Download_LockedEvenWithValidKey(t *testing.T) {
	keyHex, commitment := testKeyAndCommitment(t)
	rec := storedRecord("0xRCPT", commitment, time.Now().Add(time.Hour))
	svc := NewFileService(newSQLMockDB(t),
		&fakeRepoManager{f: &fakeFilesRepo{byID: map[string]*models.FileRecord{rec.FileID: rec}}},
		&fakeBlobStore{objects: map[string][]byte{rec.StorageKey: []byte("ciphertext")}})

	_, got, err := svc.Download(context.Background(), "0xRCPT", rec.FileID, keyHex)
	if !errors.Is(err, common.ErrNotYetUnlocked) {
		t.Fatalf("expected ErrNotYetUnlocked, got %v", err)
	}
	if got == nil || !got.UnlockTime.Equal(rec.UnlockTime) {
		t.Fatalf("expected record with unlock time alongside the error")
	}
}

func TestFileService_Download_Unlocked(t *testing.T) {
	keyHex, commitment := testKeyAndCommitment(t)
	rec := storedRecord("0xRCPT", commitment, time.Now().Add(-time.Minute))
	svc := NewFileService(newSQLMockDB(t),
		&fakeRepoManager{f: &fakeFilesRepo{byID: map[string]*models.FileRecord{rec.FileID: rec}}},
		&fakeBlobStore{objects: map[string][]byte{rec.StorageKey: []byte("ciphertext")}})

	data, _, err := svc.Download(context.Background(), "0xRCPT", rec.FileID, keyHex)
	if err != nil {
		t.Fatalf("Download error: %v", err)
	}
	if string(data) != "ciphertext" {
		t.Errorf("unexpected payload: %q", data)
	}
}
