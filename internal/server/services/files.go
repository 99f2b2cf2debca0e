package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/securechain/securechain/internal/common"
	"github.com/securechain/securechain/internal/cryptox"
	"github.com/securechain/securechain/internal/ledger"
	"github.com/securechain/securechain/internal/server/models"
	"github.com/securechain/securechain/internal/server/repositories/repomanager"
	"github.com/securechain/securechain/internal/server/storage"
)

// FileService stores ciphertext blobs and enforces the two-gate access
// protocol on them: the caller must be the recipient, the submitted key must
// match the stored commitment, and the ciphertext is only released after the
// unlock time.
type FileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       storage.BlobStore
}

func NewFileService(db *sql.DB, m repomanager.RepositoryManager, blobs storage.BlobStore) *FileService {
	return &FileService{db: db, repomanager: m, blobs: blobs}
}

// Upload stores the ciphertext and creates the metadata row. The returned
// record carries the derived fileId and the storage URL it was derived from.
// The key never reaches the server; the caller submits its commitment.
func (s *FileService) Upload(ctx context.Context, sender, fileName string, ciphertext []byte,
	recipient, keyCommitment string, algorithm cryptox.Algorithm, unlockTime time.Time) (*models.FileRecord, error) {

	key := storage.RandomStorageKey()
	if err := s.blobs.Put(ctx, key, ciphertext); err != nil {
		return nil, fmt.Errorf("error storing ciphertext: %w", err)
	}

	fileURL := s.blobs.URL(key)
	rec := &models.FileRecord{
		FileID:        ledger.DeriveFileID(fileURL),
		FileName:      fileName,
		FileURL:       fileURL,
		StorageKey:    key,
		Sender:        sender,
		Recipient:     recipient,
		KeyCommitment: keyCommitment,
		Algorithm:     string(algorithm),
		UnlockTime:    unlockTime,
		CreatedAt:     time.Now(),
	}

	if err := s.repomanager.Files(s.db).Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("error creating file record: %w", err)
	}
	return rec, nil
}

// VerifyKey checks the caller against the stored recipient and the submitted
// key against the stored commitment. Order matters: identity is checked
// first, so a wrong caller learns nothing about key validity. On success the
// record is returned so the caller learns the algorithm and unlock time.
func (s *FileService) VerifyKey(ctx context.Context, caller, fileID, keyHex string) (*models.FileRecord, error) {
	rec, err := s.repomanager.Files(s.db).GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}

	// The record accompanies the identity error so the API layer can report
	// who the file is actually addressed to.
	if rec.Recipient != caller {
		return rec, common.ErrIdentityMismatch
	}

	key, err := cryptox.ParseKey(keyHex)
	if err != nil {
		return nil, common.ErrKeyMismatch
	}
	commitment := cryptox.Commit(key)
	key.Wipe()
	if subtle.ConstantTimeCompare([]byte(commitment), []byte(rec.KeyCommitment)) != 1 {
		return nil, common.ErrKeyMismatch
	}

	return rec, nil
}

// Download re-runs the verification gates and additionally enforces the
// unlock time; a locked file fails with ErrNotYetUnlocked no matter how
// valid the key is. On success it returns the ciphertext bytes verbatim:
// decryption is the recipient's business, not the server's.
func (s *FileService) Download(ctx context.Context, caller, fileID, keyHex string) ([]byte, *models.FileRecord, error) {
	rec, err := s.VerifyKey(ctx, caller, fileID, keyHex)
	if err != nil {
		return nil, rec, err
	}

	if time.Now().Before(rec.UnlockTime) {
		return nil, rec, common.ErrNotYetUnlocked
	}

	data, err := s.blobs.Get(ctx, rec.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading ciphertext: %w", err)
	}
	return data, rec, nil
}

// ListInbox returns files addressed to the wallet, newest first.
func (s *FileService) ListInbox(ctx context.Context, wallet string) ([]*models.FileRecord, error) {
	return s.repomanager.Files(s.db).ListByRecipient(ctx, wallet)
}

// ListSent returns files the wallet has shared, newest first.
func (s *FileService) ListSent(ctx context.Context, wallet string) ([]*models.FileRecord, error) {
	return s.repomanager.Files(s.db).ListBySender(ctx, wallet)
}
