// Package services implements the client-side workflows: sharing a file
// (encrypt, upload, bind to the ledger, deliver the key) and accessing one
// (verify, gate on the time lock, download, decrypt).
package services

import (
	"context"
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/securechain/securechain/internal/client/api"
	"github.com/securechain/securechain/internal/client/session"
	"github.com/securechain/securechain/internal/common"
	"github.com/securechain/securechain/internal/cryptox"
	"github.com/securechain/securechain/internal/ledger"
	"github.com/securechain/securechain/internal/logging"
)

// ShareResult is everything the sender learns from a completed share. KeyHex
// is the one chance to capture the decryption key: it is displayed to the
// sender and handed to the notifier, then wiped.
type ShareResult struct {
	FileID     string
	FileURL    string
	FileName   string
	TxHash     string
	UnlockTime time.Time
	KeyHex     string
}

// ShareService drives the sender workflow. The ledger submission is the
// point of no return: the key is never revealed or delivered until the
// binding has reached finality.
type ShareService struct {
	api    *api.Client
	binder ledger.Binder
	logger logging.Logger
}

func NewShareService(apiClient *api.Client, binder ledger.Binder, logger logging.Logger) *ShareService {
	return &ShareService{api: apiClient, binder: binder, logger: logger}
}

// Share encrypts the plaintext under a fresh key, uploads the ciphertext,
// binds the resulting fileId on the ledger, and finally relays the key to
// the recipient. If the ledger rejects the binding the share fails as a
// whole; the uploaded ciphertext is unreachable without a ledger record and
// the key is never released.
func (s *ShareService) Share(ctx context.Context, sess *session.Session, fileName string, plaintext []byte,
	recipient string, algorithm cryptox.Algorithm, unlockTime time.Time, rsaPub *rsa.PublicKey) (*ShareResult, error) {

	key := cryptox.GenerateKey()
	defer key.Wipe()

	ciphertext, err := cryptox.Encrypt(plaintext, key, algorithm, rsaPub)
	if err != nil {
		return nil, fmt.Errorf("encrypting %s: %w", fileName, err)
	}

	storedName := fileName + common.EncryptedFileSuffix

	info, err := s.api.Upload(ctx, sess, storedName, ciphertext,
		recipient, cryptox.Commit(key), algorithm, unlockTime)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", storedName, err)
	}

	receipt, err := s.binder.Submit(ctx, ledger.Record{
		FileID:     info.FileID,
		Recipient:  recipient,
		FileURL:    info.FileURL,
		FileName:   storedName,
		UnlockTime: unlockTime.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("binding %s on the ledger: %w", info.FileID, err)
	}

	keyHex := key.String()

	// Key delivery is best-effort; the sender still sees the key and can
	// hand it over out of band.
	if err := s.api.Notify(ctx, sess, recipient, storedName, receipt.TxHash, unlockTime, keyHex); err != nil {
		s.logger.Warn(ctx, "key notification failed", "recipient", recipient, "error", err.Error())
	}

	return &ShareResult{
		FileID:     info.FileID,
		FileURL:    info.FileURL,
		FileName:   storedName,
		TxHash:     receipt.TxHash,
		UnlockTime: unlockTime,
		KeyHex:     keyHex,
	}, nil
}
