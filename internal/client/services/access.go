package services

import (
	"context"
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/securechain/securechain/internal/client/api"
	"github.com/securechain/securechain/internal/client/session"
	"github.com/securechain/securechain/internal/client/unlock"
	"github.com/securechain/securechain/internal/client/verified"
	"github.com/securechain/securechain/internal/common"
	"github.com/securechain/securechain/internal/cryptox"
	"github.com/securechain/securechain/internal/filex"
	"golang.org/x/sync/singleflight"
)

// AccessService drives the recipient workflow: verify the key once, keep the
// verification cached, and download-and-decrypt when the time lock allows.
type AccessService struct {
	api          *api.Client
	store        *verified.Store
	downloadsDir string
	group        singleflight.Group
	now          func() time.Time
}

func NewAccessService(apiClient *api.Client, store *verified.Store, downloadsDir string) *AccessService {
	return &AccessService{
		api:          apiClient,
		store:        store,
		downloadsDir: downloadsDir,
		now:          time.Now,
	}
}

// Verify checks the key against the file's stored commitment. Concurrent
// calls for the same fileId are collapsed into one request; the outcome is
// cached so the recipient does not re-enter the key at download time.
func (s *AccessService) Verify(ctx context.Context, sess *session.Session, fileID, keyHex string) (*verified.Entry, error) {
	if e, ok := s.store.Get(fileID); ok && e.KeyHex == keyHex {
		return e, nil
	}

	v, err, _ := s.group.Do(fileID, func() (any, error) {
		result, err := s.api.VerifyKey(ctx, sess, fileID, keyHex)
		if err != nil {
			return nil, err
		}
		e := &verified.Entry{
			KeyHex:     keyHex,
			Algorithm:  result.Algorithm,
			UnlockTime: result.UnlockTime,
		}
		s.store.Put(fileID, e)
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*verified.Entry), nil
}

// State reports the current lock state and minutes remaining for a verified
// file, recomputed against the clock on every call.
func (s *AccessService) State(fileID string) (unlock.State, int64, error) {
	e, ok := s.store.Get(fileID)
	if !ok {
		return 0, 0, common.ErrorNotFound
	}
	now := s.now()
	return unlock.Evaluate(e.UnlockTime, now), unlock.RemainingMinutes(e.UnlockTime, now), nil
}

// Download fetches, decrypts and saves a previously verified file, returning
// the path of the saved plaintext. The time lock is checked locally first so
// an obviously locked file costs no round trip; the server enforces it again
// regardless. For the hybrid algorithm the RSA private key is required up
// front: without it the ciphertext would be fetched only to be undecryptable.
func (s *AccessService) Download(ctx context.Context, sess *session.Session, fileID string, rsaPriv *rsa.PrivateKey) (string, error) {
	e, ok := s.store.Get(fileID)
	if !ok {
		return "", fmt.Errorf("%w: file %s is not verified", common.ErrorNotFound, fileID)
	}

	if unlock.Evaluate(e.UnlockTime, s.now()) == unlock.Locked {
		return "", common.ErrNotYetUnlocked
	}

	if e.Algorithm.RequiresPrivateKey() && rsaPriv == nil {
		return "", common.ErrMissingPrivateKey
	}

	key, err := cryptox.ParseKey(e.KeyHex)
	if err != nil {
		return "", fmt.Errorf("cached key is invalid: %w", err)
	}
	defer key.Wipe()

	ciphertext, storedName, err := s.api.Download(ctx, sess, fileID, e.KeyHex)
	if err != nil {
		return "", err
	}

	plaintext, err := cryptox.Decrypt(ciphertext, key, e.Algorithm, rsaPriv)
	if err != nil {
		return "", err
	}

	dir, err := filex.EnsureSubDir(s.downloadsDir)
	if err != nil {
		return "", err
	}

	return filex.SavePlaintext(dir, storedName, plaintext)
}
