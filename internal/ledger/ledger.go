// Package ledger binds file records to the append-only chain gateway. A
// record ties a fileId (derived from the ciphertext's storage URL) to the
// recipient's wallet address and the unlock time. Once accepted, a binding is
// immutable and globally observable; there is no update or delete.
package ledger

import (
	"context"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/sha3"
)

// Record is the immutable on-chain binding for one uploaded file.
type Record struct {
	FileID     string `json:"fileId"`
	Recipient  string `json:"recipient"`
	FileURL    string `json:"fileUrl"`
	FileName   string `json:"fileName"`
	UnlockTime int64  `json:"unlockTime"` // unix seconds
}

// Receipt is returned once a submission reaches finality.
type Receipt struct {
	TxHash     string    `json:"txHash"`
	RecordedAt time.Time `json:"recordedAt"`
}

// Binder submits and looks up records on the ledger.
//
// Submit blocks until the record is final or definitively rejected; it is not
// a fire-and-forget call. A duplicate fileId fails with
// common.ErrDuplicateRecord and must never overwrite the existing binding.
// common.ErrRejectedTransaction is retryable by re-submitting the same
// inputs.
type Binder interface {
	Submit(ctx context.Context, rec Record) (*Receipt, error)
	Lookup(ctx context.Context, fileID string) (*Record, error)
}

// DeriveFileID derives the canonical file identifier from the ciphertext's
// storage URL: 0x-prefixed hex of keccak256(fileUrl). The URL is unique per
// upload, so the id is too.
func DeriveFileID(fileURL string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(fileURL))
	return "0x" + hex.EncodeToString(h.Sum(nil))
}

// HashRecord computes the transaction hash for an accepted record:
// 0x-prefixed keccak256 over the record fields and a submission nonce.
func HashRecord(rec Record, nonce []byte) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(rec.FileID))
	h.Write([]byte(rec.Recipient))
	h.Write([]byte(rec.FileURL))
	h.Write([]byte(rec.FileName))
	var ts [8]byte
	for i := 0; i < 8; i++ {
		ts[i] = byte(rec.UnlockTime >> (56 - 8*i))
	}
	h.Write(ts[:])
	h.Write(nonce)
	return "0x" + hex.EncodeToString(h.Sum(nil))
}
