// Package models defines the persisted server-side entities.
package models

import "time"

// FileRecord is the metadata row for one uploaded ciphertext. The plaintext
// symmetric key is never part of this record; only its one-way commitment is
// stored. FileID is derived from the storage URL and immutable once created.
type FileRecord struct {
	FileID        string
	FileName      string
	FileURL       string
	StorageKey    string
	Sender        string
	Recipient     string
	KeyCommitment string
	Algorithm     string
	UnlockTime    time.Time
	TxHash        string // empty until the fileId is bound on the ledger
	CreatedAt     time.Time
}
