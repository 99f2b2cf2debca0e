package models

import "time"

// LedgerRecord is a committed chain-gateway binding. Rows are append-only:
// file_id is the primary key and duplicate submissions are rejected, never
// overwritten.
type LedgerRecord struct {
	FileID     string
	Recipient  string
	FileURL    string
	FileName   string
	UnlockTime int64 // unix seconds
	TxHash     string
	RecordedAt time.Time
}
