package models

import "time"

// Notification is the persisted trace of a key-delivery attempt. It carries
// file metadata only; the key itself is relayed to the recipient's webhook
// and never stored.
type Notification struct {
	ID         string
	Recipient  string
	Sender     string
	FileName   string
	TxHash     string
	UnlockTime time.Time
	Delivered  bool
	CreatedAt  time.Time
}
