// Package ledgerrecords persists the append-only chain-gateway bindings.
package ledgerrecords

import (
	"context"

	"github.com/securechain/securechain/internal/server/models"
)

type Repository interface {
	// Create appends a record. A record with the same file_id already on the
	// ledger fails with common.ErrDuplicateRecord; existing bindings are
	// never overwritten.
	Create(ctx context.Context, rec *models.LedgerRecord) error
	GetByFileID(ctx context.Context, fileID string) (*models.LedgerRecord, error)
}
