// Package files persists file metadata rows. The symmetric key never reaches
// this layer; only its commitment is stored.
package files

import (
	"context"

	"github.com/securechain/securechain/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, rec *models.FileRecord) error
	SetTxHash(ctx context.Context, fileID, txHash string) error
	GetByID(ctx context.Context, fileID string) (*models.FileRecord, error)
	ListByRecipient(ctx context.Context, wallet string) ([]*models.FileRecord, error)
	ListBySender(ctx context.Context, wallet string) ([]*models.FileRecord, error)
}
