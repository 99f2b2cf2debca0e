// Package notifications persists key-delivery traces (metadata only, never
// the key itself).
package notifications

import (
	"context"

	"github.com/securechain/securechain/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByRecipient(ctx context.Context, wallet string) ([]*models.Notification, error)
}
