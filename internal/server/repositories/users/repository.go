// Package users persists account rows.
package users

import (
	"context"

	"github.com/securechain/securechain/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByWalletAddress(ctx context.Context, wallet string) (*models.User, error)
}
