package notifications

import (
	"context"
	"fmt"

	"github.com/securechain/securechain/internal/dbx"
	"github.com/securechain/securechain/internal/server/models"
)

// PostgresRepository implements notification storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient, sender, file_name, tx_hash, unlock_time, delivered)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.Recipient, n.Sender, n.FileName, n.TxHash, n.UnlockTime, n.Delivered)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByRecipient(ctx context.Context, wallet string) ([]*models.Notification, error) {
	query := `
		SELECT id, recipient, sender, file_name, tx_hash, unlock_time, delivered, created_at
		FROM notifications WHERE recipient=$1 ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to select notifications: %w", err)
	}
	defer rows.Close()

	var result []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Recipient, &n.Sender, &n.FileName, &n.TxHash, &n.UnlockTime, &n.Delivered, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
