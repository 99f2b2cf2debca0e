package ledgerrecords

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/securechain/securechain/internal/common"
	"github.com/securechain/securechain/internal/dbx"
	"github.com/securechain/securechain/internal/server/models"
)

// PostgresRepository implements append-only ledger storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create appends the record. ON CONFLICT DO NOTHING keeps the existing
// binding untouched; zero affected rows therefore means a duplicate file_id.
func (r *PostgresRepository) Create(ctx context.Context, rec *models.LedgerRecord) error {
	query := `
		INSERT INTO ledger_records (file_id, recipient, file_url, file_name, unlock_time, tx_hash, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (file_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		rec.FileID, rec.Recipient, rec.FileURL, rec.FileName, rec.UnlockTime, rec.TxHash, rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrDuplicateRecord
	}
	return nil
}

func (r *PostgresRepository) GetByFileID(ctx context.Context, fileID string) (*models.LedgerRecord, error) {
	query := `
		SELECT file_id, recipient, file_url, file_name, unlock_time, tx_hash, recorded_at
		FROM ledger_records WHERE file_id=$1
	`

	rec := &models.LedgerRecord{}
	err := r.db.QueryRowContext(ctx, query, fileID).Scan(
		&rec.FileID, &rec.Recipient, &rec.FileURL, &rec.FileName, &rec.UnlockTime, &rec.TxHash, &rec.RecordedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select ledger record: %w", err)
	}
	return rec, nil
}
