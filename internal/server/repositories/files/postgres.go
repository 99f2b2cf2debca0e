package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/securechain/securechain/internal/common"
	"github.com/securechain/securechain/internal/dbx"
	"github.com/securechain/securechain/internal/server/models"
)

const selectColumns = `file_id, file_name, file_url, storage_key, sender, recipient, key_commitment, algorithm, unlock_time, tx_hash, created_at`

// PostgresRepository implements file-record storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new file record. file_id is immutable: a second insert
// with the same id fails, it never overwrites.
func (r *PostgresRepository) Create(ctx context.Context, rec *models.FileRecord) error {
	query := `
		INSERT INTO files (file_id, file_name, file_url, storage_key, sender, recipient, key_commitment, algorithm, unlock_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.FileID, rec.FileName, rec.FileURL, rec.StorageKey, rec.Sender,
		rec.Recipient, rec.KeyCommitment, rec.Algorithm, rec.UnlockTime)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SetTxHash stamps the ledger transaction hash onto the metadata row once a
// binding reaches finality. A fileId bound without a local upload has no row
// to stamp; zero updated rows is not an error.
func (r *PostgresRepository) SetTxHash(ctx context.Context, fileID, txHash string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE files SET tx_hash=$2 WHERE file_id=$1`, fileID, txHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, fileID string) (*models.FileRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM files WHERE file_id=$1`

	rec := &models.FileRecord{}
	err := r.db.QueryRowContext(ctx, query, fileID).Scan(
		&rec.FileID, &rec.FileName, &rec.FileURL, &rec.StorageKey, &rec.Sender,
		&rec.Recipient, &rec.KeyCommitment, &rec.Algorithm, &rec.UnlockTime,
		&rec.TxHash, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select file: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) ListByRecipient(ctx context.Context, wallet string) ([]*models.FileRecord, error) {
	return r.list(ctx, `recipient`, wallet)
}

func (r *PostgresRepository) ListBySender(ctx context.Context, wallet string) ([]*models.FileRecord, error) {
	return r.list(ctx, `sender`, wallet)
}

func (r *PostgresRepository) list(ctx context.Context, column, wallet string) ([]*models.FileRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM files WHERE ` + column + `=$1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.FileRecord
	for rows.Next() {
		var rec models.FileRecord
		if err := rows.Scan(
			&rec.FileID, &rec.FileName, &rec.FileURL, &rec.StorageKey, &rec.Sender,
			&rec.Recipient, &rec.KeyCommitment, &rec.Algorithm, &rec.UnlockTime,
			&rec.TxHash, &rec.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
