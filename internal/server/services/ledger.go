package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/securechain/securechain/internal/common"
	"github.com/securechain/securechain/internal/dbx"
	"github.com/securechain/securechain/internal/ledger"
	"github.com/securechain/securechain/internal/server/models"
	"github.com/securechain/securechain/internal/server/repositories/repomanager"
)

// LedgerService is the server side of the chain gateway. Records are
// append-only: a submission either reaches finality and gets a transaction
// hash, or is rejected. A fileId that is already bound stays bound forever.
type LedgerService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	finalityDelay time.Duration
}

func NewLedgerService(db *sql.DB, m repomanager.RepositoryManager, finalityDelay time.Duration) *LedgerService {
	return &LedgerService{db: db, repomanager: m, finalityDelay: finalityDelay}
}

// Submit waits out the finality delay, then appends the record. The caller
// blocks until the receipt exists; there is no pending state to observe.
func (s *LedgerService) Submit(ctx context.Context, rec ledger.Record) (*ledger.Receipt, error) {
	select {
	case <-time.After(s.finalityDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	nonce := common.GenerateRandByteArray(16)
	row := &models.LedgerRecord{
		FileID:     rec.FileID,
		Recipient:  rec.Recipient,
		FileURL:    rec.FileURL,
		FileName:   rec.FileName,
		UnlockTime: rec.UnlockTime,
		TxHash:     ledger.HashRecord(rec, nonce),
		RecordedAt: time.Now(),
	}

	// The binding and the tx-hash stamp on the file metadata land together
	// or not at all.
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.LedgerRecords(tx).Create(ctx, row); err != nil {
			return err
		}
		return s.repomanager.Files(tx).SetTxHash(ctx, row.FileID, row.TxHash)
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateRecord) {
			return nil, common.ErrDuplicateRecord
		}
		return nil, fmt.Errorf("%w: %v", common.ErrRejectedTransaction, err)
	}

	return &ledger.Receipt{TxHash: row.TxHash, RecordedAt: row.RecordedAt}, nil
}

// Lookup returns the binding for a fileId, or common.ErrorNotFound.
func (s *LedgerService) Lookup(ctx context.Context, fileID string) (*ledger.Record, error) {
	row, err := s.repomanager.LedgerRecords(s.db).GetByFileID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	return &ledger.Record{
		FileID:     row.FileID,
		Recipient:  row.Recipient,
		FileURL:    row.FileURL,
		FileName:   row.FileName,
		UnlockTime: row.UnlockTime,
	}, nil
}
