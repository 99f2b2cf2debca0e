package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/securechain/securechain/internal/dbx"
	"github.com/securechain/securechain/internal/server/migrations"
	"github.com/securechain/securechain/internal/server/repositories/files"
	"github.com/securechain/securechain/internal/server/repositories/ledgerrecords"
	"github.com/securechain/securechain/internal/server/repositories/notifications"
	"github.com/securechain/securechain/internal/server/repositories/users"
)

// PostgresRepositoryManager hands out postgres-backed repositories.
type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Files(db dbx.DBTX) files.Repository {
	return files.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) LedgerRecords(db dbx.DBTX) ledgerrecords.Repository {
	return ledgerrecords.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Notifications(db dbx.DBTX) notifications.Repository {
	return notifications.NewPostgresRepository(db)
}

// OpenDB opens the pgx connection pool and applies embedded migrations.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return db, nil
}
