// Package repomanager wires concrete repository implementations to database
// handles. Services ask the manager for a repository bound to either the
// shared *sql.DB or a transaction handle.
package repomanager

import (
	"github.com/securechain/securechain/internal/dbx"
	"github.com/securechain/securechain/internal/server/repositories/files"
	"github.com/securechain/securechain/internal/server/repositories/ledgerrecords"
	"github.com/securechain/securechain/internal/server/repositories/notifications"
	"github.com/securechain/securechain/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Files(db dbx.DBTX) files.Repository
	LedgerRecords(db dbx.DBTX) ledgerrecords.Repository
	Notifications(db dbx.DBTX) notifications.Repository
}
