package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/authsignup/internal/dbx"
	"github.com/dmitrijs2005/authsignup/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/authsignup/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/authsignup/internal/server/repositories/parameters"
)

// RepositoryManager binds repositories to either the pool or a transaction,
// so services can compose several writes in one dbx.WithTx call.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Contacts(db dbx.DBTX) contacts.Repository
	Accounts(db dbx.DBTX) accounts.Repository
	Parameters(db dbx.DBTX) parameters.Repository
}
