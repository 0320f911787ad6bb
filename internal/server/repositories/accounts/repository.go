package accounts

import (
	"context"

	"github.com/dmitrijs2005/authsignup/internal/server/models"
)

type Repository interface {
	// Create inserts a new account built from values. It requires
	// models.PrivilegeSuperuser.
	Create(ctx context.Context, values models.AccountValues, privilege models.Privilege) (*models.Account, error)

	// Copy clones the template account templateID, applying values as
	// overrides. It requires models.PrivilegeSuperuser and returns
	// common.ErrorNotFound when the template does not exist.
	Copy(ctx context.Context, templateID string, values models.AccountValues, privilege models.Privilege) (*models.Account, error)

	Get(ctx context.Context, id string) (*models.Account, error)
	GetByLogin(ctx context.Context, login string) (*models.Account, error)
	GetByContactID(ctx context.Context, contactID string) (*models.Account, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}
