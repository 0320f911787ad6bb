package contacts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authsignup/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	Get(ctx context.Context, id string) (*models.Contact, error)

	// FindBySignupToken returns the first contact whose token equals token,
	// or common.ErrorNotFound.
	FindBySignupToken(ctx context.Context, token string) (*models.Contact, error)

	// SetSignupToken overwrites the contact's token and expiration. A nil
	// expiration stores a token that never expires.
	SetSignupToken(ctx context.Context, id string, token string, expiration *time.Time) error
	ClearSignupToken(ctx context.Context, id string) error
}
