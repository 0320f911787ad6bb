package parameters

import (
	"context"

	"github.com/dmitrijs2005/authsignup/internal/server/models"
)

type Repository interface {
	// Get returns the stored value or common.ErrorNotFound.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	List(ctx context.Context) ([]models.Parameter, error)
}
