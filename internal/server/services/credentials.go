package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authsignup/internal/common"
	"github.com/dmitrijs2005/authsignup/internal/cryptox"
	"github.com/dmitrijs2005/authsignup/internal/server/repositories/repomanager"
)

// CredentialService verifies account passwords.
type CredentialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tenantID    string
}

func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager, tenantID string) *CredentialService {
	return &CredentialService{db: db, repomanager: m, tenantID: tenantID}
}

// Check returns common.ErrAccessDenied unless password matches the active
// account accountID in tenant tenantID.
func (s *CredentialService) Check(ctx context.Context, tenantID, accountID, password string) error {
	if tenantID != s.tenantID {
		return common.ErrAccessDenied
	}

	acc, err := s.repomanager.Accounts(s.db).Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrAccessDenied
		}
		return fmt.Errorf("error loading account: %w", err)
	}
	if !acc.Active {
		return common.ErrAccessDenied
	}

	ok, err := cryptox.VerifyPassword(acc.PasswordHash, password)
	if err != nil || !ok {
		return common.ErrAccessDenied
	}
	return nil
}
