package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authsignup/internal/common"
	"github.com/dmitrijs2005/authsignup/internal/cryptox"
	"github.com/dmitrijs2005/authsignup/internal/dbx"
	"github.com/dmitrijs2005/authsignup/internal/logging"
	"github.com/dmitrijs2005/authsignup/internal/server/metrics"
	"github.com/dmitrijs2005/authsignup/internal/server/models"
	"github.com/dmitrijs2005/authsignup/internal/server/repositories/repomanager"
)

// SignupValues is what a visitor submits. Name is only required when no
// token is supplied.
type SignupValues struct {
	Login    string
	Password string
	Name     string
}

// SignupResult is returned by every successful signup.
type SignupResult struct {
	TenantID string
	Login    string
	Password string
}

type SignupService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *TokenManager
	credentials *CredentialService
	policy      PolicySource
	logger      logging.Logger
	metrics     *metrics.Metrics

	hashPassword func(string) (string, error)
}

func NewSignupService(db *sql.DB, m repomanager.RepositoryManager, tokens *TokenManager,
	credentials *CredentialService, policy PolicySource, logger logging.Logger, mt *metrics.Metrics) *SignupService {
	return &SignupService{
		db:           db,
		repomanager:  m,
		tokens:       tokens,
		credentials:  credentials,
		policy:       policy,
		logger:       logger,
		metrics:      mt,
		hashPassword: cryptox.HashPassword,
	}
}

func (s *SignupService) result(p Policy, login, password string) *SignupResult {
	return &SignupResult{TenantID: p.TenantID, Login: login, Password: password}
}

func (s *SignupService) completed(ctx context.Context, branch, accountID string, args ...any) {
	s.logger.Info(ctx, "signup completed", append([]any{"branch", branch, "account_id", accountID}, args...)...)
	s.metrics.Signups.With("branch", branch).Add(1)
}

var failureReasons = []struct {
	err    error
	reason string
}{
	{common.ErrInvalidToken, "invalid_token"},
	{common.ErrTokenExpired, "token_expired"},
	{common.ErrSignupNotAllowed, "not_allowed"},
	{common.ErrMissingTemplate, "missing_template"},
	{common.ErrAccessDenied, "access_denied"},
	{common.ErrMissingField, "missing_field"},
}

// failed counts a rejected signup and returns err.
func (s *SignupService) failed(err error) error {
	reason := "internal"
	for _, r := range failureReasons {
		if errors.Is(err, r.err) {
			reason = r.reason
			break
		}
	}
	s.metrics.SignupFailures.With("reason", reason).Add(1)
	return err
}

// Signup either activates an invited contact, resets the password of the
// contact's existing account, or creates an uninvited account, depending on
// token and the state of the contact it resolves to. Everything runs in one
// transaction.
func (s *SignupService) Signup(ctx context.Context, v SignupValues, token string) (*SignupResult, error) {
	if v.Login == "" || v.Password == "" {
		return nil, s.failed(fmt.Errorf("signup needs login and password: %w", common.ErrMissingField))
	}
	if token == "" && v.Name == "" {
		return nil, s.failed(fmt.Errorf("signup without token needs a name: %w", common.ErrMissingField))
	}

	hash, err := s.hashPassword(v.Password)
	if err != nil {
		return nil, s.failed(fmt.Errorf("error hashing password: %w", err))
	}

	p := s.policy.Current()

	var branch, accountID string
	err = dbx.WithTx(ctx, s.db, dbx.ReadCommitted, func(ctx context.Context, tx dbx.DBTX) error {
		if token != "" {
			var err error
			branch, accountID, err = s.signupWithToken(ctx, tx, p, v, hash, token)
			return err
		}

		acc, err := s.createAccount(ctx, tx, p, models.AccountValues{
			Name:         v.Name,
			Login:        v.Login,
			Email:        v.Login,
			PasswordHash: hash,
		}, false)
		if err != nil {
			return err
		}
		branch, accountID = "uninvited", acc.ID
		return nil
	})
	if err != nil {
		return nil, s.failed(err)
	}
	s.completed(ctx, branch, accountID)

	return s.result(p, v.Login, v.Password), nil
}

func (s *SignupService) signupWithToken(ctx context.Context, tx dbx.DBTX, p Policy, v SignupValues, hash, token string) (string, string, error) {
	contact, err := s.tokens.findContact(ctx, tx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", "", common.ErrInvalidToken
		}
		return "", "", fmt.Errorf("error resolving signup token: %w", err)
	}
	if s.tokens.IsExpired(contact) {
		return "", "", common.ErrTokenExpired
	}

	contacts := s.repomanager.Contacts(tx)
	accounts := s.repomanager.Accounts(tx)

	var branch string
	acc, err := accounts.GetByContactID(ctx, contact.ID)
	switch {
	case err == nil:
		if err := accounts.UpdatePassword(ctx, acc.ID, hash); err != nil {
			return "", "", fmt.Errorf("error resetting password: %w", err)
		}
		branch = "password_reset"

	case errors.Is(err, common.ErrorNotFound):
		acc, err = s.createAccount(ctx, tx, p, models.AccountValues{
			ContactID:    contact.ID,
			Name:         contact.Name,
			Login:        v.Login,
			Email:        v.Login,
			PasswordHash: hash,
		}, true)
		if err != nil {
			return "", "", err
		}
		branch = "activation"

	default:
		return "", "", fmt.Errorf("error loading contact account: %w", err)
	}

	if err := contacts.ClearSignupToken(ctx, contact.ID); err != nil {
		return "", "", fmt.Errorf("error clearing signup token: %w", err)
	}
	return branch, acc.ID, nil
}

// createAccount clones the template account. Invited signups skip the
// uninvited policy check; a missing template is always fatal here.
func (s *SignupService) createAccount(ctx context.Context, tx dbx.DBTX, p Policy, v models.AccountValues, invited bool) (*models.Account, error) {
	if !invited && !p.AllowUninvited {
		return nil, common.ErrSignupNotAllowed
	}
	if p.TemplateAccountID == "" {
		return nil, common.ErrMissingTemplate
	}
	v.Active = true

	if v.ContactID == "" {
		c, err := s.repomanager.Contacts(tx).Create(ctx, &models.Contact{Name: v.Name})
		if err != nil {
			return nil, fmt.Errorf("error creating contact: %w", err)
		}
		v.ContactID = c.ID
	}

	acc, err := s.repomanager.Accounts(tx).Copy(ctx, p.TemplateAccountID, v, models.PrivilegeSuperuser)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("template account %s: %w", p.TemplateAccountID, common.ErrMissingTemplate)
		}
		return nil, fmt.Errorf("error copying template account: %w", err)
	}
	return acc, nil
}

// AuthSignup signs a login up unless it already exists. For an existing login
// the password is checked and the call succeeds without writing anything; a
// mismatch is returned unchanged. New logins are cloned from the template, or
// created directly when no template is configured.
func (s *SignupService) AuthSignup(ctx context.Context, name, login, password string) (*SignupResult, error) {
	if login == "" || password == "" {
		return nil, s.failed(fmt.Errorf("auth signup needs login and password: %w", common.ErrMissingField))
	}

	p := s.policy.Current()

	acc, err := s.repomanager.Accounts(s.db).GetByLogin(ctx, login)
	if err == nil {
		if err := s.credentials.Check(ctx, p.TenantID, acc.ID, password); err != nil {
			return nil, s.failed(err)
		}
		s.completed(ctx, "existing_login", acc.ID)
		return s.result(p, login, password), nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, s.failed(fmt.Errorf("error searching login: %w", err))
	}

	if name == "" {
		name = login
	}
	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, s.failed(fmt.Errorf("error hashing password: %w", err))
	}

	err = dbx.WithTx(ctx, s.db, dbx.ReadCommitted, func(ctx context.Context, tx dbx.DBTX) error {
		c, err := s.repomanager.Contacts(tx).Create(ctx, &models.Contact{Name: name})
		if err != nil {
			return fmt.Errorf("error creating contact: %w", err)
		}

		v := models.AccountValues{
			ContactID:    c.ID,
			Name:         name,
			Login:        login,
			Email:        login,
			PasswordHash: hash,
			Active:       true,
		}

		accounts := s.repomanager.Accounts(tx)
		if p.TemplateAccountID != "" {
			acc, err = accounts.Copy(ctx, p.TemplateAccountID, v, models.PrivilegeSuperuser)
		} else {
			acc, err = accounts.Create(ctx, v, models.PrivilegeSuperuser)
		}
		if err != nil {
			return fmt.Errorf("error creating account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.failed(err)
	}

	s.completed(ctx, "new_login", acc.ID, "from_template", p.TemplateAccountID != "")
	return s.result(p, login, password), nil
}
