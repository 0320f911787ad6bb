// Package services contains server-side business logic. This file implements
// TokenManager, which issues signup tokens on contacts and resolves them back.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/authsignup/internal/common"
	"github.com/dmitrijs2005/authsignup/internal/dbx"
	"github.com/dmitrijs2005/authsignup/internal/logging"
	"github.com/dmitrijs2005/authsignup/internal/server/metrics"
	"github.com/dmitrijs2005/authsignup/internal/server/models"
	"github.com/dmitrijs2005/authsignup/internal/server/repositories/repomanager"
)

const (
	TokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	TokenLength   = 20

	maxTokenAttempts = 16
)

// TokenManager owns generation, lookup and expiration of signup tokens.
type TokenManager struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	policy      PolicySource
	logger      logging.Logger
	metrics     *metrics.Metrics

	now      func() time.Time
	newToken func() (string, error)
}

func NewTokenManager(db *sql.DB, m repomanager.RepositoryManager, policy PolicySource, logger logging.Logger, mt *metrics.Metrics) *TokenManager {
	return &TokenManager{
		db:          db,
		repomanager: m,
		policy:      policy,
		logger:      logger,
		metrics:     mt,
		now:         time.Now,
		newToken:    randomToken,
	}
}

func randomToken() (string, error) {
	return common.RandomString(TokenAlphabet, TokenLength)
}

// CreateContact registers a person that can later be invited.
func (s *TokenManager) CreateContact(ctx context.Context, name string) (*models.Contact, error) {
	if name == "" {
		return nil, fmt.Errorf("contact name: %w", common.ErrMissingField)
	}
	c, err := s.repomanager.Contacts(s.db).Create(ctx, &models.Contact{Name: name})
	if err != nil {
		return nil, fmt.Errorf("error creating contact: %w", err)
	}
	return c, nil
}

// GenerateToken stores a fresh token on the contact, replacing any previous
// one. A nil expiration yields a token that never expires.
func (s *TokenManager) GenerateToken(ctx context.Context, contactID string, expiration *time.Time) (string, error) {
	token, err := dbx.WithTxValue(ctx, s.db, dbx.ReadCommitted, func(ctx context.Context, tx dbx.DBTX) (string, error) {
		return s.generateToken(ctx, tx, contactID, expiration)
	})
	if err != nil {
		return "", err
	}
	s.metrics.TokensGenerated.Add(1)
	return token, nil
}

func (s *TokenManager) generateToken(ctx context.Context, db dbx.DBTX, contactID string, expiration *time.Time) (string, error) {
	repo := s.repomanager.Contacts(db)

	for range maxTokenAttempts {
		token, err := s.newToken()
		if err != nil {
			return "", fmt.Errorf("error generating token: %w", err)
		}

		_, err = repo.FindBySignupToken(ctx, token)
		if err == nil {
			s.logger.Warn(ctx, "signup token collision, regenerating", "contact_id", contactID)
			continue
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("error searching signup token: %w", err)
		}

		if err := repo.SetSignupToken(ctx, contactID, token, expiration); err != nil {
			return "", fmt.Errorf("error storing signup token: %w", err)
		}
		s.logger.Info(ctx, "signup token issued", "contact_id", contactID, "expires", expiration != nil)
		return token, nil
	}

	return "", common.ErrTokenSpaceExhausted
}

// RetrieveContact returns the id of the contact carrying token, or
// common.ErrorNotFound.
func (s *TokenManager) RetrieveContact(ctx context.Context, token string) (string, error) {
	c, err := s.findContact(ctx, s.db, token)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

func (s *TokenManager) findContact(ctx context.Context, db dbx.DBTX, token string) (*models.Contact, error) {
	if token == "" {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Contacts(db).FindBySignupToken(ctx, token)
}

// IsExpired reports whether the contact's token has reached its expiration.
// Tokens without expiration never expire.
func (s *TokenManager) IsExpired(c *models.Contact) bool {
	return c.SignupExpiration != nil && !c.SignupExpiration.After(s.now())
}

// GetSignupURL returns the signup deep link for the contact. A contact
// without a token gets one (with no expiration) first, so this call may write.
func (s *TokenManager) GetSignupURL(ctx context.Context, contactID string) (string, error) {
	var issued bool
	token, err := dbx.WithTxValue(ctx, s.db, dbx.ReadCommitted, func(ctx context.Context, tx dbx.DBTX) (string, error) {
		c, err := s.repomanager.Contacts(tx).Get(ctx, contactID)
		if err != nil {
			return "", fmt.Errorf("error loading contact: %w", err)
		}
		if c.HasToken() {
			return c.SignupToken, nil
		}
		issued = true
		return s.generateToken(ctx, tx, contactID, nil)
	})
	if err != nil {
		return "", err
	}
	if issued {
		s.metrics.TokensGenerated.Add(1)
	}

	p := s.policy.Current()
	return SignupURL(p.BaseURL, p.TenantID, token)
}

// SignupURL joins "/login" onto baseURL and appends the tenant and token as
// "?db={tenant}#action=signup&token={token}". Values are inserted verbatim.
func SignupURL(baseURL, tenantID, token string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	login := base.ResolveReference(&url.URL{Path: "/login"})
	return fmt.Sprintf("%s?db=%s#action=signup&token=%s", login.String(), tenantID, token), nil
}
