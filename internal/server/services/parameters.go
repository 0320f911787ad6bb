package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/authsignup/internal/common"
	"github.com/dmitrijs2005/authsignup/internal/server/config"
	"github.com/dmitrijs2005/authsignup/internal/server/models"
	"github.com/dmitrijs2005/authsignup/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ParameterService reads and writes the process-wide parameters table and
// keeps the signup policy derived from it.
type ParameterService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *config.Config

	// writeMu serialises SetParam so the reload that follows a write never
	// races an older one.
	writeMu sync.Mutex

	mu     sync.RWMutex
	policy Policy
}

// NewParameterService starts with the policy taken from cfg alone; call
// Reload to apply stored parameters.
func NewParameterService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *ParameterService {
	return &ParameterService{
		db:          db,
		repomanager: m,
		config:      cfg,
		policy: Policy{
			TenantID:          cfg.TenantID,
			BaseURL:           cfg.BaseURL,
			AllowUninvited:    cfg.AllowUninvitedSignup,
			TemplateAccountID: cfg.TemplateAccountID,
		},
	}
}

// GetParam returns the stored value of key, or def when key is not set.
func (s *ParameterService) GetParam(ctx context.Context, key, def string) (string, error) {
	v, err := s.repomanager.Parameters(s.db).Get(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return def, nil
		}
		return "", fmt.Errorf("error reading parameter %s: %w", key, err)
	}
	return v, nil
}

// SetParam validates and stores value under key, then reloads the policy.
func (s *ParameterService) SetParam(ctx context.Context, key, value string) error {
	if err := validateParam(key, value); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repomanager.Parameters(s.db).Set(ctx, key, value); err != nil {
		return fmt.Errorf("error storing parameter %s: %w", key, err)
	}
	if _, err := s.Reload(ctx); err != nil {
		return err
	}
	return nil
}

func (s *ParameterService) List(ctx context.Context) ([]models.Parameter, error) {
	return s.repomanager.Parameters(s.db).List(ctx)
}

// Current returns the policy as of the last successful Reload.
func (s *ParameterService) Current() Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

// Reload resolves the signup policy from stored parameters, falling back to
// the config for anything that is not stored. The current policy is kept
// when loading fails.
func (s *ParameterService) Reload(ctx context.Context) (Policy, error) {
	p := Policy{TenantID: s.config.TenantID}

	var err error
	if p.BaseURL, err = s.GetParam(ctx, models.ParamBaseURL, s.config.BaseURL); err != nil {
		return Policy{}, err
	}
	if p.TemplateAccountID, err = s.GetParam(ctx, models.ParamTemplateAccountID, s.config.TemplateAccountID); err != nil {
		return Policy{}, err
	}

	allow, err := s.GetParam(ctx, models.ParamAllowUninvited, strconv.FormatBool(s.config.AllowUninvitedSignup))
	if err != nil {
		return Policy{}, err
	}
	if p.AllowUninvited, err = strconv.ParseBool(allow); err != nil {
		return Policy{}, fmt.Errorf("parameter %s=%q: %w", models.ParamAllowUninvited, allow, err)
	}

	s.mu.Lock()
	s.policy = p
	s.mu.Unlock()

	return p, nil
}

// validateParam accepts only the keys the policy reads, with values it can
// use. An empty template id clears the template.
func validateParam(key, value string) error {
	switch key {
	case "":
		return fmt.Errorf("parameter key: %w", common.ErrMissingField)
	case models.ParamBaseURL:
		u, err := url.Parse(value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s=%q is not an absolute url: %w", key, value, common.ErrInvalidParameter)
		}
	case models.ParamAllowUninvited:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%s=%q is not a boolean: %w", key, value, common.ErrInvalidParameter)
		}
	case models.ParamTemplateAccountID:
		if value == "" {
			return nil
		}
		if _, err := uuid.Parse(value); err != nil {
			return fmt.Errorf("%s=%q is not an account id: %w", key, value, common.ErrInvalidParameter)
		}
	default:
		return fmt.Errorf("unknown parameter %q: %w", key, common.ErrInvalidParameter)
	}
	return nil
}
