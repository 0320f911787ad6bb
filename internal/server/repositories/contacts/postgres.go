// Package contacts stores contacts and the signup token materialised on them.
package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authsignup/internal/common"
	"github.com/dmitrijs2005/authsignup/internal/dbx"
	"github.com/dmitrijs2005/authsignup/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO contacts (id, name)
         VALUES ($1, $2)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query, contact.ID, contact.Name).Scan(&contact.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return contact, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Contact, error) {
	query :=
		`SELECT id, name, signup_token, signup_expiration, created_at FROM contacts
		 WHERE id = $1
		 `

	return scanContact(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) FindBySignupToken(ctx context.Context, token string) (*models.Contact, error) {
	query :=
		`SELECT id, name, signup_token, signup_expiration, created_at FROM contacts
		 WHERE signup_token = $1
		 ORDER BY created_at
		 LIMIT 1
		 `

	return scanContact(r.db.QueryRowContext(ctx, query, token))
}

func (r *PostgresRepository) SetSignupToken(ctx context.Context, id string, token string, expiration *time.Time) error {
	query :=
		`UPDATE contacts SET signup_token = $2, signup_expiration = $3
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, token, expiration)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("signup token: %w", common.ErrorAlreadyExists)
		}
		return fmt.Errorf("db error: %w", err)
	}

	return requireAffected(res)
}

func (r *PostgresRepository) ClearSignupToken(ctx context.Context, id string) error {
	query :=
		`UPDATE contacts SET signup_token = NULL, signup_expiration = NULL
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return requireAffected(res)
}

func scanContact(row *sql.Row) (*models.Contact, error) {
	var (
		c          models.Contact
		token      sql.NullString
		expiration sql.NullTime
	)

	err := row.Scan(&c.ID, &c.Name, &token, &expiration, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	c.SignupToken = token.String
	if expiration.Valid {
		exp := expiration.Time
		c.SignupExpiration = &exp
	}

	return &c, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
