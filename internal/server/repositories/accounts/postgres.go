// Package accounts stores login accounts and clones new ones from templates.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authsignup/internal/common"
	"github.com/dmitrijs2005/authsignup/internal/dbx"
	"github.com/dmitrijs2005/authsignup/internal/server/models"
	"github.com/google/uuid"
)

const accountColumns = `id, contact_id, login, name, email, password_hash, role, active, is_template, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, v models.AccountValues, privilege models.Privilege) (*models.Account, error) {
	if privilege != models.PrivilegeSuperuser {
		return nil, fmt.Errorf("create account as %s: %w", privilege, common.ErrorUnauthorized)
	}

	query :=
		`INSERT INTO accounts (id, contact_id, login, name, email, password_hash, role, active)
         VALUES ($1, $2, $3, $4, $5, $6, COALESCE(NULLIF($7, ''), 'user'), $8)
		 RETURNING ` + accountColumns

	row := r.db.QueryRowContext(ctx, query,
		uuid.NewString(), nullString(v.ContactID), v.Login, v.Name, v.Email, v.PasswordHash, v.Role, v.Active)

	return scanInsert(row)
}

func (r *PostgresRepository) Copy(ctx context.Context, templateID string, v models.AccountValues, privilege models.Privilege) (*models.Account, error) {
	if privilege != models.PrivilegeSuperuser {
		return nil, fmt.Errorf("copy account as %s: %w", privilege, common.ErrorUnauthorized)
	}
	if _, err := uuid.Parse(templateID); err != nil {
		return nil, fmt.Errorf("template account %q: %w", templateID, common.ErrorNotFound)
	}

	query :=
		`INSERT INTO accounts (id, contact_id, login, name, email, password_hash, role, active, is_template)
         SELECT $1::uuid, $2::uuid, $3::text,
                COALESCE(NULLIF($4::text, ''), t.name),
                COALESCE(NULLIF($5::text, ''), t.email),
                $6::text,
                COALESCE(NULLIF($7::text, ''), t.role),
                $8::boolean,
                FALSE
         FROM accounts t
         WHERE t.id = $9::uuid
		 RETURNING ` + accountColumns

	row := r.db.QueryRowContext(ctx, query,
		uuid.NewString(), nullString(v.ContactID), v.Login, v.Name, v.Email, v.PasswordHash, v.Role, v.Active, templateID)

	return scanInsert(row)
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		 WHERE id = $1
		 `
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		 WHERE login = $1
		 `
	return scanAccount(r.db.QueryRowContext(ctx, query, login))
}

func (r *PostgresRepository) GetByContactID(ctx context.Context, contactID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		 WHERE contact_id = $1
		 ORDER BY created_at
		 LIMIT 1
		 `
	return scanAccount(r.db.QueryRowContext(ctx, query, contactID))
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query :=
		`UPDATE accounts SET password_hash = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// scanInsert scans the row returned by an INSERT ... RETURNING and maps a
// login collision to common.ErrorAlreadyExists.
func scanInsert(row *sql.Row) (*models.Account, error) {
	a, err := scanAccount(row)
	if err != nil && dbx.IsUniqueViolation(err) {
		return nil, fmt.Errorf("account login: %w", common.ErrorAlreadyExists)
	}
	return a, err
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var (
		a         models.Account
		contactID sql.NullString
	)

	err := row.Scan(&a.ID, &contactID, &a.Login, &a.Name, &a.Email, &a.PasswordHash,
		&a.Role, &a.Active, &a.IsTemplate, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	a.ContactID = contactID.String

	return &a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
