// Package parameters stores process-wide key/value settings.
package parameters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authsignup/internal/common"
	"github.com/dmitrijs2005/authsignup/internal/dbx"
	"github.com/dmitrijs2005/authsignup/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, key string) (string, error) {
	query :=
		`SELECT value FROM parameters
		 WHERE key = $1
		 `

	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	return value, nil
}

func (r *PostgresRepository) Set(ctx context.Context, key, value string) error {
	query :=
		`INSERT INTO parameters (key, value)
         VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value
		 `

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Parameter, error) {
	query :=
		`SELECT key, value FROM parameters
		 ORDER BY key
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Parameter
	for rows.Next() {
		var p models.Parameter
		if err := rows.Scan(&p.Key, &p.Value); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
