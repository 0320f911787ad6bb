package parameters

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/authsignup/internal/common"
	"github.com/dmitrijs2005/authsignup/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	qGet  = `(?s)^SELECT\s+value\s+FROM\s+parameters\s+WHERE\s+key\s*=\s*\$1\s*$`
	qSet  = `(?s)^INSERT\s+INTO\s+parameters\s*\(key,\s*value\)\s*VALUES\s*\(\$1,\s*\$2\)\s*ON\s+CONFLICT\s*\(key\)\s*DO\s+UPDATE\s+SET\s+value\s*=\s*excluded\.value\s*$`
	qList = `(?s)^SELECT\s+key,\s*value\s+FROM\s+parameters\s+ORDER\s+BY\s+key\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestGet(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qGet).WithArgs(models.ParamBaseURL).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("https://example.com"))
	mock.ExpectQuery(qGet).WithArgs("missing").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(qGet).WithArgs("broken").WillReturnError(errors.New("conn reset"))

	v, err := repo.Get(context.Background(), models.ParamBaseURL)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", v)

	_, err = repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.Get(context.Background(), "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSet(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(qSet).WithArgs(models.ParamAllowUninvited, "true").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qSet).WithArgs("k", "v").WillReturnError(errors.New("boom"))

	require.NoError(t, repo.Set(context.Background(), models.ParamAllowUninvited, "true"))
	assert.Error(t, repo.Set(context.Background(), "k", "v"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qList).WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).
		AddRow(models.ParamTemplateAccountID, "tmpl").
		AddRow(models.ParamBaseURL, "https://example.com"))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Parameter{
		{Key: models.ParamTemplateAccountID, Value: "tmpl"},
		{Key: models.ParamBaseURL, Value: "https://example.com"},
	}, got)
}

func TestList_ScanError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(qList).WillReturnRows(sqlmock.NewRows([]string{"key"}).AddRow("only-key"))

	_, err := repo.List(context.Background())
	assert.Error(t, err)
}
