package contacts

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/authsignup/internal/common"
	"github.com/dmitrijs2005/authsignup/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const (
	qInsert    = `(?s)^INSERT\s+INTO\s+contacts\s*\(id,\s*name\)\s*VALUES\s*\(\$1,\s*\$2\)\s*RETURNING\s+created_at\s*$`
	qGet       = `(?s)^SELECT\s+id,\s*name,\s*signup_token,\s*signup_expiration,\s*created_at\s+FROM\s+contacts\s+WHERE\s+id\s*=\s*\$1\s*$`
	qFindToken = `(?s)^SELECT\s+id,\s*name,\s*signup_token,\s*signup_expiration,\s*created_at\s+FROM\s+contacts\s+WHERE\s+signup_token\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+LIMIT\s+1\s*$`
	qSetToken  = `(?s)^UPDATE\s+contacts\s+SET\s+signup_token\s*=\s*\$2,\s*signup_expiration\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1\s*$`
	qClear     = `(?s)^UPDATE\s+contacts\s+SET\s+signup_token\s*=\s*NULL,\s*signup_expiration\s*=\s*NULL\s+WHERE\s+id\s*=\s*\$1\s*$`
)

var contactCols = []string{"id", "name", "signup_token", "signup_expiration", "created_at"}

func TestCreate_AssignsIDAndTimestamp(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(qInsert).
		WithArgs(sqlmock.AnyArg(), "Alice").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	got, err := repo.Create(context.Background(), &models.Contact{Name: "Alice"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID == "" || got.Name != "Alice" || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected contact: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_KeepsExplicitID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsert).
		WithArgs("c-1", "Bob").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	got, err := repo.Create(context.Background(), &models.Contact{ID: "c-1", Name: "Bob"})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "c-1" {
		t.Fatalf("unexpected id: %q", got.ID)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qInsert).
		WithArgs(sqlmock.AnyArg(), "Alice").
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Contact{Name: "Alice"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGet_FoundWithToken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(qGet).
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows(contactCols).AddRow("c-1", "Alice", "tok", exp, time.Now()))

	got, err := repo.Get(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.SignupToken != "tok" || got.SignupExpiration == nil || !got.SignupExpiration.Equal(exp) {
		t.Fatalf("unexpected contact: %+v", got)
	}
}

func TestGet_FoundWithoutToken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qGet).
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows(contactCols).AddRow("c-1", "Alice", nil, nil, time.Now()))

	got, err := repo.Get(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.HasToken() || got.SignupExpiration != nil {
		t.Fatalf("expected no token, got %+v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qGet).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFindBySignupToken_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qFindToken).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows(contactCols).AddRow("c-9", "Carol", "tok", nil, time.Now()))

	got, err := repo.FindBySignupToken(context.Background(), "tok")
	if err != nil {
		t.Fatalf("FindBySignupToken error: %v", err)
	}
	if got.ID != "c-9" {
		t.Fatalf("unexpected contact: %+v", got)
	}
}

func TestFindBySignupToken_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qFindToken).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindBySignupToken(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestSetSignupToken_WithAndWithoutExpiration(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(qSetToken).
		WithArgs("c-1", "tok", exp).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qSetToken).
		WithArgs("c-1", "tok2", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetSignupToken(context.Background(), "c-1", "tok", &exp); err != nil {
		t.Fatalf("SetSignupToken error: %v", err)
	}
	if err := repo.SetSignupToken(context.Background(), "c-1", "tok2", nil); err != nil {
		t.Fatalf("SetSignupToken error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetSignupToken_UnknownContact(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qSetToken).
		WithArgs("ghost", "tok", nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetSignupToken(context.Background(), "ghost", "tok", nil)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestSetSignupToken_Duplicate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qSetToken).
		WithArgs("c-1", "tok", nil).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.SetSignupToken(context.Background(), "c-1", "tok", nil)
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want common.ErrorAlreadyExists, got %v", err)
	}
}

func TestClearSignupToken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(qClear).
		WithArgs("c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(qClear).
		WithArgs("c-2").
		WillReturnError(errors.New("db err"))

	if err := repo.ClearSignupToken(context.Background(), "c-1"); err != nil {
		t.Fatalf("ClearSignupToken error: %v", err)
	}
	err := repo.ClearSignupToken(context.Background(), "c-2")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
