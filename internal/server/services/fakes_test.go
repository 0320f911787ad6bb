package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/authsignup/internal/common"
	"github.com/dmitrijs2005/authsignup/internal/dbx"
	"github.com/dmitrijs2005/authsignup/internal/server/models"
	"github.com/dmitrijs2005/authsignup/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/authsignup/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/authsignup/internal/server/repositories/parameters"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// memStore backs all fake repositories. It ignores the DBTX it is bound to;
// transaction boundaries are asserted through sqlmock instead.
type memStore struct {
	seq      int
	contacts map[string]*models.Contact
	accounts map[string]*models.Account
	params   map[string]string

	findErr error
}

func newMemStore() *memStore {
	return &memStore{
		contacts: map[string]*models.Contact{},
		accounts: map[string]*models.Account{},
		params:   map[string]string{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) addContact(name, token string, exp *time.Time) *models.Contact {
	c := &models.Contact{ID: m.nextID("c"), Name: name, SignupToken: token, SignupExpiration: exp}
	m.contacts[c.ID] = c
	return c
}

func (m *memStore) addAccount(a models.Account) *models.Account {
	if a.ID == "" {
		a.ID = m.nextID("a")
	}
	m.accounts[a.ID] = &a
	return &a
}

func (m *memStore) accountsOf(contactID string) []*models.Account {
	var out []*models.Account
	for _, a := range m.accounts {
		if a.ContactID == contactID {
			out = append(out, a)
		}
	}
	return out
}

type fakeRepoManager struct{ s *memStore }

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Contacts(dbx.DBTX) contacts.Repository      { return (*fakeContacts)(f.s) }
func (f *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository      { return (*fakeAccounts)(f.s) }
func (f *fakeRepoManager) Parameters(dbx.DBTX) parameters.Repository  { return (*fakeParams)(f.s) }

// --- contacts ---

type fakeContacts memStore

func (f *fakeContacts) Create(_ context.Context, c *models.Contact) (*models.Contact, error) {
	s := (*memStore)(f)
	cp := *c
	cp.ID = s.nextID("c")
	s.contacts[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeContacts) Get(_ context.Context, id string) (*models.Contact, error) {
	c, ok := f.contacts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeContacts) FindBySignupToken(_ context.Context, token string) (*models.Contact, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, c := range f.contacts {
		if c.SignupToken == token {
			cp := *c
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeContacts) SetSignupToken(_ context.Context, id, token string, exp *time.Time) error {
	c, ok := f.contacts[id]
	if !ok {
		return common.ErrorNotFound
	}
	c.SignupToken, c.SignupExpiration = token, exp
	return nil
}

func (f *fakeContacts) ClearSignupToken(_ context.Context, id string) error {
	c, ok := f.contacts[id]
	if !ok {
		return common.ErrorNotFound
	}
	c.SignupToken, c.SignupExpiration = "", nil
	return nil
}

// --- accounts ---

type fakeAccounts memStore

func (f *fakeAccounts) insert(v models.AccountValues, role string) (*models.Account, error) {
	s := (*memStore)(f)
	for _, a := range s.accounts {
		if a.Login == v.Login {
			return nil, fmt.Errorf("account login: %w", common.ErrorAlreadyExists)
		}
	}
	return s.addAccount(models.Account{
		ContactID: v.ContactID, Login: v.Login, Name: v.Name, Email: v.Email,
		PasswordHash: v.PasswordHash, Role: role, Active: v.Active,
	}), nil
}

func (f *fakeAccounts) Create(_ context.Context, v models.AccountValues, p models.Privilege) (*models.Account, error) {
	if p != models.PrivilegeSuperuser {
		return nil, common.ErrorUnauthorized
	}
	role := v.Role
	if role == "" {
		role = "user"
	}
	return f.insert(v, role)
}

func (f *fakeAccounts) Copy(_ context.Context, templateID string, v models.AccountValues, p models.Privilege) (*models.Account, error) {
	if p != models.PrivilegeSuperuser {
		return nil, common.ErrorUnauthorized
	}
	t, ok := f.accounts[templateID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	role := v.Role
	if role == "" {
		role = t.Role
	}
	return f.insert(v, role)
}

func (f *fakeAccounts) Get(_ context.Context, id string) (*models.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) GetByLogin(_ context.Context, login string) (*models.Account, error) {
	for _, a := range f.accounts {
		if a.Login == login {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccounts) GetByContactID(_ context.Context, contactID string) (*models.Account, error) {
	if list := (*memStore)(f).accountsOf(contactID); len(list) > 0 {
		cp := *list[0]
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccounts) UpdatePassword(_ context.Context, id, hash string) error {
	a, ok := f.accounts[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.PasswordHash = hash
	return nil
}

// --- parameters ---

type fakeParams memStore

func (f *fakeParams) Get(_ context.Context, key string) (string, error) {
	v, ok := f.params[key]
	if !ok {
		return "", common.ErrorNotFound
	}
	return v, nil
}

func (f *fakeParams) Set(_ context.Context, key, value string) error {
	f.params[key] = value
	return nil
}

func (f *fakeParams) List(context.Context) ([]models.Parameter, error) {
	var out []models.Parameter
	for k, v := range f.params {
		out = append(out, models.Parameter{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
