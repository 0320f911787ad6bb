package models

import "time"

// Account is the credential-bearing login entity owned by a Contact.
type Account struct {
	ID           string
	ContactID    string
	Login        string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Active       bool
	IsTemplate   bool
	CreatedAt    time.Time
}

// AccountValues are the field overrides applied when an account is created
// directly or cloned from a template. Empty Name/Email/Role fall back to the
// template (or the column default for direct creation).
type AccountValues struct {
	ContactID    string
	Login        string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Active       bool
}

// Privilege is the capability an account-creating call runs with.
//
// Account creation during signup runs as PrivilegeSuperuser on purpose: the
// signing-up visitor owns no account yet, so the per-tenant authorization
// that guards account creation is bypassed explicitly rather than implicitly.
type Privilege int

const (
	PrivilegeUser Privilege = iota
	PrivilegeSuperuser
)

func (p Privilege) String() string {
	switch p {
	case PrivilegeSuperuser:
		return "superuser"
	default:
		return "user"
	}
}
