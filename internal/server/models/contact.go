package models

import "time"

// Contact is a person or organisation that may be invited to sign up.
//
// SignupToken is empty when no token is live. A nil SignupExpiration means
// the token never expires.
type Contact struct {
	ID               string
	Name             string
	SignupToken      string
	SignupExpiration *time.Time
	CreatedAt        time.Time
}

// HasToken reports whether the contact currently carries a signup token.
func (c *Contact) HasToken() bool {
	return c.SignupToken != ""
}
