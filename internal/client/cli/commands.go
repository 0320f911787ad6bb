package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/authsignup/internal/client/client"
	"github.com/dmitrijs2005/authsignup/internal/common"
	"github.com/dmitrijs2005/authsignup/internal/server/auth"
	"github.com/dmitrijs2005/authsignup/internal/server/models"
)

// paramKeys lists the parameters the server accepts.
var paramKeys = []string{
	models.ParamBaseURL,
	models.ParamAllowUninvited,
	models.ParamTemplateAccountID,
}

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// generateOperatorToken mints an operator JWT locally.
var generateOperatorToken = auth.GenerateToken

// OperatorToken mints an operator token from the configured secret key and
// attaches it to later calls. A pasted token is used as is when no secret
// key is configured.
func (a *App) OperatorToken(ctx context.Context) error {
	if a.config.SecretKey == "" {
		token, err := getSimpleText(a.reader, "Paste operator token", a.out)
		if err != nil {
			return err
		}
		a.api.SetAccessToken(token)
		printlnFn("Operator token set")
		return nil
	}

	token, err := generateOperatorToken(a.config.OperatorName, []byte(a.config.SecretKey), a.config.OperatorTokenValidity)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	a.api.SetAccessToken(token)
	printlnFn("Operator token issued for", a.config.OperatorName)
	return nil
}

// CreateContact prompts for a display name and creates a contact.
func (a *App) CreateContact(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Contact name", a.out)
	if err != nil {
		return err
	}

	id, err := a.api.CreateContact(ctx, name)
	if err != nil {
		return a.report(err)
	}
	printlnFn("Contact created:", id)
	return nil
}

// Invite issues a fresh signup token for a contact. The expiration prompt
// accepts an RFC 3339 time, a Go duration ("48h"), "never", or an empty line
// for the server default.
func (a *App) Invite(ctx context.Context) error {
	contactID, err := getSimpleText(a.reader, "Contact id", a.out)
	if err != nil {
		return err
	}
	raw, err := getSimpleText(a.reader, "Expires (RFC 3339 time, duration, 'never' or empty for default)", a.out)
	if err != nil {
		return err
	}

	exp, never, err := parseExpiration(raw, time.Now())
	if err != nil {
		printlnFn("Error:", err)
		return err
	}

	tok, err := a.api.GenerateToken(ctx, contactID, exp, never)
	if err != nil {
		return a.report(err)
	}

	if tok.ExpiresAt == nil {
		printlnFn("Token:", tok.Value, "(never expires)")
	} else {
		printlnFn("Token:", tok.Value, "expires", tok.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func parseExpiration(raw string, now time.Time) (*time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return nil, false, nil
	case strings.EqualFold(raw, "never"):
		return nil, true, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, false, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return nil, false, fmt.Errorf("cannot parse expiration %q", raw)
	}
	t := now.Add(d)
	return &t, false, nil
}

// URL prints the signup URL for a contact, issuing a token if it has none.
func (a *App) URL(ctx context.Context) error {
	contactID, err := getSimpleText(a.reader, "Contact id", a.out)
	if err != nil {
		return err
	}

	u, err := a.api.GetSignupURL(ctx, contactID)
	if err != nil {
		return a.report(err)
	}
	printlnFn(u)
	return nil
}

// Lookup resolves a signup token to its contact.
func (a *App) Lookup(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Signup token", a.out)
	if err != nil {
		return err
	}

	id, err := a.api.RetrieveContact(ctx, token)
	if err != nil {
		return a.report(err)
	}
	if id == "" {
		printlnFn("No contact holds this token")
		return nil
	}
	printlnFn("Contact:", id)
	return nil
}

// Signup runs the signup form: with a token it activates the invitation or
// resets the password, without one it creates an uninvited account.
func (a *App) Signup(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Signup token (empty for uninvited signup)", a.out)
	if err != nil {
		return err
	}
	login, err := getSimpleText(a.reader, "Login", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.Signup(ctx, login, string(password), name, token)
	if err != nil {
		return a.report(err)
	}
	printResult(res)
	return nil
}

// AuthSignup signs in with existing credentials or creates the account when
// the login is unknown.
func (a *App) AuthSignup(ctx context.Context) error {
	login, err := getSimpleText(a.reader, "Login", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Name (empty to use login)", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res, err := a.api.AuthSignup(ctx, name, login, string(password))
	if err != nil {
		return a.report(err)
	}
	printResult(res)
	return nil
}

// Param prompts for a parameter key and value and stores it on the server.
// An empty value clears the template account.
func (a *App) Param(ctx context.Context) error {
	key, err := getSimpleText(a.reader, "Parameter key", a.out)
	if err != nil {
		return err
	}
	value, err := getSimpleText(a.reader, "Value", a.out)
	if err != nil {
		return err
	}

	if err := a.api.SetParam(ctx, key, value); err != nil {
		return a.report(err)
	}
	printlnFn("Parameter set:", key)
	return nil
}

// Params prints the stored server parameters sorted by key.
func (a *App) Params(ctx context.Context) error {
	params, err := a.api.ListParams(ctx)
	if err != nil {
		return a.report(err)
	}
	if len(params) == 0 {
		printlnFn("No parameters stored, server defaults apply")
		return nil
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		printlnFn(fmt.Sprintf("%s = %s", k, params[k]))
	}
	return nil
}

func printResult(r *client.Result) {
	printlnFn(fmt.Sprintf("Signed up: tenant=%s login=%s", r.TenantID, r.Login))
}

// report prints err with a hint for the common failures and returns it.
func (a *App) report(err error) error {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		printlnFn("Not authorized, run 'operator-token' first:", err)
	case errors.Is(err, client.ErrUnavailable):
		printlnFn("Server unavailable")
	case errors.Is(err, common.ErrInvalidToken):
		printlnFn("Signup token is not valid")
	case errors.Is(err, common.ErrTokenExpired):
		printlnFn("Signup token has expired, ask for a new invitation")
	case errors.Is(err, common.ErrSignupNotAllowed):
		printlnFn("Signup without an invitation is disabled")
	case errors.Is(err, common.ErrInvalidParameter):
		printlnFn("Parameter rejected, known keys:", strings.Join(paramKeys, ", "))
	default:
		printlnFn("Error:", err)
	}
	return err
}
