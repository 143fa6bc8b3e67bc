package auth

import (
	"context"
	"errors"
	"time"

	"github.com/readingcorner/library-circulation/store"
)

// AdminStore defines the lookup the Authenticator needs.
type AdminStore interface {
	FindAdmin(ctx context.Context, username string) (store.Admin, error)
}

// Authenticator checks admin credentials and issues tokens for them.
type Authenticator struct {
	admins AdminStore
	tokens TokenIssuer
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(admins AdminStore, tokens TokenIssuer) Authenticator {
	return Authenticator{admins: admins, tokens: tokens}
}

// Login returns a token for the admin. An unknown username and a wrong password both yield
// ErrInvalidCredentials, so callers cannot tell them apart.
func (a Authenticator) Login(ctx context.Context, username, password string, now time.Time) (string, error) {
	admin, err := a.admins.FindAdmin(ctx, username)
	switch {
	case errors.Is(err, store.ErrRecordNotFound):
		return "", ErrInvalidCredentials
	case err != nil:
		return "", err
	}

	if err := CheckPassword(admin.PasswordHash, password); err != nil {
		return "", err
	}

	return a.tokens.Issue(admin.Username, now)
}

// Verify returns the admin username a token was issued for.
func (a Authenticator) Verify(token string) (string, error) {
	return a.tokens.Verify(token)
}
