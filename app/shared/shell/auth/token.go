package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer = "library-circulation"
	roleAdmin   = "admin"
)

var (
	// ErrInvalidToken is returned for tokens that are malformed, expired or signed with another key.
	ErrInvalidToken = errors.New("invalid token")

	// ErrEmptySecret is returned when a TokenIssuer is created without a signing secret.
	ErrEmptySecret = errors.New("jwt secret must not be empty")
)

// Claims are the claims of an admin token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies admin tokens with a shared secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a TokenIssuer whose tokens expire after ttl.
func NewTokenIssuer(secret string, ttl time.Duration) (TokenIssuer, error) {
	if secret == "" {
		return TokenIssuer{}, ErrEmptySecret
	}

	return TokenIssuer{secret: []byte(secret), ttl: ttl}, nil
}

// Issue creates a signed token for username, valid from issuedAt.
func (i TokenIssuer) Issue(username string, issuedAt time.Time) (string, error) {
	claims := Claims{
		Role: roleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify parses token and returns the admin username it was issued for.
func (i TokenIssuer) Verify(token string) (string, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || claims.Role != roleAdmin {
		return "", errors.Join(ErrInvalidToken, err)
	}

	return claims.Subject, nil
}
