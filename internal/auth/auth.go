// Package auth verifies access tokens issued by the external identity
// provider and carries the resulting session through the application.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Context identifies the signed-in user.
type Context struct {
	UserID string
	Email  string
}

// Authenticated reports whether the session names a user.
func (c Context) Authenticated() bool {
	return c.UserID != ""
}

// Claims are the identity provider's access token claims.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 tokens signed with the provider's shared secret.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier builds a verifier; an empty issuer disables the issuer check.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses tokenString and returns the session it grants.
func (v *Verifier) Verify(tokenString string) (Context, error) {
	if tokenString == "" {
		return Context{}, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Context{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return Context{}, ErrInvalidToken
	}

	return Context{UserID: claims.Subject, Email: claims.Email}, nil
}

// NewToken signs a token the way the identity provider does. Used for local
// development and tests.
func NewToken(secret, issuer string, session Context, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: session.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

type ctxKey struct{}

// WithContext attaches session to ctx.
func WithContext(ctx context.Context, session Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, session)
}

// FromContext returns the session attached by WithContext.
func FromContext(ctx context.Context) (Context, bool) {
	session, ok := ctx.Value(ctxKey{}).(Context)
	return session, ok && session.Authenticated()
}
