package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Verifier checks access tokens issued by the hosted auth provider.
// Tokens are HS256-signed; the subject claim carries the numeric user id.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier constructs a Verifier. The issuer is optional; when set,
// tokens from any other issuer are rejected.
func NewVerifier(secret, issuer string) (*Verifier, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &Verifier{secret: []byte(secret), issuer: issuer}, nil
}

// ValidateToken verifies the JWT and returns the authenticated user id.
func (v *Verifier) ValidateToken(_ context.Context, token string) (int, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil || userID == 0 {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
