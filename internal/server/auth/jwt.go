package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/ebet/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity embedded in an access token. ExpiresAt is nil for
// tokens issued without an expiry.
type Claims struct {
	ID        string
	Nickname  string
	Email     string
	IssuedAt  time.Time
	ExpiresAt *time.Time
}

// tokenClaims is the wire form: {id, nickname, email, iat, exp?}.
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID   string `json:"id"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

// TokenManager issues and verifies HS256 access tokens with a process-wide
// secret. It holds no mutable state and is safe for concurrent use.
type TokenManager struct {
	secret           []byte
	validityDuration time.Duration
	now              func() time.Time
}

type TokenOption func(*TokenManager)

// WithClock replaces time.Now for issuing and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) { m.now = now }
}

// NewTokenManager returns a manager signing with secret. Tokens expire after
// validityDuration; zero or negative issues tokens without an exp claim.
func NewTokenManager(secret []byte, validityDuration time.Duration, opts ...TokenOption) *TokenManager {
	m := &TokenManager{
		secret:           secret,
		validityDuration: validityDuration,
		now:              time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Issue signs claims. When claims carry no expiry and the manager has a
// validity window, exp is set to now + window.
func (m *TokenManager) Issue(claims Claims) (string, error) {
	now := m.now()

	tc := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
		UserID:   claims.ID,
		Nickname: claims.Nickname,
		Email:    claims.Email,
	}
	switch {
	case claims.ExpiresAt != nil:
		tc.ExpiresAt = jwt.NewNumericDate(*claims.ExpiresAt)
	case m.validityDuration > 0:
		tc.ExpiresAt = jwt.NewNumericDate(now.Add(m.validityDuration))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(m.secret)
	if err != nil {
		return "", err
	}

	return token, nil
}

// Verify checks structure, then signature, then expiry, and returns the
// embedded claims. Errors wrap common.ErrTokenMalformed,
// common.ErrTokenBadSignature or common.ErrTokenExpired.
func (m *TokenManager) Verify(token string) (Claims, error) {
	tc := &tokenClaims{}

	_, err := jwt.ParseWithClaims(token, tc, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}

	if tc.UserID == "" {
		return Claims{}, fmt.Errorf("%w: id claim is required", common.ErrTokenMalformed)
	}

	c := Claims{
		ID:       tc.UserID,
		Nickname: tc.Nickname,
		Email:    tc.Email,
	}
	if tc.IssuedAt != nil {
		c.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		exp := tc.ExpiresAt.Time
		c.ExpiresAt = &exp
	}

	return c, nil
}

// mapJWTError translates jwt library errors into the token taxonomy.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", common.ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", common.ErrTokenBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", common.ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", common.ErrTokenMalformed, err)
	}
}
