package app

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hotel_booking/internal/domain"
)

const refreshTokenType = "refresh"

// Claims is the signed payload. Access tokens carry exactly user_id, email,
// exp and iat; refresh tokens add token_type.
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret     []byte
	ttl        time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, ttl, refreshTTL time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, refreshTTL: refreshTTL, now: time.Now}
}

func (t *TokenIssuer) Access(u domain.User) (string, error) {
	return t.sign(u, "", t.ttl)
}

func (t *TokenIssuer) Refresh(u domain.User) (string, error) {
	return t.sign(u, refreshTokenType, t.refreshTTL)
}

func (t *TokenIssuer) sign(u domain.User, typ string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := &Claims{
		UserID:    u.ID,
		Email:     u.Email,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// ParseAccess verifies an access token. Refresh tokens are rejected.
func (t *TokenIssuer) ParseAccess(s string) (*Claims, error) {
	c, err := t.parse(s)
	if err != nil {
		return nil, err
	}
	if c.TokenType != "" {
		return nil, fmt.Errorf("%w: not an access token", domain.ErrUnauthorized)
	}
	return c, nil
}

func (t *TokenIssuer) ParseRefresh(s string) (*Claims, error) {
	c, err := t.parse(s)
	if err != nil {
		return nil, err
	}
	if c.TokenType != refreshTokenType {
		return nil, fmt.Errorf("%w: not a refresh token", domain.ErrUnauthorized)
	}
	return c, nil
}

func (t *TokenIssuer) parse(s string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(s, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !tok.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	return claims, nil
}
