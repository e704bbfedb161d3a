package app

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hotel_booking/internal/domain"
)

func TestAccessTokenExpires(t *testing.T) {
	issued := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	ti := NewTokenIssuer("k", 24*time.Hour, 0)
	ti.now = func() time.Time { return issued }

	tok, err := ti.Access(domain.User{ID: "u1", Email: "a@b.com"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	c, err := ti.ParseAccess(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !c.ExpiresAt.Time.Equal(issued.Add(24*time.Hour)) || !c.IssuedAt.Time.Equal(issued) {
		t.Fatalf("exp/iat = %v / %v", c.ExpiresAt, c.IssuedAt)
	}

	ti.now = func() time.Time { return issued.Add(25 * time.Hour) }
	if _, err := ti.ParseAccess(tok); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expired token accepted: %v", err)
	}
}

func TestTokenRejectsForeignSignatures(t *testing.T) {
	ti := NewTokenIssuer("k", time.Hour, time.Hour)
	other := NewTokenIssuer("other", time.Hour, time.Hour)
	tok, _ := other.Access(domain.User{ID: "u1"})
	if _, err := ti.ParseAccess(tok); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("foreign key accepted: %v", err)
	}

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := ti.ParseAccess(none); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("alg=none accepted: %v", err)
	}
}
