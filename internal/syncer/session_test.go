package syncer

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSession_ExplicitExpiry(t *testing.T) {
	s := NewSession(time.Hour)
	if s.Valid() {
		t.Error("fresh session must not be valid")
	}

	s.SetToken("tok", time.Now().Add(time.Minute))
	if !s.Valid() {
		t.Error("unexpired token should be valid")
	}

	s.SetToken("tok", time.Now().Add(-time.Minute))
	if s.Valid() {
		t.Error("expired token should be invalid")
	}

	s.SetToken("tok", time.Now().Add(time.Minute))
	s.ClearToken()
	if s.Valid() {
		t.Error("cleared token should be invalid")
	}
}

func TestSession_OpaqueTokenUsesDefaultTTL(t *testing.T) {
	s := NewSession(time.Hour)
	s.SetToken("ya29.opaque-token", time.Time{})
	if !s.Valid() {
		t.Error("opaque token within default TTL should be valid")
	}

	s = NewSession(-time.Hour)
	s.SetToken("ya29.opaque-token", time.Time{})
	if s.Valid() {
		t.Error("opaque token past default TTL should be invalid")
	}
}

func TestSession_JWTExpiry(t *testing.T) {
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}

	// the default TTL would say yes, but the token itself says expired
	s := NewSession(time.Hour)
	s.SetToken(expired, time.Time{})
	if s.Valid() {
		t.Error("expired JWT should be invalid regardless of default TTL")
	}
}

func TestSession_Online(t *testing.T) {
	s := NewSession(time.Hour)
	if !s.Online() {
		t.Error("sessions assume connectivity until told otherwise")
	}
	s.SetOnline(false)
	if s.Online() {
		t.Error("SetOnline(false) not observed")
	}
}
