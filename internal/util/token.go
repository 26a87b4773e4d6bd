package util

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry extracts the exp claim from a JWT-shaped bearer
// credential without verifying its signature. The core never validates
// the credential (the backup service does that); it only needs a local
// "still usable" signal to decide whether a push attempt is worthwhile.
// Opaque tokens return false and the caller falls back to its own TTL.
func TokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
