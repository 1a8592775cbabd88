package jwt

import (
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-oauth-simulator/internal/errors"
)

// Decode reads the payload of a token produced by Encode without verifying
// anything. It returns ErrMalformedToken for strings that are not in that shape.
func Decode(rawToken string) (*AccessClaims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.ErrMalformedToken
	}
	claims := &AccessClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(rawToken, claims); err != nil {
		return nil, errors.Wrapf(errors.ErrMalformedToken, "%v", err)
	}
	return claims, nil
}

// ExpiryUnix returns the exp claim in Unix seconds, or nil when the token
// cannot be decoded or carries no expiry.
func ExpiryUnix(rawToken string) *int64 {
	claims, err := Decode(rawToken)
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}
	exp := claims.ExpiresAt.Unix()
	return &exp
}
