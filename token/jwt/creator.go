// Package jwt encodes access tokens in an unsigned, self-describing JWT shape.
// The encoding exists so a token can be inspected; nothing in the simulator
// trusts its contents.
package jwt

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-oauth-simulator/internal/utils"
)

// AccessClaims is the payload carried inside an access token.
type AccessClaims struct {
	Scope    string `json:"scope"`
	ClientID string `json:"client_id"`
	jwtlib.RegisteredClaims
}

// Creator builds access token strings.
type Creator struct {
	issuer          string
	audience        string
	signatureLength int
}

// NewCreator creates a Creator. signatureLength is the number of random
// characters placed in the signature segment.
func NewCreator(issuer, audience string, signatureLength int) *Creator {
	return &Creator{
		issuer:          issuer,
		audience:        audience,
		signatureLength: signatureLength,
	}
}

// CreateAccessToken returns header.payload.signature where the header declares
// alg "none" and the signature is random filler, not a signature.
func (c *Creator) CreateAccessToken(subject, clientID, scope string, issuedAt, expiresAt time.Time) (string, error) {
	claims := AccessClaims{
		Scope:    scope,
		ClientID: clientID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   subject,
			Audience:  jwtlib.ClaimStrings{c.audience},
			IssuedAt:  jwtlib.NewNumericDate(issuedAt),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
		},
	}
	return Encode(claims, c.signatureLength)
}

// Encode serialises claims without signing them.
func Encode(claims AccessClaims, signatureLength int) (string, error) {
	unsigned, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, claims).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	if err != nil {
		return "", fmt.Errorf("failed to encode token: %w", err)
	}
	filler, err := utils.RandomString(signatureLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate signature filler: %w", err)
	}
	// unsigned already ends with the "." that precedes an empty signature.
	return unsigned + filler, nil
}
