package config

import "time"

type OAuthConfig interface {
	GetAuthCodeTimeout() time.Duration
	GetDefaultAccessTokenExpiry() time.Duration
	GetCodeGenerationLength() int
	GetRefreshTokenLength() int
	GetStateLength() int
	GetSignatureLength() int
	GetIssuer() string
	GetAudience() string
	GetRequiredScope() string
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetAuthCodeTimeout() time.Duration {
	return 60 * time.Second
}

// GetDefaultAccessTokenExpiry is deliberately short so that expiry and the
// refresh grant are observable within a single session.
func (OAuth) GetDefaultAccessTokenExpiry() time.Duration {
	return 15 * time.Second
}

func (OAuth) GetCodeGenerationLength() int {
	return 18
}

func (OAuth) GetRefreshTokenLength() int {
	return 26
}

func (OAuth) GetStateLength() int {
	return 10
}

func (OAuth) GetSignatureLength() int {
	return 16
}

func (OAuth) GetIssuer() string {
	return "https://auth.example"
}

func (OAuth) GetAudience() string {
	return "https://resource.example"
}

func (OAuth) GetRequiredScope() string {
	return "profile:read"
}
