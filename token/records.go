package token

import "time"

// AuthorizationCode is a one-time credential issued by authorize.
type AuthorizationCode struct {
	Code        string
	ClientID    string
	Username    string
	Scope       string
	RedirectURI string
	ExpiresAt   time.Time
}

// Expired reports whether the code can no longer be redeemed at now.
func (c *AuthorizationCode) Expired(now time.Time) bool {
	return c.ExpiresAt.Before(now)
}

// AccessToken is the ledger entry behind a bearer string. It, not the decoded
// bearer string, decides whether the token is valid.
type AccessToken struct {
	Token     string
	ClientID  string
	Username  string
	Scope     string
	ExpiresAt time.Time
}

// Active reports whether the token is valid at now. It is strict: a token is
// inactive at its expiry instant.
func (t *AccessToken) Active(now time.Time) bool {
	return t.ExpiresAt.After(now)
}

// RefreshToken has no expiry and is never consumed by use.
type RefreshToken struct {
	Token    string
	ClientID string
	Username string
	Scope    string
}
