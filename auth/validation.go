package auth

import (
	"time"

	"github.com/jrsteele09/go-oauth-simulator/clients"
	"github.com/jrsteele09/go-oauth-simulator/oauth2"
	"github.com/jrsteele09/go-oauth-simulator/token"
	"github.com/jrsteele09/go-oauth-simulator/users"
)

// Validator holds the ordered validation rules of each endpoint. Every rule
// returns an *oauth2.Error so callers can hand the result straight back.
type Validator struct{}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAuthorizationRequest checks, in order: client registered, redirect
// URI exact match, user credentials, consent. client and user are nil when the
// lookup failed.
func (v *Validator) ValidateAuthorizationRequest(params *oauth2.AuthorizationParameters, client *clients.Client, user *users.User) error {
	if client == nil {
		return oauth2.NewError(oauth2.ErrorUnauthorizedClient, "")
	}
	if !client.RedirectMatches(params.RedirectURI) {
		return oauth2.NewError(oauth2.ErrorInvalidRedirectURI, "")
	}
	if user == nil || !user.CheckPassword(params.Password) {
		return oauth2.NewError(oauth2.ErrorAccessDenied, oauth2.ReasonBadCredentials)
	}
	if !params.Consent {
		return oauth2.NewError(oauth2.ErrorAccessDenied, oauth2.ReasonUserDeniedConsent)
	}
	return nil
}

// ValidateClientCredentials authenticates a confidential client at the token
// endpoint. client is nil when the client_id is not registered.
func (v *Validator) ValidateClientCredentials(clientSecret string, client *clients.Client) error {
	if client == nil {
		return oauth2.NewError(oauth2.ErrorInvalidClient, "")
	}
	if !client.SecretMatches(clientSecret) {
		return oauth2.NewError(oauth2.ErrorInvalidClient, oauth2.ReasonBadSecret)
	}
	return nil
}

// ValidateCodeRedemption checks a stored code against the redirect URI of the
// token request and the current time. Unknown codes are reported by the ledger.
func (v *Validator) ValidateCodeRedemption(code *token.AuthorizationCode, redirectURI string, now time.Time) error {
	if code.RedirectURI != redirectURI {
		return oauth2.NewError(oauth2.ErrorInvalidGrant, oauth2.ReasonRedirectMismatch)
	}
	if code.Expired(now) {
		return oauth2.NewError(oauth2.ErrorInvalidGrant, oauth2.ReasonCodeExpired)
	}
	return nil
}

// ValidateRefreshToken checks that the refresh token was issued to the client
// presenting it.
func (v *Validator) ValidateRefreshToken(rt *token.RefreshToken, clientID string) error {
	if rt.ClientID != clientID {
		return oauth2.NewError(oauth2.ErrorInvalidGrant, oauth2.ReasonClientMismatch)
	}
	return nil
}
