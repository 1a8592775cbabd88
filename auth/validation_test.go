package auth_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-oauth-simulator/auth"
	"github.com/jrsteele09/go-oauth-simulator/clients"
	"github.com/jrsteele09/go-oauth-simulator/oauth2"
	"github.com/jrsteele09/go-oauth-simulator/token"
	"github.com/jrsteele09/go-oauth-simulator/users"
	"github.com/stretchr/testify/require"
)

func TestValidator_AuthorizationRequest(t *testing.T) {
	v := auth.NewValidator()
	client := &clients.Client{ID: testClientID, Secret: testClientSecret, RedirectURI: testRedirectURI}
	user := &users.User{Username: testUsername, Password: testPassword}

	require.NoError(t, v.ValidateAuthorizationRequest(validAuthorizationParams(), client, user))

	err := v.ValidateAuthorizationRequest(validAuthorizationParams(), nil, user)
	requireOAuthError(t, err, oauth2.ErrorUnauthorizedClient, "")

	err = v.ValidateAuthorizationRequest(validAuthorizationParams(), client, nil)
	requireOAuthError(t, err, oauth2.ErrorAccessDenied, oauth2.ReasonBadCredentials)
}

func TestValidator_ClientCredentials(t *testing.T) {
	v := auth.NewValidator()
	client := &clients.Client{ID: testClientID, Secret: testClientSecret, RedirectURI: testRedirectURI}

	require.NoError(t, v.ValidateClientCredentials(testClientSecret, client))
	requireOAuthError(t, v.ValidateClientCredentials(testClientSecret, nil), oauth2.ErrorInvalidClient, "")
	requireOAuthError(t, v.ValidateClientCredentials("TOY-CLIENT-SECRET", client), oauth2.ErrorInvalidClient, oauth2.ReasonBadSecret)
}

func TestValidator_CodeRedemption(t *testing.T) {
	v := auth.NewValidator()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	code := &token.AuthorizationCode{
		Code:        "code_abc",
		ClientID:    testClientID,
		RedirectURI: testRedirectURI,
		ExpiresAt:   now.Add(time.Minute),
	}

	require.NoError(t, v.ValidateCodeRedemption(code, testRedirectURI, now))
	require.NoError(t, v.ValidateCodeRedemption(code, testRedirectURI, code.ExpiresAt))
	requireOAuthError(t, v.ValidateCodeRedemption(code, testRedirectURI, code.ExpiresAt.Add(time.Nanosecond)),
		oauth2.ErrorInvalidGrant, oauth2.ReasonCodeExpired)
	requireOAuthError(t, v.ValidateCodeRedemption(code, "https://client.example/", now),
		oauth2.ErrorInvalidGrant, oauth2.ReasonRedirectMismatch)
}

func TestValidator_RefreshToken(t *testing.T) {
	v := auth.NewValidator()
	rt := &token.RefreshToken{Token: "refresh_abc", ClientID: testClientID}

	require.NoError(t, v.ValidateRefreshToken(rt, testClientID))
	requireOAuthError(t, v.ValidateRefreshToken(rt, otherClientID), oauth2.ErrorInvalidGrant, oauth2.ReasonClientMismatch)
}
