package oauth2

// TokenResponse represents the response from a token request.
type TokenResponse struct {
	// TokenType is always "Bearer".
	TokenType string `json:"token_type"`

	// AccessToken is the bearer credential presented to the resource server.
	// It is a self-describing but unsigned token; only the ledger decides its validity.
	AccessToken string `json:"access_token"`

	// ExpiresIn is the remaining lifetime of the access token in whole seconds.
	ExpiresIn int `json:"expires_in"`

	// RefreshToken is only returned by the authorization_code grant.
	RefreshToken string `json:"refresh_token,omitempty"`

	Scope string `json:"scope"`
}
