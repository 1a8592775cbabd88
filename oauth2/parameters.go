package oauth2

// AuthorizationParameters holds the inputs of a simulated /authorize request.
// In a real deployment the first four arrive as query parameters and the last
// three come from the login and consent screen.
type AuthorizationParameters struct {
	// ClientID identifies the application requesting authorization.
	ClientID string `json:"client_id"`

	// RedirectURI must exactly match the client's registered redirect URI.
	RedirectURI string `json:"redirect_uri"`

	// Scope is the space-delimited list of requested permissions, e.g. "profile:read".
	Scope string `json:"scope"`

	// State is an opaque CSRF value. The server never interprets it and echoes it verbatim.
	State string `json:"state"`

	Username string `json:"username"`
	Password string `json:"-"`
	Consent  bool   `json:"consent"`
}

// AuthorizationResponse is what the authorization server redirects back with.
type AuthorizationResponse struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// TokenRequest holds parameters for the token endpoint.
// Supports the authorization_code and refresh_token grants.
type TokenRequest struct {
	GrantType GrantType `json:"grant_type"`

	// ClientID and ClientSecret authenticate the confidential client for every grant.
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"-"`

	// Code and RedirectURI are used by the authorization_code grant only.
	Code        string `json:"code,omitempty"`
	RedirectURI string `json:"redirect_uri,omitempty"`

	// RefreshToken is used by the refresh_token grant only.
	RefreshToken string `json:"refresh_token,omitempty"`
}
