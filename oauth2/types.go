package oauth2

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
// Determines what credentials are required to obtain tokens.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Token request includes: code, client_id, client_secret, redirect_uri
	// Returns: access_token and refresh_token
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenGrant exchanges a refresh token for a new access token.
	// Token request includes: refresh_token, client_id, client_secret
	// Returns: a new access_token. The refresh token is neither rotated nor invalidated.
	RefreshTokenGrant GrantType = "refresh_token"
)

// BearerTokenType is the only token type issued.
const BearerTokenType = "Bearer"
