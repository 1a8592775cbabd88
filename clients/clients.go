package clients

// Client is a confidential client registration.
type Client struct {
	ID          string `json:"id" yaml:"id"`
	Secret      string `json:"-" yaml:"secret"`
	RedirectURI string `json:"redirect_uri" yaml:"redirectUri"`
}

// RedirectMatches reports whether redirectURI exactly equals the registered one.
// No prefix, case or trailing-slash normalisation is applied.
func (c *Client) RedirectMatches(redirectURI string) bool {
	return c.RedirectURI == redirectURI
}

func (c *Client) SecretMatches(secret string) bool {
	return c.Secret == secret
}
