package oauth2

// IntrospectionResponse reports whether an access token is currently valid.
// When Active is false because the token is unknown, all other fields are empty.
type IntrospectionResponse struct {
	Active   bool   `json:"active"`
	ClientID string `json:"client_id,omitempty"`
	Username string `json:"username,omitempty"`
	Scope    string `json:"scope,omitempty"`
	// Exp is read from the token's own encoding, in Unix seconds. It is for display only.
	Exp *int64 `json:"exp,omitempty"`
}
