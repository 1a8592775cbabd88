package sessions

import (
	"github.com/jrsteele09/go-oauth-simulator/internal/utils"
	"github.com/jrsteele09/go-oauth-simulator/token/jwt"
)

const (
	maskedSecret        = "************"
	accessTokenViewLen  = 40
	refreshTokenViewLen = 22
)

// View is a display copy of a session with secrets masked and tokens
// shortened.
type View struct {
	ClientID           string            `json:"client_id"`
	ClientSecret       string            `json:"client_secret"`
	RedirectURI        string            `json:"redirect_uri"`
	Scope              string            `json:"scope"`
	State              string            `json:"state"`
	FlowState          FlowState         `json:"flow_state"`
	AuthorizationCode  *string           `json:"authorization_code"`
	AccessToken        *string           `json:"access_token"`
	RefreshToken       *string           `json:"refresh_token"`
	AccessTokenPayload *jwt.AccessClaims `json:"access_token_payload"`
}

// View renders the session. The decoded payload is informational only.
func (s SessionData) View(showSecrets bool) View {
	v := View{
		ClientID:     s.ClientID,
		ClientSecret: maskedSecret,
		RedirectURI:  s.RedirectURI,
		Scope:        s.Scope,
		State:        s.State,
		FlowState:    s.FlowState,
	}
	if showSecrets {
		v.ClientSecret = s.ClientSecret
	}
	if s.AuthorizationCode != "" {
		v.AuthorizationCode = utils.Ptr(s.AuthorizationCode)
	}
	if s.AccessToken != "" {
		v.AccessToken = utils.Ptr(utils.Truncate(s.AccessToken, accessTokenViewLen))
		if claims, err := jwt.Decode(s.AccessToken); err == nil {
			v.AccessTokenPayload = claims
		}
	}
	if s.RefreshToken != "" {
		v.RefreshToken = utils.Ptr(utils.Truncate(s.RefreshToken, refreshTokenViewLen))
	}
	return v
}
