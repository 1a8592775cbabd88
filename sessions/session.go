package sessions

import (
	"github.com/jrsteele09/go-oauth-simulator/internal/utils"
)

const StatePrefix = "st_"

// FlowState is the step a client session has reached.
type FlowState string

const (
	Idle            FlowState = "idle"
	AwaitingConsent FlowState = "awaiting_consent"
	HasCode         FlowState = "has_code"
	HasTokens       FlowState = "has_tokens"
)

// SessionData is the client's own view of its registration and of the
// artifacts it currently holds. Only the flow controller mutates it.
type SessionData struct {
	ClientID          string    // Registered client identifier
	ClientSecret      string    // Sent to the token endpoint only
	RedirectURI       string    // Must match the registration exactly
	Scope             string    // Requested scope, space delimited
	State             string    // CSRF nonce, regenerated on reset only
	AuthorizationCode string    // Set after consent, cleared after exchange
	AccessToken       string    // Latest access token, kept after expiry
	RefreshToken      string    // Never rotated
	Started           bool      // Authorization request has been made
	FlowState         FlowState // Last step reached
}

// NewSessionData creates an idle session with a fresh state value.
func NewSessionData(clientID, clientSecret, redirectURI, scope string, stateLength int) (*SessionData, error) {
	state, err := NewState(stateLength)
	if err != nil {
		return nil, err
	}
	return &SessionData{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		Scope:        scope,
		State:        state,
		FlowState:    Idle,
	}, nil
}

// NewState returns a state value of the form st_<n random characters>.
func NewState(n int) (string, error) {
	suffix, err := utils.RandomString(n)
	if err != nil {
		return "", err
	}
	return StatePrefix + suffix, nil
}

// Clear drops every held artifact and returns the session to Idle. The state
// value is left alone.
func (s *SessionData) Clear() {
	s.AuthorizationCode = ""
	s.AccessToken = ""
	s.RefreshToken = ""
	s.Started = false
	s.FlowState = Idle
}
