package oauth2

import "fmt"

// Error codes. These form a closed vocabulary shared by every endpoint.
const (
	ErrorUnauthorizedClient   = "unauthorized_client"
	ErrorInvalidRedirectURI   = "invalid_redirect_uri"
	ErrorInvalidClient        = "invalid_client"
	ErrorAccessDenied         = "access_denied"
	ErrorInvalidGrant         = "invalid_grant"
	ErrorUnsupportedGrantType = "unsupported_grant_type"
	ErrorInvalidToken         = "invalid_token"
	ErrorInsufficientScope    = "insufficient_scope"
)

// Reasons refine an error code.
const (
	ReasonBadSecret           = "bad_secret"
	ReasonBadCredentials      = "bad_credentials"
	ReasonUserDeniedConsent   = "user_denied_consent"
	ReasonUnknownCode         = "unknown_code"
	ReasonRedirectMismatch    = "redirect_mismatch"
	ReasonCodeExpired         = "code_expired"
	ReasonUnknownRefreshToken = "unknown_refresh_token"
	ReasonClientMismatch      = "client_mismatch"
)

// Error is the structured failure returned by the authorization server.
type Error struct {
	Code   string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

var _ error = (*Error)(nil)

// NewError builds an *Error. reason may be empty.
func NewError(code, reason string) *Error {
	return &Error{Code: code, Reason: reason}
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return e.Code
	}
	return fmt.Sprintf("%s (%s)", e.Code, e.Reason)
}

// Is matches another *Error with the same code, and the same reason when the
// target specifies one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}
