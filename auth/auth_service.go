package auth

import (
	"context"
	"time"

	"github.com/jrsteele09/go-oauth-simulator/clients"
	"github.com/jrsteele09/go-oauth-simulator/credentials"
	"github.com/jrsteele09/go-oauth-simulator/instrumentation"
	"github.com/jrsteele09/go-oauth-simulator/internal/errors"
	"github.com/jrsteele09/go-oauth-simulator/internal/logging"
	"github.com/jrsteele09/go-oauth-simulator/oauth2"
	"github.com/jrsteele09/go-oauth-simulator/token"
	"github.com/jrsteele09/go-oauth-simulator/token/jwt"
	"github.com/jrsteele09/go-oauth-simulator/users"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// AuthorizationService is the simulated authorization server. It is the only
// writer of the token ledger.
type AuthorizationService struct {
	credentials *credentials.Store
	ledger      *token.Ledger
	tokens      *token.Manager
	validator   *Validator
	metrics     *instrumentation.Metrics
	nowTime     func() time.Time // injectable for testing
}

// AuthorizationServiceOption defines a function type to modify the AuthorizationService instance.
type AuthorizationServiceOption func(*AuthorizationService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.nowTime = nowFunc
	}
}

func WithMetrics(m *instrumentation.Metrics) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.metrics = m
	}
}

// NewAuthorizationService initializes a new AuthorizationService. The ledger
// is owned by the caller and shared by reference.
func NewAuthorizationService(
	store *credentials.Store,
	ledger *token.Ledger,
	tokenManager *token.Manager,
	options ...AuthorizationServiceOption,
) (*AuthorizationService, error) {
	if store == nil || store.Users == nil || store.Clients == nil {
		return nil, pkgerrors.New("[NewAuthorizationService] credentials store is required")
	}
	if ledger == nil {
		return nil, pkgerrors.New("[NewAuthorizationService] ledger is required")
	}
	if tokenManager == nil {
		return nil, pkgerrors.New("[NewAuthorizationService] tokenManager is required")
	}

	as := &AuthorizationService{
		credentials: store,
		ledger:      ledger,
		tokens:      tokenManager,
		validator:   NewValidator(),
		nowTime:     time.Now,
	}

	for _, opt := range options {
		opt(as)
	}

	if as.metrics == nil {
		as.metrics = instrumentation.Noop()
	}
	return as, nil
}

// Authorize simulates the /authorize endpoint followed by login and consent.
// On success a new code is stored and returned together with the unchanged
// state. On failure nothing is stored.
func (as *AuthorizationService) Authorize(params *oauth2.AuthorizationParameters) (resp *oauth2.AuthorizationResponse, err error) {
	defer func() { as.metrics.RecordAuthorize(context.Background(), err) }()

	logging.Exchange(logging.Client, logging.Auth).
		Str("client_id", params.ClientID).
		Str("scope", params.Scope).
		Str("state", params.State).
		Msg("GET /authorize")

	if err := as.validator.ValidateAuthorizationRequest(params, as.client(params.ClientID), as.user(params.Username)); err != nil {
		return nil, err
	}

	code, err := as.tokens.NewAuthorizationCode(params.ClientID, params.Username, params.Scope, params.RedirectURI, as.nowTime())
	if err != nil {
		return nil, errors.Wrapf(err, "[AuthorizationService.Authorize]")
	}
	as.ledger.SaveCode(code)

	logging.Exchange(logging.Auth, logging.Browser).
		Str("code", code.Code).
		Str("state", params.State).
		Msg("302 Redirect to redirect_uri")

	return &oauth2.AuthorizationResponse{Code: code.Code, State: params.State}, nil
}

// Token simulates the /token endpoint for the authorization_code and
// refresh_token grants. The client is authenticated before the grant type is
// looked at.
func (as *AuthorizationService) Token(req oauth2.TokenRequest) (resp *oauth2.TokenResponse, err error) {
	defer func() { as.metrics.RecordToken(context.Background(), req.GrantType, err) }()

	logging.Exchange(logging.Client, logging.Auth).
		Str("grant_type", string(req.GrantType)).
		Msg("POST /token")

	if err := as.validator.ValidateClientCredentials(req.ClientSecret, as.client(req.ClientID)); err != nil {
		return nil, err
	}

	switch req.GrantType {
	case oauth2.AuthorizationCodeGrant:
		return as.authorizationCodeGrant(req)
	case oauth2.RefreshTokenGrant:
		return as.refreshTokenGrant(req)
	}
	return nil, oauth2.NewError(oauth2.ErrorUnsupportedGrantType, "")
}

func (as *AuthorizationService) authorizationCodeGrant(req oauth2.TokenRequest) (*oauth2.TokenResponse, error) {
	now := as.nowTime()

	code, err := as.ledger.RedeemCode(req.Code, func(c *token.AuthorizationCode) error {
		return as.validator.ValidateCodeRedemption(c, req.RedirectURI, now)
	})
	if errors.Is(err, errors.ErrCodeNotFound) {
		return nil, oauth2.NewError(oauth2.ErrorInvalidGrant, oauth2.ReasonUnknownCode)
	}
	if err != nil {
		return nil, err
	}

	accessToken, err := as.tokens.NewAccessToken(req.ClientID, code.Username, code.Scope, now)
	if err != nil {
		return nil, errors.Wrapf(err, "[AuthorizationService.Token]")
	}
	refreshToken, err := as.tokens.NewRefreshToken(req.ClientID, code.Username, code.Scope)
	if err != nil {
		return nil, errors.Wrapf(err, "[AuthorizationService.Token]")
	}
	as.ledger.SaveAccessToken(accessToken)
	as.ledger.SaveRefreshToken(refreshToken)

	logging.Exchange(logging.Auth, logging.Client).Msg("200 OK issued access_token + refresh_token")

	return &oauth2.TokenResponse{
		TokenType:    oauth2.BearerTokenType,
		AccessToken:  accessToken.Token,
		ExpiresIn:    token.ExpiresIn(accessToken.ExpiresAt, now),
		RefreshToken: refreshToken.Token,
		Scope:        code.Scope,
	}, nil
}

func (as *AuthorizationService) refreshTokenGrant(req oauth2.TokenRequest) (*oauth2.TokenResponse, error) {
	now := as.nowTime()

	rt, err := as.ledger.GetRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, oauth2.NewError(oauth2.ErrorInvalidGrant, oauth2.ReasonUnknownRefreshToken)
	}
	if err := as.validator.ValidateRefreshToken(rt, req.ClientID); err != nil {
		return nil, err
	}

	accessToken, err := as.tokens.NewAccessToken(req.ClientID, rt.Username, rt.Scope, now)
	if err != nil {
		return nil, errors.Wrapf(err, "[AuthorizationService.Token]")
	}
	as.ledger.SaveAccessToken(accessToken)

	logging.Exchange(logging.Auth, logging.Client).Msg("200 OK refreshed access_token")

	return &oauth2.TokenResponse{
		TokenType:   oauth2.BearerTokenType,
		AccessToken: accessToken.Token,
		ExpiresIn:   token.ExpiresIn(accessToken.ExpiresAt, now),
		Scope:       rt.Scope,
	}, nil
}

// Introspect reports whether accessToken is active. Validity comes from the
// ledger alone; exp is decoded from the token string for display. Expired
// tokens are never removed here.
func (as *AuthorizationService) Introspect(accessToken string) *oauth2.IntrospectionResponse {
	logging.Exchange(logging.Resource, logging.Auth).
		Str("token", logging.Token(accessToken)).
		Msg("POST /introspect")

	resp := as.introspect(accessToken)
	as.metrics.RecordIntrospect(context.Background(), resp.Active)
	return resp
}

func (as *AuthorizationService) introspect(accessToken string) *oauth2.IntrospectionResponse {
	at, err := as.ledger.GetAccessToken(accessToken)
	if err != nil {
		return &oauth2.IntrospectionResponse{Active: false}
	}
	return &oauth2.IntrospectionResponse{
		Active:   at.Active(as.nowTime()),
		ClientID: at.ClientID,
		Username: at.Username,
		Scope:    at.Scope,
		Exp:      jwt.ExpiryUnix(accessToken),
	}
}

// Reset drops every issued code and token.
func (as *AuthorizationService) Reset() {
	as.ledger.Clear()
	log.Info().Msg("ledger cleared")
}

// Stats reports the ledger size.
func (as *AuthorizationService) Stats() token.Stats {
	return as.ledger.Stats()
}

func (as *AuthorizationService) client(clientID string) *clients.Client {
	c, err := as.credentials.Clients.Get(clientID)
	if err != nil {
		return nil
	}
	return c
}

func (as *AuthorizationService) user(username string) *users.User {
	u, err := as.credentials.Users.Get(username)
	if err != nil {
		return nil
	}
	return u
}
