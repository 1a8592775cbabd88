// Package flow drives the client side of the authorization code grant one
// explicit step at a time. Each step checks its own precondition and fails
// fast with a sentinel error instead of silently doing nothing.
package flow

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-oauth-simulator/clients"
	"github.com/jrsteele09/go-oauth-simulator/internal/errors"
	"github.com/jrsteele09/go-oauth-simulator/internal/logging"
	"github.com/jrsteele09/go-oauth-simulator/oauth2"
	"github.com/jrsteele09/go-oauth-simulator/resource"
	"github.com/jrsteele09/go-oauth-simulator/sessions"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	xoauth2 "golang.org/x/oauth2"
)

// AuthorizationServer is the part of the authorization server the client talks to.
type AuthorizationServer interface {
	Authorize(params *oauth2.AuthorizationParameters) (*oauth2.AuthorizationResponse, error)
	Token(req oauth2.TokenRequest) (*oauth2.TokenResponse, error)
	Introspect(accessToken string) *oauth2.IntrospectionResponse
	Reset()
}

type ResourceServer interface {
	GetProtectedResource(accessToken string) (*resource.Response, error)
}

// Settings describe the client registration the controller acts as.
type Settings struct {
	Client      clients.Client
	Scope       string
	Issuer      string
	StateLength int
}

type Controller struct {
	auth        AuthorizationServer
	resource    ResourceServer
	endpoint    *xoauth2.Config
	session     *sessions.SessionData
	expiry      time.Time // of the held access token, as reported by expires_in
	stateLength int
	nowTime     func() time.Time
	lock        sync.RWMutex
}

type ControllerOption func(*Controller)

// WithNowTime sets the clock used to turn expires_in into an expiry instant.
func WithNowTime(nowFunc func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.nowTime = nowFunc
	}
}

// NewController creates an idle controller for the client described by settings.
func NewController(as AuthorizationServer, rs ResourceServer, settings Settings, options ...ControllerOption) (*Controller, error) {
	if as == nil {
		return nil, pkgerrors.New("[flow.NewController] authorization server is required")
	}
	if rs == nil {
		return nil, pkgerrors.New("[flow.NewController] resource server is required")
	}

	session, err := sessions.NewSessionData(settings.Client.ID, settings.Client.Secret, settings.Client.RedirectURI, settings.Scope, settings.StateLength)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[flow.NewController] failed to generate state")
	}

	c := &Controller{
		auth:     as,
		resource: rs,
		endpoint: &xoauth2.Config{
			ClientID:     settings.Client.ID,
			ClientSecret: settings.Client.Secret,
			RedirectURL:  settings.Client.RedirectURI,
			Scopes:       []string{settings.Scope},
			Endpoint: xoauth2.Endpoint{
				AuthURL:   settings.Issuer + "/authorize",
				TokenURL:  settings.Issuer + "/token",
				AuthStyle: xoauth2.AuthStyleInParams,
			},
		},
		session:     session,
		stateLength: settings.StateLength,
		nowTime:     time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// RequestAuthorization starts (or restarts) the flow and returns the URL the
// browser would be sent to. Nothing is sent to the authorization server.
func (c *Controller) RequestAuthorization() string {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.session.Started = true
	c.session.FlowState = sessions.AwaitingConsent
	authURL := c.endpoint.AuthCodeURL(c.session.State)

	logging.Exchange(logging.Client, logging.Browser).
		Str("url", authURL).
		Msg("open Authorization URL")
	return authURL
}

// SubmitConsent logs the user in and answers the consent prompt. A refused
// request clears any held code and leaves the flow awaiting consent.
func (c *Controller) SubmitConsent(username, password string, consent bool) (*oauth2.AuthorizationResponse, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if !c.session.Started {
		return nil, errors.Wrapf(errors.ErrFlowNotStarted, "[Controller.SubmitConsent]")
	}

	resp, err := c.auth.Authorize(&oauth2.AuthorizationParameters{
		ClientID:    c.session.ClientID,
		RedirectURI: c.session.RedirectURI,
		Scope:       c.session.Scope,
		State:       c.session.State,
		Username:    username,
		Password:    password,
		Consent:     consent,
	})
	if err != nil {
		c.session.AuthorizationCode = ""
		c.session.FlowState = sessions.AwaitingConsent
		log.Info().Err(err).Msg("authorization failed")
		return nil, err
	}

	logging.Exchange(logging.Browser, logging.Client).
		Str("code", resp.Code).
		Str("state", resp.State).
		Msg("GET redirect_uri")

	if resp.State != c.session.State {
		c.session.AuthorizationCode = ""
		c.session.FlowState = sessions.AwaitingConsent
		return nil, errors.Wrapf(errors.ErrStateMismatch, "[Controller.SubmitConsent] got %q", resp.State)
	}

	c.session.AuthorizationCode = resp.Code
	c.session.FlowState = sessions.HasCode
	return resp, nil
}

// ExchangeCode redeems the held code. On failure the code stays held so the
// one-time-use rule can be seen by retrying.
func (c *Controller) ExchangeCode() (*oauth2.TokenResponse, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.session.AuthorizationCode == "" {
		return nil, errors.Wrapf(errors.ErrNoAuthorizationCode, "[Controller.ExchangeCode]")
	}

	resp, err := c.auth.Token(oauth2.TokenRequest{
		GrantType:    oauth2.AuthorizationCodeGrant,
		Code:         c.session.AuthorizationCode,
		RedirectURI:  c.session.RedirectURI,
		ClientID:     c.session.ClientID,
		ClientSecret: c.session.ClientSecret,
	})
	if err != nil {
		log.Info().Err(err).Msg("token exchange failed")
		return nil, err
	}

	c.storeAccessToken(resp)
	c.session.RefreshToken = resp.RefreshToken
	c.session.AuthorizationCode = ""
	c.session.FlowState = sessions.HasTokens

	log.Info().Int("expires_in", resp.ExpiresIn).Msg("client stored tokens")
	return resp, nil
}

// CallProtectedResource calls GET /me with the held access token and returns
// whatever the resource server answered.
func (c *Controller) CallProtectedResource() (*resource.Response, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if c.session.AccessToken == "" {
		return nil, errors.Wrapf(errors.ErrNoAccessToken, "[Controller.CallProtectedResource]")
	}
	return c.resource.GetProtectedResource(c.session.AccessToken)
}

// VerifyToken introspects the held access token directly.
func (c *Controller) VerifyToken() (*oauth2.IntrospectionResponse, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if c.session.AccessToken == "" {
		return nil, errors.Wrapf(errors.ErrNoAccessToken, "[Controller.VerifyToken]")
	}
	resp := c.auth.Introspect(c.session.AccessToken)
	log.Info().Bool("active", resp.Active).Msg("verification result")
	return resp, nil
}

// Refresh swaps the held access token for a new one. The refresh token is
// kept and held tokens are untouched on failure.
func (c *Controller) Refresh() (*oauth2.TokenResponse, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.session.RefreshToken == "" {
		return nil, errors.Wrapf(errors.ErrNoRefreshToken, "[Controller.Refresh]")
	}

	resp, err := c.auth.Token(oauth2.TokenRequest{
		GrantType:    oauth2.RefreshTokenGrant,
		RefreshToken: c.session.RefreshToken,
		ClientID:     c.session.ClientID,
		ClientSecret: c.session.ClientSecret,
	})
	if err != nil {
		log.Info().Err(err).Msg("refresh failed")
		return nil, err
	}

	c.storeAccessToken(resp)
	c.session.FlowState = sessions.HasTokens

	log.Info().Int("expires_in", resp.ExpiresIn).Msg("got new access token via refresh")
	return resp, nil
}

// Reset clears the ledger and every held artifact, and draws a new state value.
func (c *Controller) Reset() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	state, err := sessions.NewState(c.stateLength)
	if err != nil {
		return errors.Wrapf(err, "[Controller.Reset]")
	}

	c.auth.Reset()
	c.session.Clear()
	c.session.State = state
	c.expiry = time.Time{}

	log.Info().Msg("reset complete")
	return nil
}

// Session returns a copy of the client session.
func (c *Controller) Session() sessions.SessionData {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return *c.session
}

func (c *Controller) View(showSecrets bool) sessions.View {
	return c.Session().View(showSecrets)
}

// HeldToken returns the held tokens as an x/oauth2 token, or nil when no
// access token is held. Expiry is the client's estimate from expires_in.
func (c *Controller) HeldToken() *xoauth2.Token {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if c.session.AccessToken == "" {
		return nil
	}
	return &xoauth2.Token{
		AccessToken:  c.session.AccessToken,
		TokenType:    oauth2.BearerTokenType,
		RefreshToken: c.session.RefreshToken,
		Expiry:       c.expiry,
	}
}

func (c *Controller) storeAccessToken(resp *oauth2.TokenResponse) {
	c.session.AccessToken = resp.AccessToken
	c.expiry = c.nowTime().Add(time.Duration(resp.ExpiresIn) * time.Second)
}
