package token

import (
	"time"

	"github.com/jrsteele09/go-oauth-simulator/internal/utils"
	"github.com/jrsteele09/go-oauth-simulator/token/jwt"
	"github.com/pkg/errors"
)

// Key prefixes make the kind of an opaque string recognisable in logs.
const (
	codePrefix    = "code_"
	refreshPrefix = "refresh_"
)

// Manager mints codes and tokens. It does not store them; the caller owns the
// Ledger. Every mint takes the issuance instant so a single clock governs
// issuance and validation.
type Manager struct {
	creator            *jwt.Creator
	authCodeTimeout    time.Duration
	accessTokenExpiry  time.Duration
	codeLength         int
	refreshTokenLength int
}

type ManagerOption func(*Manager)

func WithTokenExpiry(authCodeTimeout, accessTokenExpiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.authCodeTimeout = authCodeTimeout
		m.accessTokenExpiry = accessTokenExpiry
	}
}

func WithKeyLengths(codeLength, refreshTokenLength int) ManagerOption {
	return func(m *Manager) {
		m.codeLength = codeLength
		m.refreshTokenLength = refreshTokenLength
	}
}

func NewManager(creator *jwt.Creator, options ...ManagerOption) *Manager {
	m := &Manager{creator: creator}

	for _, opt := range options {
		opt(m)
	}

	if m.authCodeTimeout == 0 {
		m.authCodeTimeout = 60 * time.Second
	}
	if m.accessTokenExpiry == 0 {
		m.accessTokenExpiry = 15 * time.Second
	}
	if m.codeLength == 0 {
		m.codeLength = 18
	}
	if m.refreshTokenLength == 0 {
		m.refreshTokenLength = 26
	}
	return m
}

func (m *Manager) AccessTokenExpiry() time.Duration {
	return m.accessTokenExpiry
}

func (m *Manager) NewAuthorizationCode(clientID, username, scope, redirectURI string, now time.Time) (*AuthorizationCode, error) {
	suffix, err := utils.RandomString(m.codeLength)
	if err != nil {
		return nil, errors.Wrap(err, "Manager.NewAuthorizationCode RandomString")
	}
	return &AuthorizationCode{
		Code:        codePrefix + suffix,
		ClientID:    clientID,
		Username:    username,
		Scope:       scope,
		RedirectURI: redirectURI,
		ExpiresAt:   now.Add(m.authCodeTimeout),
	}, nil
}

func (m *Manager) NewAccessToken(clientID, username, scope string, now time.Time) (*AccessToken, error) {
	expiresAt := now.Add(m.accessTokenExpiry)
	raw, err := m.creator.CreateAccessToken(username, clientID, scope, now, expiresAt)
	if err != nil {
		return nil, errors.Wrap(err, "Manager.NewAccessToken CreateAccessToken")
	}
	return &AccessToken{
		Token:     raw,
		ClientID:  clientID,
		Username:  username,
		Scope:     scope,
		ExpiresAt: expiresAt,
	}, nil
}

func (m *Manager) NewRefreshToken(clientID, username, scope string) (*RefreshToken, error) {
	suffix, err := utils.RandomString(m.refreshTokenLength)
	if err != nil {
		return nil, errors.Wrap(err, "Manager.NewRefreshToken RandomString")
	}
	return &RefreshToken{
		Token:    refreshPrefix + suffix,
		ClientID: clientID,
		Username: username,
		Scope:    scope,
	}, nil
}

// ExpiresIn converts the remaining lifetime of expiresAt into whole seconds,
// rounding down and never going negative.
func ExpiresIn(expiresAt, now time.Time) int {
	d := expiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}
