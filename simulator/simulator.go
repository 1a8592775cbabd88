// Package simulator assembles the credential store, ledger, both servers and
// the client flow controller into one runnable simulation.
package simulator

import (
	"context"
	"time"

	"github.com/jrsteele09/go-oauth-simulator/auth"
	"github.com/jrsteele09/go-oauth-simulator/credentials"
	"github.com/jrsteele09/go-oauth-simulator/flow"
	"github.com/jrsteele09/go-oauth-simulator/instrumentation"
	"github.com/jrsteele09/go-oauth-simulator/internal/config"
	"github.com/jrsteele09/go-oauth-simulator/internal/utils"
	"github.com/jrsteele09/go-oauth-simulator/observer"
	"github.com/jrsteele09/go-oauth-simulator/resource"
	"github.com/jrsteele09/go-oauth-simulator/token"
	"github.com/jrsteele09/go-oauth-simulator/token/jwt"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/metric"
)

const accessTokenDisplayLen = 18

type Simulator struct {
	config      config.Config
	clock       *Clock
	fixtures    *credentials.Fixtures
	Credentials *credentials.Store
	Ledger      *token.Ledger
	Auth        *auth.AuthorizationService
	Resource    *resource.Server
	Client      *flow.Controller
	Metrics     *instrumentation.Metrics

	meterProvider metric.MeterProvider
	registration  metric.Registration
	observer      *observer.Ticker
	sink          observer.Sink
}

type Option func(*Simulator)

// WithMeterProvider records metrics on provider instead of the no-op provider.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(s *Simulator) {
		s.meterProvider = provider
	}
}

func WithClock(clock *Clock) Option {
	return func(s *Simulator) {
		s.clock = clock
	}
}

// WithFixtures overrides the fixtures otherwise read from FIXTURES_FILE.
func WithFixtures(f *credentials.Fixtures) Option {
	return func(s *Simulator) {
		s.fixtures = f
	}
}

// WithObserverSink sets where observer snapshots go. The default logs them.
func WithObserverSink(sink observer.Sink) Option {
	return func(s *Simulator) {
		s.sink = sink
	}
}

// New wires a simulator from cfg. The first registered client is the one the
// flow controller acts as.
func New(cfg config.Config, options ...Option) (*Simulator, error) {
	s := &Simulator{config: cfg}
	for _, opt := range options {
		opt(s)
	}
	if s.clock == nil {
		s.clock = NewClock(time.Now)
	}

	if err := s.loadCredentials(); err != nil {
		return nil, errors.Wrap(err, "[simulator.New] failed to load credentials")
	}

	var err error
	s.Metrics, err = instrumentation.New(s.meterProvider)
	if err != nil {
		return nil, errors.Wrap(err, "[simulator.New] failed to create metrics")
	}

	s.Ledger = token.NewLedger()
	tokenManager := token.NewManager(
		jwt.NewCreator(cfg.GetIssuer(), cfg.GetAudience(), cfg.GetSignatureLength()),
		token.WithTokenExpiry(cfg.GetAuthCodeTimeout(), cfg.GetDefaultAccessTokenExpiry()),
		token.WithKeyLengths(cfg.GetCodeGenerationLength(), cfg.GetRefreshTokenLength()),
	)

	s.Auth, err = auth.NewAuthorizationService(s.Credentials, s.Ledger, tokenManager,
		auth.WithNowTime(s.clock.Now),
		auth.WithMetrics(s.Metrics),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[simulator.New] failed to create authorization service")
	}

	s.Resource, err = resource.NewServer(s.Auth, s.Credentials.Users, cfg.GetRequiredScope(), resource.WithMetrics(s.Metrics))
	if err != nil {
		return nil, errors.Wrap(err, "[simulator.New] failed to create resource server")
	}

	s.Client, err = flow.NewController(s.Auth, s.Resource, flow.Settings{
		Client:      s.fixtures.Clients[0],
		Scope:       cfg.GetRequiredScope(),
		Issuer:      cfg.GetIssuer(),
		StateLength: cfg.GetStateLength(),
	}, flow.WithNowTime(s.clock.Now))
	if err != nil {
		return nil, errors.Wrap(err, "[simulator.New] failed to create client flow controller")
	}

	s.registration, err = s.Metrics.ObserveLedger(s.Ledger.Stats)
	if err != nil {
		return nil, errors.Wrap(err, "[simulator.New] failed to observe ledger")
	}

	s.observer = observer.NewTicker(cfg.GetTickInterval(), s.Snapshot, s.sink)

	log.Info().
		Str("client_id", s.fixtures.Clients[0].ID).
		Int("users", len(s.fixtures.Users)).
		Int("clients", len(s.fixtures.Clients)).
		Str("issuer", cfg.GetIssuer()).
		Msg("simulator ready")
	return s, nil
}

func (s *Simulator) loadCredentials() error {
	if s.fixtures == nil {
		if path := s.config.GetFixturesFile(); path != "" {
			f, err := credentials.LoadFixtures(path)
			if err != nil {
				return err
			}
			s.fixtures = f
		} else {
			s.fixtures = credentials.DefaultFixtures()
		}
	}

	store, err := credentials.New(s.fixtures)
	if err != nil {
		return err
	}
	s.Credentials = store
	return nil
}

func (s *Simulator) Clock() *Clock {
	return s.clock
}

// DefaultUser returns the first fixture user, the one the walkthrough logs in as.
func (s *Simulator) DefaultUser() (username, password string) {
	u := s.fixtures.Users[0]
	return u.Username, u.Password
}

// Snapshot reads the client session and ledger sizes. Secrets stay masked.
func (s *Simulator) Snapshot() observer.Snapshot {
	return observer.Snapshot{
		At:      s.clock.Now(),
		Session: s.Client.View(false),
		Ledger:  s.Ledger.Stats(),
	}
}

// AccessTokenStatus is one ledger access token as judged at the simulated now.
type AccessTokenStatus struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
	Active    bool      `json:"active"`
}

// AccessTokens lists every issued access token, oldest expiry first. Expired
// tokens are listed as inactive; nothing is removed.
func (s *Simulator) AccessTokens() []AccessTokenStatus {
	now := s.clock.Now()
	list := s.Ledger.ListAccessTokens()
	out := make([]AccessTokenStatus, 0, len(list))
	for _, t := range list {
		out = append(out, AccessTokenStatus{
			Token:     utils.Truncate(t.Token, accessTokenDisplayLen),
			Username:  t.Username,
			ExpiresAt: t.ExpiresAt,
			Active:    t.Active(now),
		})
	}
	return out
}

// StartObserver begins periodic snapshots until ctx is done or Close is called.
func (s *Simulator) StartObserver(ctx context.Context) {
	s.observer.Start(ctx)
}

// Close stops the observer and the ledger gauge. Calling it again is a no-op.
func (s *Simulator) Close() error {
	s.observer.Stop()
	if s.registration != nil {
		reg := s.registration
		s.registration = nil
		if err := reg.Unregister(); err != nil {
			return errors.Wrap(err, "[simulator.Close] failed to unregister ledger observer")
		}
	}
	return nil
}
