package simulator_test

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-oauth-simulator/credentials"
	"github.com/jrsteele09/go-oauth-simulator/internal/config"
	"github.com/jrsteele09/go-oauth-simulator/observer"
	"github.com/jrsteele09/go-oauth-simulator/oauth2"
	"github.com/jrsteele09/go-oauth-simulator/resource"
	"github.com/jrsteele09/go-oauth-simulator/simulator"
	"github.com/jrsteele09/go-oauth-simulator/token"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

var testStart = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newSimulator(t *testing.T, options ...simulator.Option) *simulator.Simulator {
	t.Helper()
	t.Setenv("FIXTURES_FILE", "")
	options = append([]simulator.Option{
		simulator.WithClock(simulator.NewClock(func() time.Time { return testStart })),
	}, options...)
	s, err := simulator.New(config.New(), options...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func defaultOptions(s *simulator.Simulator) simulator.WalkthroughOptions {
	username, password := s.DefaultUser()
	return simulator.WalkthroughOptions{Username: username, Password: password, Consent: true}
}

func stepNames(r *simulator.Report) []string {
	names := make([]string, 0, len(r.Steps))
	for _, s := range r.Steps {
		names = append(names, s.Name)
	}
	return names
}

func TestClock(t *testing.T) {
	c := simulator.NewClock(func() time.Time { return testStart })
	require.Equal(t, testStart, c.Now())
	c.Advance(15 * time.Second)
	c.Advance(time.Second)
	require.Equal(t, testStart.Add(16*time.Second), c.Now())

	require.WithinDuration(t, time.Now(), simulator.NewClock(nil).Now(), time.Minute)
}

func TestWalkthrough_HappyPath(t *testing.T) {
	s := newSimulator(t)

	r, err := s.Walkthrough(defaultOptions(s))
	require.NoError(t, err)
	require.True(t, r.Completed)
	require.False(t, r.Failed())
	require.Equal(t, []string{
		simulator.StepAuthorizationRequest,
		simulator.StepApproveDelegation,
		simulator.StepRequestTokens,
		simulator.StepAccessResource,
		simulator.StepVerifyToken,
	}, stepNames(r))

	tokens := r.Steps[2].Result.(*oauth2.TokenResponse)
	require.Equal(t, 15, tokens.ExpiresIn)

	profile := r.Steps[3].Result.(*resource.Response)
	require.Equal(t, "Alice", profile.Data.Name)

	require.Equal(t, token.Stats{IssuedAccessTokens: 1, IssuedRefreshTokens: 1}, s.Ledger.Stats())
}

func TestWalkthrough_ConsentDenied(t *testing.T) {
	s := newSimulator(t)
	opts := defaultOptions(s)
	opts.Consent = false

	r, err := s.Walkthrough(opts)
	require.NoError(t, err)
	require.False(t, r.Completed)
	require.True(t, r.Failed())
	require.Len(t, r.Steps, 2)

	var oerr *oauth2.Error
	require.ErrorAs(t, r.Steps[1].Error, &oerr)
	require.Equal(t, oauth2.ErrorAccessDenied, oerr.Code)
	require.Equal(t, oauth2.ReasonUserDeniedConsent, oerr.Reason)
	require.Equal(t, 0, s.Ledger.Stats().OutstandingAuthCodes)
}

func TestWalkthrough_ExpireThenRefresh(t *testing.T) {
	s := newSimulator(t)
	opts := defaultOptions(s)
	opts.Expire = true
	opts.Refreshes = 2

	r, err := s.Walkthrough(opts)
	require.NoError(t, err)
	require.True(t, r.Completed)
	require.Equal(t, []string{
		simulator.StepAuthorizationRequest,
		simulator.StepApproveDelegation,
		simulator.StepRequestTokens,
		simulator.StepAccessResource,
		simulator.StepVerifyToken,
		simulator.StepAdvanceClock,
		simulator.StepAccessResource,
		simulator.StepVerifyToken,
		simulator.StepRefresh,
		simulator.StepAccessResource,
		simulator.StepVerifyToken,
		simulator.StepRefresh,
		simulator.StepRefresh,
	}, stepNames(r))

	var rerr *resource.Error
	require.ErrorAs(t, r.Steps[6].Error, &rerr)
	require.Equal(t, http.StatusUnauthorized, rerr.Status)
	require.False(t, rerr.Details.Active)
	require.False(t, r.Steps[7].Result.(*oauth2.IntrospectionResponse).Active)

	require.Nil(t, r.Steps[9].Error)
	require.True(t, r.Steps[10].Result.(*oauth2.IntrospectionResponse).Active)

	require.Equal(t, token.Stats{IssuedAccessTokens: 4, IssuedRefreshTokens: 1}, s.Ledger.Stats())
	require.Equal(t, testStart.Add(15*time.Second), s.Clock().Now())

	statuses := s.AccessTokens()
	require.Len(t, statuses, 4)
	require.False(t, statuses[0].Active, "the first token expired")
	require.Equal(t, testStart.Add(15*time.Second), statuses[0].ExpiresAt)
	for _, st := range statuses[1:] {
		require.True(t, st.Active)
		require.Equal(t, "alice", st.Username)
		require.Len(t, st.Token, 21)
	}
}

func TestWalkthrough_ReportJSON(t *testing.T) {
	s := newSimulator(t)
	opts := defaultOptions(s)
	opts.Password = "wrong"

	r, err := s.Walkthrough(opts)
	require.NoError(t, err)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"completed": false,
		"steps": [
			{"step": "1) Authorization request", "result": "`+r.Steps[0].Result.(string)+`"},
			{"step": "2) Approve delegation", "error": {"error": "access_denied", "reason": "bad_credentials"}}
		]
	}`, string(data))
}

func TestNew_FixturesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
users:
  - username: bob
    password: builder
    profile: {id: u_2002, name: Bob, plan: Pro, favoriteColor: Orange}
clients:
  - id: demo-client
    secret: demo-secret
    redirectUri: https://demo.example/cb
`), 0o600))
	t.Setenv("FIXTURES_FILE", path)

	s, err := simulator.New(config.New())
	require.NoError(t, err)
	defer s.Close()

	username, password := s.DefaultUser()
	require.Equal(t, "bob", username)
	require.Equal(t, "demo-client", s.Client.Session().ClientID)

	r, err := s.Walkthrough(simulator.WalkthroughOptions{Username: username, Password: password, Consent: true})
	require.NoError(t, err)
	require.True(t, r.Completed)
	require.Equal(t, "Bob", r.Steps[3].Result.(*resource.Response).Data.Name)
}

func TestNew_BadFixturesFile(t *testing.T) {
	t.Setenv("FIXTURES_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := simulator.New(config.New())
	require.Error(t, err)
}

func TestWithFixtures(t *testing.T) {
	fixtures := credentials.DefaultFixtures()
	fixtures.Users[0].Profile.Name = "Alicia"
	s := newSimulator(t, simulator.WithFixtures(fixtures))

	r, err := s.Walkthrough(defaultOptions(s))
	require.NoError(t, err)
	require.Equal(t, "Alicia", r.Steps[3].Result.(*resource.Response).Data.Name)
}

func TestMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	s := newSimulator(t, simulator.WithMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))))

	_, err := s.Walkthrough(defaultOptions(s))
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names[m.Name] = true
		}
	}
	for _, name := range []string{
		"oauthsim.authorize.total",
		"oauthsim.token.total",
		"oauthsim.introspect.total",
		"oauthsim.resource.total",
		"oauthsim.ledger.entries",
	} {
		require.True(t, names[name], "missing %s", name)
	}
}

func TestObserver(t *testing.T) {
	t.Setenv("TICK_INTERVAL", "5ms")
	var ticks atomic.Int32
	s := newSimulator(t, simulator.WithObserverSink(func(snap observer.Snapshot) {
		if snap.Session.ClientSecret == "************" {
			ticks.Add(1)
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartObserver(ctx)

	_, err := s.Walkthrough(defaultOptions(s))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, time.Millisecond)
}
