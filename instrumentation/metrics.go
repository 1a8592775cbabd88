package instrumentation

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/jrsteele09/go-oauth-simulator/oauth2"
	"github.com/jrsteele09/go-oauth-simulator/token"
)

const meterName = "github.com/jrsteele09/go-oauth-simulator"

const outcomeOK = "ok"

// Metrics holds the metric instruments for the simulator.
type Metrics struct {
	meter metric.Meter

	AuthorizeTotal  metric.Int64Counter
	TokenTotal      metric.Int64Counter
	IntrospectTotal metric.Int64Counter
	ResourceTotal   metric.Int64Counter
	LedgerEntries   metric.Int64ObservableGauge
}

// New creates and registers all instruments on provider. A nil provider
// falls back to a no-op provider.
func New(provider metric.MeterProvider) (*Metrics, error) {
	if provider == nil {
		provider = noop.NewMeterProvider()
	}
	m := &Metrics{meter: provider.Meter(meterName)}

	var err error
	m.AuthorizeTotal, err = m.meter.Int64Counter(
		"oauthsim.authorize.total",
		metric.WithDescription("Authorization requests by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorize counter: %w", err)
	}

	m.TokenTotal, err = m.meter.Int64Counter(
		"oauthsim.token.total",
		metric.WithDescription("Token requests by grant type and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token counter: %w", err)
	}

	m.IntrospectTotal, err = m.meter.Int64Counter(
		"oauthsim.introspect.total",
		metric.WithDescription("Introspection requests by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create introspect counter: %w", err)
	}

	m.ResourceTotal, err = m.meter.Int64Counter(
		"oauthsim.resource.total",
		metric.WithDescription("Protected resource requests by HTTP-style status"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource counter: %w", err)
	}

	m.LedgerEntries, err = m.meter.Int64ObservableGauge(
		"oauthsim.ledger.entries",
		metric.WithDescription("Entries currently held in the token ledger, expired ones included"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger gauge: %w", err)
	}

	return m, nil
}

// Noop returns Metrics backed by the no-op provider.
func Noop() *Metrics {
	m, err := New(noop.NewMeterProvider())
	if err != nil {
		panic(err) // the no-op provider never fails
	}
	return m
}

func (m *Metrics) RecordAuthorize(ctx context.Context, err error) {
	m.AuthorizeTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome(err))))
}

func (m *Metrics) RecordToken(ctx context.Context, grantType oauth2.GrantType, err error) {
	m.TokenTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("grant_type", string(grantType)),
		attribute.String("outcome", outcome(err)),
	))
}

func (m *Metrics) RecordIntrospect(ctx context.Context, active bool) {
	m.IntrospectTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("active", active)))
}

func (m *Metrics) RecordResource(ctx context.Context, status int) {
	m.ResourceTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", strconv.Itoa(status))))
}

// ObserveLedger reports stats() through the ledger gauge on every collection.
// Unregister the returned registration to stop observing.
func (m *Metrics) ObserveLedger(stats func() token.Stats) (metric.Registration, error) {
	return m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := stats()
		o.ObserveInt64(m.LedgerEntries, int64(s.OutstandingAuthCodes), metric.WithAttributes(attribute.String("kind", "authorization_code")))
		o.ObserveInt64(m.LedgerEntries, int64(s.IssuedAccessTokens), metric.WithAttributes(attribute.String("kind", "access_token")))
		o.ObserveInt64(m.LedgerEntries, int64(s.IssuedRefreshTokens), metric.WithAttributes(attribute.String("kind", "refresh_token")))
		return nil
	}, m.LedgerEntries)
}

// outcome is "ok" for nil and the error code for protocol errors.
func outcome(err error) string {
	if err == nil {
		return outcomeOK
	}
	var oerr *oauth2.Error
	if errors.As(err, &oerr) {
		return oerr.Code
	}
	return "internal_error"
}
