// Package observer periodically snapshots simulator state for display. It
// only reads; it has nothing to do with the refresh_token grant.
package observer

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-oauth-simulator/sessions"
	"github.com/jrsteele09/go-oauth-simulator/token"
	"github.com/rs/zerolog/log"
)

// Snapshot is what the observer sees on each tick.
type Snapshot struct {
	At      time.Time     `json:"at"`
	Session sessions.View `json:"client"`
	Ledger  token.Stats   `json:"auth_server"`
}

// SnapshotFunc reads the current state. It must not mutate anything.
type SnapshotFunc func() Snapshot

// Sink receives snapshots.
type Sink func(Snapshot)

// LogSink writes each snapshot as a debug event.
func LogSink(s Snapshot) {
	log.Debug().
		Str("flow_state", string(s.Session.FlowState)).
		Int("outstanding_auth_codes", s.Ledger.OutstandingAuthCodes).
		Int("issued_access_tokens", s.Ledger.IssuedAccessTokens).
		Int("issued_refresh_tokens", s.Ledger.IssuedRefreshTokens).
		Msg("tick")
}

type Ticker struct {
	interval time.Duration
	snapshot SnapshotFunc
	sink     Sink

	lock    sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// NewTicker creates a stopped ticker. A nil sink logs snapshots.
func NewTicker(interval time.Duration, snapshot SnapshotFunc, sink Sink) *Ticker {
	if sink == nil {
		sink = LogSink
	}
	return &Ticker{
		interval: interval,
		snapshot: snapshot,
		sink:     sink,
	}
}

// Start runs the ticker until ctx is cancelled or Stop is called. Starting a
// running ticker restarts it.
func (t *Ticker) Start(ctx context.Context) {
	t.Stop()

	t.lock.Lock()
	defer t.lock.Unlock()
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	t.running = true
	go t.loop(ctx, t.stop, t.done)
}

// Stop halts the ticker and waits for the loop to exit. It is a no-op on a
// stopped ticker.
func (t *Ticker) Stop() {
	t.lock.Lock()
	if !t.running {
		t.lock.Unlock()
		return
	}
	t.running = false
	close(t.stop)
	done := t.done
	t.lock.Unlock()

	<-done
}

func (t *Ticker) Running() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.running
}

func (t *Ticker) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			t.sink(t.snapshot())
		}
	}
}
