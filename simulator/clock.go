package simulator

import (
	"sync"
	"time"
)

// Clock is wall time plus an offset that can be moved forward, so expiry can
// be shown without waiting for it.
type Clock struct {
	base   func() time.Time
	offset time.Duration
	lock   sync.RWMutex
}

func NewClock(base func() time.Time) *Clock {
	if base == nil {
		base = time.Now
	}
	return &Clock{base: base}
}

func (c *Clock) Now() time.Time {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.base().Add(c.offset)
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.offset += d
}
