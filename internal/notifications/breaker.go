package notifications

import (
	"sync"
	"time"
)

type breakerState int

const (
	closed breakerState = iota
	open
	probing
)

func (s breakerState) String() string {
	switch s {
	case open:
		return "open"
	case probing:
		return "half_open"
	default:
		return "closed"
	}
}

// breaker counts failures in a row. At threshold it opens for cooldown,
// then lets up to probes calls through; one success closes it again and
// one failure reopens it.
type breaker struct {
	threshold int
	cooldown  time.Duration
	probes    int
	now       func() time.Time

	mu        sync.Mutex
	state     breakerState
	failures  int
	openUntil time.Time
	inFlight  int
}

func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == open {
		if b.now().Before(b.openUntil) {
			return false
		}
		b.state = probing
		b.inFlight = 0
	}

	if b.state == probing {
		if b.inFlight >= b.probes {
			return false
		}
		b.inFlight++
	}
	return true
}

// record returns the state after the outcome and whether it changed.
func (b *breaker) record(ok bool) (breakerState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	before := b.state
	if b.state == probing && b.inFlight > 0 {
		b.inFlight--
	}

	switch {
	case ok:
		b.failures = 0
		b.state = closed
	default:
		b.failures++
		if b.state == probing || b.failures >= b.threshold {
			b.state = open
			b.openUntil = b.now().Add(b.cooldown)
		}
	}

	return b.state, b.state != before
}

// release frees a probe slot without counting an outcome.
func (b *breaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == probing && b.inFlight > 0 {
		b.inFlight--
	}
}

func (b *breaker) current() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
