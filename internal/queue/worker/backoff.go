package worker

import (
	"math/rand/v2"
	"time"
)

// Backoff doubles from Base on every attempt, stops growing at Max and
// adds up to Jitter so retries from a burst spread out.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter time.Duration
}

var DefaultBackoff = Backoff{Base: 2 * time.Second, Max: 5 * time.Minute, Jitter: 250 * time.Millisecond}

func (b Backoff) Delay(attempt int) time.Duration {
	d := b.Base
	for i := 0; i < attempt && d < b.Max; i++ {
		d *= 2
	}
	d = min(d, b.Max)

	if b.Jitter > 0 {
		d += rand.N(b.Jitter)
	}
	return d
}
