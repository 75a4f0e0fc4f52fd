// Package backends implements the ordered search-backend cascade with its
// protective policies: timeouts, user-agent rotation, cooldowns, a circuit
// breaker around the protected backend, and a synthetic fallback generator.
package backends

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Clock abstracts time and sleeping so pacing logic runs instantly in tests.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, returning ctx.Err() when
	// interrupted.
	Sleep(ctx context.Context, d time.Duration) error
}

// realClock is the production clock.
type realClock struct{}

// NewClock returns the production clock.
func NewClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// jitterSource is guarded because cascade workers share it.
var (
	jitterMu     sync.Mutex
	jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// jitterBetween picks a uniform random duration in [lo, hi].
func jitterBetween(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	jitterMu.Lock()
	defer jitterMu.Unlock()
	return lo + time.Duration(jitterSource.Int63n(int64(hi-lo)))
}
