package backends

import (
	"sync"
	"time"

	"github.com/jonesrussell/goveille/internal/config"
)

// recentWindow is how many recent outcomes feed the adaptive delay.
const recentWindow = 5

// Breaker is the circuit breaker wrapping the protected backend. It enforces
// a rolling daily call quota, minimum inter-call spacing, and an escalating
// cooldown on blocking responses. All methods are safe for concurrent use.
type Breaker struct {
	mu sync.Mutex

	cfg config.ProtectedConfig

	// Timestamps of allowed calls inside the rolling window
	calls []time.Time
	// Last allowed call, zero when never called
	lastCall time.Time
	// Failures since the last success
	consecutiveFailures int
	// Cooldown expiry after a blocking response
	cooldownUntil time.Time
	// Outcomes of the last recentWindow calls, true marks a failure
	recent []bool
}

// NewBreaker creates a breaker with the given protected-backend settings.
func NewBreaker(cfg config.ProtectedConfig) *Breaker {
	return &Breaker{cfg: cfg}
}

// Allow reserves one call at now. It fails with ErrOnCooldown,
// ErrQuotaExceeded or ErrTooSoon when the call must not happen; on success
// the call is counted against the quota immediately, whatever its outcome.
func (b *Breaker) Allow(now time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Before(b.cooldownUntil) {
		return ErrOnCooldown
	}

	b.pruneLocked(now)
	if len(b.calls) >= b.cfg.DailyQuota {
		return ErrQuotaExceeded
	}

	if !b.lastCall.IsZero() && now.Sub(b.lastCall) < b.cfg.MinSpacing {
		return ErrTooSoon
	}

	b.calls = append(b.calls, now)
	b.lastCall = now
	return nil
}

// pruneLocked drops call timestamps that left the rolling 24h window.
func (b *Breaker) pruneLocked(now time.Time) {
	cutoff := now.Add(-24 * time.Hour)
	kept := b.calls[:0]
	for _, t := range b.calls {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	b.calls = kept
}

// RecordSuccess resets the consecutive-failure counter.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures = 0
	b.noteOutcomeLocked(false)
}

// RecordFailure notes a non-blocking failure for the adaptive delay.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures++
	b.noteOutcomeLocked(true)
}

// RecordBlocked notes a blocking response and starts the escalating
// cooldown. The applied cooldown duration is returned.
func (b *Breaker) RecordBlocked(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.consecutiveFailures++
	b.noteOutcomeLocked(true)

	cooldown := time.Duration(b.consecutiveFailures) * b.cfg.CooldownBase
	if cooldown > b.cfg.CooldownMax {
		cooldown = b.cfg.CooldownMax
	}
	b.cooldownUntil = now.Add(cooldown)
	return cooldown
}

func (b *Breaker) noteOutcomeLocked(failed bool) {
	b.recent = append(b.recent, failed)
	if len(b.recent) > recentWindow {
		b.recent = b.recent[len(b.recent)-recentWindow:]
	}
}

// Delay returns the jittered pre-call delay, scaled up by the failure
// fraction over the last recentWindow calls.
func (b *Breaker) Delay() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	base := jitterBetween(b.cfg.BaseDelayMin, b.cfg.BaseDelayMax)
	if len(b.recent) == 0 {
		return base
	}

	failures := 0
	for _, failed := range b.recent {
		if failed {
			failures++
		}
	}
	fraction := float64(failures) / float64(len(b.recent))
	return base + time.Duration(fraction*float64(base))
}

// CallsInWindow reports how many calls are inside the rolling window at now.
func (b *Breaker) CallsInWindow(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pruneLocked(now)
	return len(b.calls)
}
