package backends

import (
	"errors"
	"fmt"
)

// Sentinel errors for breaker and cooldown refusals.
var (
	// ErrOnCooldown is returned when a backend is skipped during its cooldown.
	ErrOnCooldown = errors.New("backend on cooldown")
	// ErrQuotaExceeded is returned when the protected backend's rolling
	// daily quota is spent.
	ErrQuotaExceeded = errors.New("daily call quota exceeded")
	// ErrTooSoon is returned when a protected call arrives before the
	// minimum inter-call spacing has elapsed.
	ErrTooSoon = errors.New("minimum call spacing not elapsed")
	// ErrNoBackends is returned when the cascade is constructed without any
	// usable backend. This is the only fatal configuration error here.
	ErrNoBackends = errors.New("no backends configured")
)

// BlockedError reports an HTTP 429/403 or provider-specific block signal.
// It triggers the backend's cooldown and is never retried inside it.
type BlockedError struct {
	Backend    string
	StatusCode int
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("backend %s blocked (status %d)", e.Backend, e.StatusCode)
}

// NetworkError reports a timeout or connection failure. The cascade skips to
// the next backend.
type NetworkError struct {
	Backend string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend %s network failure: %v", e.Backend, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError reports an unexpected response shape. Treated as zero
// candidates from that backend.
type ParseError struct {
	Backend string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("backend %s parse failure: %v", e.Backend, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
