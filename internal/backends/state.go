package backends

import (
	"sync"
	"time"
)

// State is the mutable record for one backend. Mutated only through the
// Registry, which guards it for concurrent cascade workers.
type State struct {
	// Successful calls
	Successes int64 `json:"successes"`
	// Failed calls, any error class
	Failures int64 `json:"failures"`
	// Last call timestamp, zero when never called
	LastCall time.Time `json:"last_call"`
	// Cooldown expiry, zero when not cooling down
	CooldownUntil time.Time `json:"cooldown_until"`
}

// StateRegistry tracks per-backend call state across the whole process.
type StateRegistry struct {
	mu     sync.Mutex
	states map[string]*State
}

// NewStateRegistry creates an empty registry.
func NewStateRegistry() *StateRegistry {
	return &StateRegistry{states: make(map[string]*State)}
}

func (r *StateRegistry) state(name string) *State {
	s, ok := r.states[name]
	if !ok {
		s = &State{}
		r.states[name] = s
	}
	return s
}

// RecordSuccess notes a successful call at now.
func (r *StateRegistry) RecordSuccess(name string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.state(name)
	s.Successes++
	s.LastCall = now
}

// RecordFailure notes a failed call at now.
func (r *StateRegistry) RecordFailure(name string, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.state(name)
	s.Failures++
	s.LastCall = now
}

// SetCooldown blocks the backend until the given time.
func (r *StateRegistry) SetCooldown(name string, until time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state(name).CooldownUntil = until
}

// OnCooldown reports whether the backend is cooling down at now.
func (r *StateRegistry) OnCooldown(name string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return now.Before(r.state(name).CooldownUntil)
}

// Snapshot returns a copy of every backend's state, keyed by name.
func (r *StateRegistry) Snapshot() map[string]State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]State, len(r.states))
	for name, s := range r.states {
		out[name] = *s
	}
	return out
}
