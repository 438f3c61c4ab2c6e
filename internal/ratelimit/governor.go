// Package ratelimit implements the per-backend rate-limit and retry
// governor (spec §4.H): a RateState guarded by a per-backend lock,
// exponential backoff on consecutive transient failures, and
// Retry-After-driven cooldown on 429 responses.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// state is the mutable rate-limit bookkeeping for one backend (spec's
// RateState). Mutated only through Governor's methods, each of which
// holds the backend's lock for the duration of the mutation.
type state struct {
	mu                 sync.Mutex
	nextAllowedTime    time.Time
	consecutiveFailures int
	inCooldownUntil    time.Time
}

// Governor tracks RateState per backend name. The zero value is ready to
// use; backends are registered lazily on first use.
type Governor struct {
	// BaseDelay is the backoff base; Ceiling bounds it. Defaults applied
	// by NewGovernor.
	BaseDelay time.Duration
	Ceiling   time.Duration
	Now       func() time.Time

	mu       sync.Mutex
	backends map[string]*state
}

// NewGovernor returns a Governor with sensible backoff defaults (base
// 500ms, ceiling 60s).
func NewGovernor() *Governor {
	return &Governor{
		BaseDelay: 500 * time.Millisecond,
		Ceiling:   60 * time.Second,
		Now:       time.Now,
	}
}

func (g *Governor) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *Governor) stateFor(backend string) *state {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.backends == nil {
		g.backends = make(map[string]*state)
	}
	st, ok := g.backends[backend]
	if !ok {
		st = &state{}
		g.backends[backend] = st
	}
	return st
}

// Allow reports whether a query to backend may proceed right now. When it
// returns false, the caller must treat the query as a NotFound-with-
// failed-flag outcome rather than attempting the network call (spec
// §4.H) — cooldown and explicit rate-limit backoff are not retried
// inline.
func (g *Governor) Allow(backend string) bool {
	st := g.stateFor(backend)
	st.mu.Lock()
	defer st.mu.Unlock()
	now := g.now()
	if now.Before(st.inCooldownUntil) {
		return false
	}
	return !now.Before(st.nextAllowedTime)
}

// RecordRateLimited applies a 429-class response: if retryAfter is set,
// cooldown extends to now+retryAfter; otherwise exponential backoff on
// consecutive failures is applied. After a 429 with Retry-After: T, the
// next call to the same backend is scheduled no earlier than now+T.
func (g *Governor) RecordRateLimited(backend string, retryAfter *time.Duration) {
	st := g.stateFor(backend)
	st.mu.Lock()
	defer st.mu.Unlock()
	now := g.now()
	st.consecutiveFailures++
	if retryAfter != nil {
		st.inCooldownUntil = now.Add(*retryAfter)
		st.nextAllowedTime = st.inCooldownUntil
		return
	}
	delay := backoffDelay(g.BaseDelay, g.Ceiling, st.consecutiveFailures)
	st.nextAllowedTime = now.Add(delay)
}

// RecordTransientError applies exponential backoff for a non-429
// transient failure (timeout, 5xx, decode failure).
func (g *Governor) RecordTransientError(backend string) {
	st := g.stateFor(backend)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.consecutiveFailures++
	delay := backoffDelay(g.BaseDelay, g.Ceiling, st.consecutiveFailures)
	st.nextAllowedTime = g.now().Add(delay)
}

// RecordSuccess resets the consecutive-failure counter.
func (g *Governor) RecordSuccess(backend string) {
	st := g.stateFor(backend)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.consecutiveFailures = 0
	st.nextAllowedTime = time.Time{}
}

// backoffDelay computes min(base * 2^(failures-1), ceiling): the first
// consecutive failure waits base, each further one doubles it.
func backoffDelay(base, ceiling time.Duration, failures int) time.Duration {
	if failures < 1 {
		return 0
	}
	mult := math.Pow(2, float64(failures-1))
	d := time.Duration(float64(base) * mult)
	if ceiling > 0 && d > ceiling {
		return ceiling
	}
	return d
}
