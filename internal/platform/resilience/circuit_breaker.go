package resilience

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrCircuitOpen rejects calls while a breaker is shedding load from a
// failing upstream.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker guards one upstream: the league feed or a single
// lookup site. Consecutive failures trip it open; once the open window
// elapses a bounded batch of probe calls decides whether the upstream
// recovered. The upstream name travels in rejection errors so log
// lines say which dependency is dark.
type CircuitBreaker struct {
	name string
	cfg  CircuitBreakerConfig

	mu        sync.Mutex
	state     CircuitState
	failures  int
	openedAt  time.Time
	probes    int
	probeWins int
	now       func() time.Time
}

// NewCircuitBreaker builds a breaker for a named upstream. Zero config
// fields take the league feed profile.
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		name:  name,
		cfg:   cfg.WithDefaults(DefaultLeagueBreakerConfig()),
		state: CircuitStateClosed,
		now:   time.Now,
	}
}

// Name returns the upstream this breaker guards.
func (b *CircuitBreaker) Name() string {
	return b.name
}

// Allow reports whether a call may proceed. An open breaker whose
// window has elapsed moves to half-open here, and a half-open breaker
// hands out at most HalfOpenMaxReq probe slots per window.
func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			return b.reject()
		}
		b.toHalfOpen()
	}

	if b.state == CircuitStateHalfOpen {
		if b.probes >= b.cfg.HalfOpenMaxReq {
			return b.reject()
		}
		b.probes++
	}

	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		b.probeWins++
		if b.probeWins >= b.cfg.HalfOpenMaxReq {
			b.toClosed()
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.toOpen()
		}
	case CircuitStateHalfOpen:
		// One failed probe sends the breaker straight back to open.
		b.toOpen()
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		return CircuitStateHalfOpen
	}

	return b.state
}

func (b *CircuitBreaker) reject() error {
	return fmt.Errorf("%w: %s", ErrCircuitOpen, b.name)
}

func (b *CircuitBreaker) toClosed() {
	b.state = CircuitStateClosed
	b.failures = 0
	b.probes = 0
	b.probeWins = 0
	b.openedAt = time.Time{}
}

func (b *CircuitBreaker) toOpen() {
	b.state = CircuitStateOpen
	b.openedAt = b.now()
	b.probes = 0
	b.probeWins = 0
}

func (b *CircuitBreaker) toHalfOpen() {
	b.state = CircuitStateHalfOpen
	b.probes = 0
	b.probeWins = 0
}
