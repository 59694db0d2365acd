package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

type CircuitBreakerConfig struct {
	FailureThreshold int
	CoolDown         time.Duration
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{FailureThreshold: 5, CoolDown: 15 * time.Second}
}

// CircuitBreaker stops calls to an unreachable dependency for a cool-down period,
// then lets a single trial call through. Its outcome closes or re-opens it.
type CircuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	coolDown         time.Duration

	state    CircuitState
	failures int
	openedAt time.Time
	probing  bool
	now      func() time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.CoolDown <= 0 {
		cfg.CoolDown = defaults.CoolDown
	}
	return &CircuitBreaker{
		failureThreshold: cfg.FailureThreshold,
		coolDown:         cfg.CoolDown,
		state:            CircuitStateClosed,
		now:              time.Now,
	}
}

// SetClock replaces the time source. Tests only.
func (b *CircuitBreaker) SetClock(now func() time.Time) {
	b.mu.Lock()
	b.now = now
	b.mu.Unlock()
}

func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateOpen:
		if b.now().Sub(b.openedAt) < b.coolDown {
			return ErrCircuitOpen
		}
		b.state = CircuitStateHalfOpen
		b.probing = true
	case CircuitStateHalfOpen:
		if b.probing {
			return ErrCircuitOpen
		}
		b.probing = true
	}
	return nil
}

// Record reports the outcome of a call admitted by Allow.
func (b *CircuitBreaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.state = CircuitStateClosed
		b.failures = 0
		b.probing = false
		return
	}

	b.failures++
	if b.state == CircuitStateHalfOpen || b.failures >= b.failureThreshold {
		b.state = CircuitStateOpen
		b.openedAt = b.now()
		b.probing = false
	}
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
