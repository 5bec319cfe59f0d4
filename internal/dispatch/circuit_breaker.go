package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// circuitBreakerState is the state of a circuitBreaker.
type circuitBreakerState int

const (
	stateClosed circuitBreakerState = iota
	stateOpen
	stateHalfOpen
)

// circuitBreaker guards the dial-to-master call made during election
// (assigner invocations are not guarded): once a run of failures
// crosses maxFailures it stops trying for
// resetTimeout, then allows a handful of half-open probes before fully
// closing again.
type circuitBreaker struct {
	mu           sync.Mutex
	state        circuitBreakerState
	failureCount int
	successCount int
	nextRetry    time.Time

	maxFailures   int
	resetTimeout  time.Duration
	halfOpenLimit int
}

func newCircuitBreaker(maxFailures int, resetTimeout time.Duration, halfOpenLimit int) *circuitBreaker {
	return &circuitBreaker{
		maxFailures:   maxFailures,
		resetTimeout:  resetTimeout,
		halfOpenLimit: halfOpenLimit,
	}
}

// execute runs operation if the breaker currently allows it.
func (cb *circuitBreaker) execute(_ context.Context, operation func() error) error {
	if !cb.allow() {
		return fmt.Errorf("circuit breaker open: refusing to attempt")
	}
	if err := operation(); err != nil {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return nil
}

func (cb *circuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		return true
	case stateOpen:
		if time.Now().After(cb.nextRetry) {
			cb.state = stateHalfOpen
			cb.successCount = 0
			return true
		}
		return false
	case stateHalfOpen:
		return cb.successCount < cb.halfOpenLimit
	default:
		return false
	}
}

func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount = 0
	if cb.state == stateHalfOpen {
		cb.successCount++
		if cb.successCount >= cb.halfOpenLimit {
			cb.state = stateClosed
		}
	}
}

func (cb *circuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	if cb.state == stateHalfOpen {
		cb.state = stateOpen
		cb.nextRetry = time.Now().Add(cb.resetTimeout)
	} else if cb.failureCount >= cb.maxFailures {
		cb.state = stateOpen
		cb.nextRetry = time.Now().Add(cb.resetTimeout)
	}
}

func (cb *circuitBreaker) currentState() circuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
