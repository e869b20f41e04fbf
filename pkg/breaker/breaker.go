// Package breaker implements a circuit breaker used to wrap quote
// publish calls: once the bus starts erroring persistently, the breaker
// opens and publish attempts fail fast instead of piling up on a dead
// connection, until a probe request is allowed through again.
package breaker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// State represents circuit breaker state
type State int32

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

// Defaults used by NewBreaker when Config leaves the corresponding field
// at its zero value. Sized for the quote-publish path: a burst of five
// failed bus writes trips the breaker, and it waits long enough for a
// Redis reconnect to plausibly succeed before probing again.
const (
	DefaultMaxFailures = 5
	DefaultTimeout     = 30 * time.Second
	DefaultHalfOpenMax = 1
)

// Breaker implements the circuit breaker pattern
type Breaker struct {
	name        string
	maxFailures int
	timeout     time.Duration
	halfOpenMax int

	state         int32 // atomic
	failures      int32 // atomic
	successes     int32 // atomic
	lastFailure   time.Time
	halfOpenCount int32 // atomic

	mu            sync.Mutex
	onStateChange func(from, to State)
}

// Config holds circuit breaker configuration
type Config struct {
	Name          string
	MaxFailures   int
	Timeout       time.Duration
	HalfOpenMax   int
	OnStateChange func(from, to State)
}

// NewBreaker creates a breaker from cfg, substituting the package's
// quote-publish defaults for any field left at its zero value.
func NewBreaker(cfg Config) *Breaker {
	maxFailures := cfg.MaxFailures
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	halfOpenMax := cfg.HalfOpenMax
	if halfOpenMax <= 0 {
		halfOpenMax = DefaultHalfOpenMax
	}

	return &Breaker{
		name:          cfg.Name,
		maxFailures:   maxFailures,
		timeout:       timeout,
		halfOpenMax:   halfOpenMax,
		state:         int32(StateClosed),
		onStateChange: cfg.OnStateChange,
	}
}

// Execute runs the given function with circuit breaker protection
func (b *Breaker) Execute(ctx context.Context, fn func() error) error {
	if err := b.allowRequest(); err != nil {
		return err
	}

	err := fn()

	if err != nil {
		b.recordFailure()
		return err
	}

	b.recordSuccess()
	return nil
}

// allowRequest checks if a request is allowed
func (b *Breaker) allowRequest() error {
	state := State(atomic.LoadInt32(&b.state))

	switch state {
	case StateClosed:
		return nil

	case StateOpen:
		b.mu.Lock()
		if time.Since(b.lastFailure) > b.timeout {
			b.transitionTo(StateHalfOpen)
			b.mu.Unlock()
			return nil
		}
		b.mu.Unlock()
		return ErrCircuitOpen

	case StateHalfOpen:
		count := atomic.AddInt32(&b.halfOpenCount, 1)
		if count > int32(b.halfOpenMax) {
			atomic.AddInt32(&b.halfOpenCount, -1)
			return ErrTooManyRequests
		}
		return nil

	default:
		return errors.New("unknown state")
	}
}

// recordFailure records a failed request
func (b *Breaker) recordFailure() {
	state := State(atomic.LoadInt32(&b.state))

	switch state {
	case StateClosed:
		failures := atomic.AddInt32(&b.failures, 1)
		if int(failures) >= b.maxFailures {
			b.mu.Lock()
			b.lastFailure = time.Now()
			b.transitionTo(StateOpen)
			b.mu.Unlock()
		}

	case StateHalfOpen:
		b.mu.Lock()
		b.lastFailure = time.Now()
		atomic.StoreInt32(&b.halfOpenCount, 0)
		b.transitionTo(StateOpen)
		b.mu.Unlock()
	}
}

// recordSuccess records a successful request
func (b *Breaker) recordSuccess() {
	state := State(atomic.LoadInt32(&b.state))

	switch state {
	case StateClosed:
		atomic.StoreInt32(&b.failures, 0)

	case StateHalfOpen:
		successes := atomic.AddInt32(&b.successes, 1)
		if int(successes) >= b.halfOpenMax {
			b.mu.Lock()
			atomic.StoreInt32(&b.successes, 0)
			atomic.StoreInt32(&b.halfOpenCount, 0)
			b.transitionTo(StateClosed)
			b.mu.Unlock()
		}
	}
}

// transitionTo transitions to a new state. Caller must hold b.mu.
func (b *Breaker) transitionTo(newState State) {
	oldState := State(atomic.LoadInt32(&b.state))
	if oldState == newState {
		return
	}

	atomic.StoreInt32(&b.state, int32(newState))

	if b.onStateChange != nil {
		b.onStateChange(oldState, newState)
	}

	atomic.StoreInt32(&b.failures, 0)
	atomic.StoreInt32(&b.successes, 0)
}

// State returns current state
func (b *Breaker) State() State {
	return State(atomic.LoadInt32(&b.state))
}

// Failures returns current failure count
func (b *Breaker) Failures() int {
	return int(atomic.LoadInt32(&b.failures))
}

// Reset resets the circuit breaker to closed state
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	atomic.StoreInt32(&b.failures, 0)
	atomic.StoreInt32(&b.successes, 0)
	atomic.StoreInt32(&b.halfOpenCount, 0)
	b.transitionTo(StateClosed)
}

// ForceOpen forces the circuit breaker to open state
func (b *Breaker) ForceOpen() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailure = time.Now()
	b.transitionTo(StateOpen)
}
