// Package circuitbreaker provides circuit breaker protection for the persistence backend.
package circuitbreaker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrTooManyRequests is returned when the half-open probe quota is used up.
	ErrTooManyRequests = errors.New("circuit breaker is half-open: too many requests")
)

// State represents the state of the circuit breaker.
type State int

const (
	// StateClosed means the circuit is closed and requests pass through normally.
	StateClosed State = iota
	// StateOpen means the circuit is open and requests are rejected immediately.
	StateOpen
	// StateHalfOpen means the circuit is half-open, allowing probe requests.
	StateHalfOpen
)

// String returns the string representation of the state.
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

func fromGobreaker(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}

// Config holds circuit breaker configuration.
type Config struct {
	// FailureThreshold is the number of consecutive failures before opening the circuit.
	FailureThreshold int
	// SuccessThreshold is the number of consecutive half-open successes needed to close the circuit.
	SuccessThreshold int
	// Timeout is the duration to wait before attempting to half-open the circuit.
	Timeout time.Duration
	// Name is the name of the circuit breaker (for logging).
	Name string
	// Ignore reports errors that are returned to the caller without counting as failures.
	Ignore func(error) bool
}

// DefaultConfig returns a default circuit breaker configuration.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
		Name:             "circuit-breaker",
	}
}

// CircuitBreaker wraps gobreaker with the logging of the service.
type CircuitBreaker struct {
	cb     *gobreaker.CircuitBreaker
	config Config
}

// New creates a new circuit breaker with the given configuration.
func New(config Config) *CircuitBreaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 1
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = 1
	}
	threshold := uint32(config.FailureThreshold)

	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: uint32(config.SuccessThreshold),
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			event := log.Info()
			if to == gobreaker.StateOpen {
				event = log.Warn()
			}
			event.
				Str("circuit_breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}

	return &CircuitBreaker{
		cb:     gobreaker.NewCircuitBreaker(settings),
		config: config,
	}
}

// Execute executes a function with circuit breaker protection.
// Returns ErrCircuitOpen if the circuit is open.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var ignored error
	_, err := cb.cb.Execute(func() (interface{}, error) {
		err := fn()
		if err != nil && cb.config.Ignore != nil && cb.config.Ignore(err) {
			ignored = err
			return nil, nil
		}
		return nil, err
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		return ErrCircuitOpen
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		return ErrTooManyRequests
	case err != nil:
		return err
	}
	return ignored
}

// Name returns the circuit breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.config.Name
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() State {
	return fromGobreaker(cb.cb.State())
}

// Stats holds circuit breaker statistics.
type Stats struct {
	Name          string `json:"name"`
	State         string `json:"state"`
	FailureCount  int    `json:"failure_count"`
	SuccessCount  int    `json:"success_count"`
	TotalRequests int    `json:"total_requests"`
	IsHealthy     bool   `json:"is_healthy"`
}

// GetStats returns current circuit breaker statistics.
func (cb *CircuitBreaker) GetStats() Stats {
	state := cb.State()
	counts := cb.cb.Counts()
	return Stats{
		Name:          cb.config.Name,
		State:         state.String(),
		FailureCount:  int(counts.ConsecutiveFailures),
		SuccessCount:  int(counts.ConsecutiveSuccesses),
		TotalRequests: int(counts.Requests),
		IsHealthy:     state == StateClosed,
	}
}

// Registry hands out one circuit breaker per backend name.
type Registry struct {
	mu       sync.Mutex
	base     Config
	breakers map[string]*CircuitBreaker
}

// NewRegistry creates a registry whose breakers share base, except for the name.
func NewRegistry(base Config) *Registry {
	return &Registry{base: base, breakers: make(map[string]*CircuitBreaker)}
}

// Get returns the circuit breaker for name, creating it on first use.
func (r *Registry) Get(name string) *CircuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cb, ok := r.breakers[name]; ok {
		return cb
	}
	cfg := r.base
	cfg.Name = name
	cb := New(cfg)
	r.breakers[name] = cb
	return cb
}

// Status returns the stats of every breaker, sorted by name.
func (r *Registry) Status() []Stats {
	r.mu.Lock()
	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	r.mu.Unlock()
	sort.Strings(names)

	stats := make([]Stats, 0, len(names))
	for _, name := range names {
		stats = append(stats, r.Get(name).GetStats())
	}
	return stats
}

// Healthy reports whether no breaker is open.
func (r *Registry) Healthy() bool {
	for _, s := range r.Status() {
		if s.State == StateOpen.String() {
			return false
		}
	}
	return true
}
