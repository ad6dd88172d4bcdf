package circuitbreaker

import (
	"context"
	"errors"
	"time"

	"github.com/captcha-dashboard/internal/logging"
	"github.com/captcha-dashboard/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
)

// State represents the circuit breaker state
type State string

const (
	// StateClosed means the circuit is closed and requests are allowed
	StateClosed State = "closed"
	// StateOpen means the circuit is open and requests are blocked
	StateOpen State = "open"
	// StateHalfOpen means the circuit is testing if the service has recovered
	StateHalfOpen State = "half_open"
)

// ErrCircuitOpen is returned when the circuit breaker is open
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ErrTooManyRequests is returned when too many requests are made in half-open state
var ErrTooManyRequests = errors.New("too many requests in half-open state")

// Config configures a circuit breaker
type Config struct {
	Name             string
	MinRequests      uint32        // Requests in the window before the failure rate counts
	FailureThreshold float64       // Failure ratio that opens the circuit (0.0-1.0)
	MaxConsecutive   uint32        // Consecutive failures that open the circuit regardless of rate
	Interval         time.Duration // Closed-state counting window
	Timeout          time.Duration // Time to wait before attempting half-open
	HalfOpenMaxCalls uint32        // Max calls allowed in half-open state
}

// DefaultConfig returns a default circuit breaker configuration
func DefaultConfig(name string) *Config {
	return &Config{
		Name:             name,
		MinRequests:      10,
		FailureThreshold: 0.6,
		MaxConsecutive:   5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		HalfOpenMaxCalls: 3,
	}
}

// CircuitBreaker guards calls to an external dependency
type CircuitBreaker struct {
	name string
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// NewCircuitBreaker creates a new circuit breaker
func NewCircuitBreaker(config *Config) *CircuitBreaker {
	metrics.SetBreakerState(config.Name, int(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.HalfOpenMaxCalls,
		Interval:    config.Interval,
		Timeout:     config.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if config.MaxConsecutive > 0 && counts.ConsecutiveFailures >= config.MaxConsecutive {
				return true
			}
			if counts.Requests < config.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= config.FailureThreshold
		},

		// A caller giving up is not a dependency failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetBreakerState(name, int(to))
			logger := logging.WithFields(map[string]interface{}{
				"circuitBreaker": name,
				"from":           toState(from),
				"to":             toState(to),
			})
			if to == gobreaker.StateOpen {
				logger.Warn("Circuit breaker opened due to failures")
				return
			}
			logger.Info("Circuit breaker state transition")
		},
	})

	return &CircuitBreaker{name: config.Name, cb: cb}
}

// Execute executes a function with circuit breaker protection
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := cb.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		return ErrCircuitOpen
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		return ErrTooManyRequests
	}
	return err
}

// Name returns the breaker's name
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// GetState returns the current state of the circuit breaker
func (cb *CircuitBreaker) GetState() State {
	return toState(cb.cb.State())
}

// GetStats returns statistics about the circuit breaker
func (cb *CircuitBreaker) GetStats() *Stats {
	counts := cb.cb.Counts()
	stats := &Stats{
		Name:             cb.name,
		State:            toState(cb.cb.State()),
		Failures:         counts.TotalFailures,
		Successes:        counts.TotalSuccesses,
		TotalCalls:       counts.Requests,
		ConsecutiveFails: counts.ConsecutiveFailures,
	}
	if counts.Requests > 0 {
		stats.FailureRate = float64(counts.TotalFailures) / float64(counts.Requests)
	}
	return stats
}

// Stats represents circuit breaker statistics
type Stats struct {
	Name             string  `json:"name"`
	State            State   `json:"state"`
	Failures         uint32  `json:"failures"`
	Successes        uint32  `json:"successes"`
	TotalCalls       uint32  `json:"totalCalls"`
	ConsecutiveFails uint32  `json:"consecutiveFails"`
	FailureRate      float64 `json:"failureRate"`
}

// IsOpen reports whether err came from a breaker refusing the call
func IsOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrTooManyRequests)
}

func toState(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}
