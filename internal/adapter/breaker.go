package adapter

import "github.com/captcha-dashboard/internal/circuitbreaker"

// BreakerReporter exposes the circuit breaker guarding a client
type BreakerReporter interface {
	Breaker() *circuitbreaker.CircuitBreaker
}

var (
	_ BreakerReporter = (*OpenAIClient)(nil)
	_ BreakerReporter = (*PayPalClient)(nil)
)

// Breaker returns the breaker guarding completion calls
func (c *OpenAIClient) Breaker() *circuitbreaker.CircuitBreaker {
	return c.breaker
}

// Breaker returns the breaker guarding PayPal calls
func (c *PayPalClient) Breaker() *circuitbreaker.CircuitBreaker {
	return c.breaker
}
