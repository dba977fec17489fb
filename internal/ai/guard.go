package ai

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"pdf-assistant-api/internal/shared/metrics"
	"pdf-assistant-api/internal/shared/telemetry"
)

// Guard wraps provider calls in a rate limiter and a circuit breaker. It never
// retries.
type Guard struct {
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// NewGuard allows ratePerSec calls per second; zero or less disables limiting.
func NewGuard(name string, ratePerSec float64) *Guard {
	limit := rate.Inf
	burst := 1
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
		burst = int(ratePerSec)
		if burst < 1 {
			burst = 1
		}
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 2,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			telemetry.Warn("ai.breaker_state", map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	return &Guard{breaker: breaker, limiter: rate.NewLimiter(limit, burst)}
}

// Do runs fn once when both the limiter and the breaker allow it.
func (g *Guard) Do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	start := time.Now()
	err := g.do(ctx, fn)
	metrics.ObserveAICall(operation, start, err)
	return err
}

func (g *Guard) do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := g.breaker.Execute(func() (interface{}, error) {
		return nil, fn(ctx)
	})
	return err
}

// State reports the breaker state, mostly for tests and health output.
func (g *Guard) State() string {
	return g.breaker.State().String()
}
