// pkg/resource/breaker.go
package resource

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-orrery/pkg/config"
	"github.com/opd-ai/go-orrery/pkg/logging"
)

// ErrCircuitOpen is returned without attempting the call while the breaker
// is open or saturated in half-open state.
var ErrCircuitOpen = errors.New("circuit open")

// Breaker isolates a failing remote dependency so a dead asset host costs
// one timeout per probe instead of one per texture.
type Breaker struct {
	cb     *gobreaker.CircuitBreaker
	logger *logging.Logger
}

// NewBreaker creates a breaker configured from env.
func NewBreaker(name string, env *config.EnvironmentConfig, logger *logging.Logger) *Breaker {
	if logger == nil {
		logger = logging.Nop()
	}
	maxFails := env.CircuitBreakerMaxConsecutiveFails

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: env.CircuitBreakerMaxRequests,
		Interval:    env.CircuitBreakerInterval,
		Timeout:     env.CircuitBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &Breaker{
		cb:     gobreaker.NewCircuitBreaker(settings),
		logger: logger,
	}
}

// Execute runs op through the breaker.
func (b *Breaker) Execute(ctx context.Context, op func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, op()
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %s", ErrCircuitOpen, b.cb.Name())
	}
	b.logger.Debug(ctx, "guarded call failed", "breaker", b.cb.Name(), "state", b.cb.State().String(), "error", err)
	return err
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Counts returns the failure/success counts of the current interval.
func (b *Breaker) Counts() gobreaker.Counts {
	return b.cb.Counts()
}
