package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerProvider stops calling an unavailable provider for a while after
// repeated failures. Malformed replies do not count as failures.
type BreakerProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps inner with a circuit breaker that opens after
// failures consecutive unavailable errors and half-opens after timeout.
func NewBreakerProvider(inner Provider, failures uint32, timeout time.Duration, logger *zap.Logger) *BreakerProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = time.Minute
	}

	settings := gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Enrichment circuit breaker changed state",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &BreakerProvider{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Enrich implements Provider.
func (b *BreakerProvider) Enrich(ctx context.Context, word string) (Details, error) {
	var (
		details   Details
		malformed error
	)

	_, err := b.breaker.Execute(func() (interface{}, error) {
		d, err := b.inner.Enrich(ctx, word)
		if errors.Is(err, ErrMalformed) {
			malformed = err
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		details = d
		return nil, nil
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return Details{}, fmt.Errorf("%w: %s: %w", ErrUnavailable, b.inner.Name(), err)
	case err != nil:
		return Details{}, err
	case malformed != nil:
		return Details{}, malformed
	}
	return details, nil
}

// Name implements Provider.
func (b *BreakerProvider) Name() string {
	return b.inner.Name()
}

// State returns the current breaker state.
func (b *BreakerProvider) State() gobreaker.State {
	return b.breaker.State()
}
