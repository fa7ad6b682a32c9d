package httpx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// CircuitBreaker guards calls to a remote dependency so a dead endpoint
// fails fast instead of stalling every image for its full timeout.
type CircuitBreaker interface {
	Execute(fn func() error) error
	State() string
}

type BreakerOption func(*gobreaker.Settings)

// WithStateLogger logs every transition of the breaker.
func WithStateLogger(logger *logrus.Logger) BreakerOption {
	return func(s *gobreaker.Settings) {
		s.OnStateChange = func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		}
	}
}

type breaker struct {
	cb *gobreaker.CircuitBreaker
}

// NewCircuitBreaker opens after maxFailures consecutive failures and lets a
// single probe through once timeout has elapsed. Cancelled or expired
// contexts are the caller's doing and never count as failures.
func NewCircuitBreaker(name string, timeout time.Duration, maxFailures uint32, opts ...BreakerOption) CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
	}
	for _, opt := range opts {
		opt(&settings)
	}
	return &breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *breaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (_ interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic recovered: %v", r)
			}
		}()
		return nil, fn()
	})
	if err != nil {
		return fmt.Errorf("circuit %s: %w", b.cb.Name(), err)
	}
	return nil
}

func (b *breaker) State() string {
	return b.cb.State().String()
}
