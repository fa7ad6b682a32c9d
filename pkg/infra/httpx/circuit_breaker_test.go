package httpx

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_Execute(t *testing.T) {
	breaker := NewCircuitBreaker("nudenet", 30*time.Second, 3)

	assert.NoError(t, breaker.Execute(func() error { return nil }))

	err := breaker.Execute(func() error { return errors.New("connection refused") })
	assert.EqualError(t, err, "circuit nudenet: connection refused")
}

func TestCircuitBreaker_WrapsCause(t *testing.T) {
	cause := errors.New("upstream 503")
	breaker := NewCircuitBreaker("wrap", 30*time.Second, 3)

	err := breaker.Execute(func() error { return cause })

	assert.ErrorIs(t, err, cause)
}

func TestCircuitBreaker_RecoversPanics(t *testing.T) {
	breaker := NewCircuitBreaker("panics", 30*time.Second, 3)

	err := breaker.Execute(func() error { panic("nil map") })

	assert.ErrorContains(t, err, "circuit panics: panic recovered: nil map")
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	breaker := NewCircuitBreaker("open", 30*time.Second, 2)

	_ = breaker.Execute(func() error { return errors.New("first") })
	assert.Equal(t, gobreaker.StateClosed.String(), breaker.State())
	_ = breaker.Execute(func() error { return errors.New("second") })
	assert.Equal(t, gobreaker.StateOpen.String(), breaker.State())

	called := false
	err := breaker.Execute(func() error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestCircuitBreaker_Recovers(t *testing.T) {
	breaker := NewCircuitBreaker("recover", 50*time.Millisecond, 1)

	_ = breaker.Execute(func() error { return errors.New("trip") })
	assert.Equal(t, gobreaker.StateOpen.String(), breaker.State())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, gobreaker.StateHalfOpen.String(), breaker.State())

	assert.NoError(t, breaker.Execute(func() error { return nil }))
	assert.Equal(t, gobreaker.StateClosed.String(), breaker.State())
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	breaker := NewCircuitBreaker("reset", 30*time.Second, 2)

	_ = breaker.Execute(func() error { return errors.New("fail") })
	_ = breaker.Execute(func() error { return nil })
	_ = breaker.Execute(func() error { return errors.New("fail") })

	assert.Equal(t, gobreaker.StateClosed.String(), breaker.State())
}

func TestCircuitBreaker_IgnoresCallerCancellation(t *testing.T) {
	breaker := NewCircuitBreaker("cancel", 30*time.Second, 1)

	err := breaker.Execute(func() error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	err = breaker.Execute(func() error { return fmt.Errorf("classify: %w", context.DeadlineExceeded) })
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.Equal(t, gobreaker.StateClosed.String(), breaker.State())
}

func TestCircuitBreaker_StateLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	breaker := NewCircuitBreaker("logged", 30*time.Second, 1, WithStateLogger(logger))

	_ = breaker.Execute(func() error { return errors.New("down") })

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "closed", hook.LastEntry().Data["from"])
	assert.Equal(t, "open", hook.LastEntry().Data["to"])
}
