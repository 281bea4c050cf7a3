package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:    maxRetries,
		BackoffFactor: 2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
	}
}

func TestRetry_SuccessOnFirstTry(t *testing.T) {
	counter := 0
	err := NewRetrier(fastConfig(3)).Do(context.Background(), func() error {
		counter++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, counter)
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	counter := 0
	var retried []int
	r := NewRetrier(fastConfig(3)).OnRetry(func(attempt int, err error, _ time.Duration) {
		retried = append(retried, attempt)
	})

	err := r.Do(context.Background(), func() error {
		counter++
		if counter < 3 {
			return errors.New("temporary error")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, counter)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestRetry_MaxRetriesExceeded(t *testing.T) {
	expectedErr := errors.New("still failing")
	counter := 0
	err := NewRetrier(fastConfig(2)).Do(context.Background(), func() error {
		counter++
		return expectedErr
	})

	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 3, counter)
}

func TestRetry_PermanentStopsEarly(t *testing.T) {
	notFound := errors.New("404")
	counter := 0
	err := NewRetrier(fastConfig(5)).Do(context.Background(), func() error {
		counter++
		return Permanent(notFound)
	})

	assert.Equal(t, notFound, err)
	assert.Equal(t, 1, counter)
	assert.Nil(t, Permanent(nil))
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig(3)
	cfg.InitialDelay = time.Second
	cfg.MaxDelay = time.Second

	err := NewRetrier(cfg).Do(ctx, func() error {
		cancel()
		return errors.New("operation error after cancel")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetry_BackoffCappedAtMaxDelay(t *testing.T) {
	cfg := &Config{
		MaxRetries:    3,
		BackoffFactor: 10,
		InitialDelay:  10 * time.Millisecond,
		MaxDelay:      20 * time.Millisecond,
	}
	var delays []time.Duration
	r := NewRetrier(cfg).OnRetry(func(_ int, _ error, d time.Duration) {
		delays = append(delays, d)
	})

	_ = r.Do(context.Background(), func() error { return errors.New("error") })

	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 20 * time.Millisecond}, delays)
}
