package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "xfollowers/pkg/errors"
	"xfollowers/pkg/logger"
)

// recordingSleep captures requested delays without sleeping
type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func testConfig(maxAttempts int, sleep *recordingSleep) *Config {
	return &Config{
		MaxAttempts: maxAttempts,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
		Sleep:       sleep.sleep,
		Logger:      logger.NewTestLogger(),
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	sleep := &recordingSleep{}
	calls := 0

	err := Do(func() error {
		calls++
		return nil
	}, testConfig(3, sleep))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleep.delays)
}

func TestDoRetriesTransientError(t *testing.T) {
	sleep := &recordingSleep{}
	calls := 0

	err := Do(func() error {
		calls++
		if calls < 3 {
			return errs.New(errs.ErrorTypeNetwork, "connection reset")
		}
		return nil
	}, testConfig(5, sleep))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Len(t, sleep.delays, 2)
}

func TestDoStopsOnTerminalError(t *testing.T) {
	sleep := &recordingSleep{}
	calls := 0
	terminal := errs.New(errs.ErrorTypeInsufficientAccess, "forbidden")

	err := Do(func() error {
		calls++
		return terminal
	}, testConfig(5, sleep))

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, errs.IsType(err, errs.ErrorTypeInsufficientAccess))
	assert.Empty(t, sleep.delays)
}

func TestDoExhaustsAttempts(t *testing.T) {
	sleep := &recordingSleep{}
	calls := 0

	err := Do(func() error {
		calls++
		return errs.New(errs.ErrorTypeServerError, "boom")
	}, testConfig(3, sleep))

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "max retry attempts (3) exceeded")
	assert.True(t, errs.IsType(err, errs.ErrorTypeServerError))
}

func TestDoHonorsProviderRetryAfter(t *testing.T) {
	sleep := &recordingSleep{}
	calls := 0
	rateLimited := &errs.Error{
		Type:       errs.ErrorTypeRateLimit,
		Message:    "too many requests",
		Code:       429,
		RetryAfter: 90 * time.Second,
	}

	err := Do(func() error {
		calls++
		if calls == 1 {
			return rateLimited
		}
		return nil
	}, testConfig(3, sleep))

	require.NoError(t, err)
	require.Len(t, sleep.delays, 1)
	assert.Equal(t, 90*time.Second, sleep.delays[0])
}

func TestDoWithResult(t *testing.T) {
	sleep := &recordingSleep{}
	calls := 0

	got, err := DoWithResult(func() (string, error) {
		calls++
		if calls == 1 {
			return "", errs.New(errs.ErrorTypeNetwork, "timeout")
		}
		return "value", nil
	}, testConfig(3, sleep))

	require.NoError(t, err)
	assert.Equal(t, "value", got)
	assert.Equal(t, 2, calls)
}

func TestDoContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Second},
		RetryIf:     DefaultRetryIf,
		Context:     ctx,
		Sleep:       Wait,
		Logger:      logger.NewTestLogger(),
	}

	err := Do(func() error {
		return errs.New(errs.ErrorTypeNetwork, "down")
	}, cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry cancelled")
}

func TestExponentialBackoffGrowth(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
	}

	assert.Equal(t, time.Duration(0), eb.NextDelay(0))
	assert.Equal(t, time.Second, eb.NextDelay(1))
	assert.Equal(t, 2*time.Second, eb.NextDelay(2))
	assert.Equal(t, 4*time.Second, eb.NextDelay(3))
	// Capped
	assert.Equal(t, 10*time.Second, eb.NextDelay(10))
}

func TestExponentialBackoffJitterBounds(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:    time.Second,
		MaxDelay:     time.Minute,
		Multiplier:   2.0,
		JitterFactor: 0.5,
	}

	for i := 0; i < 50; i++ {
		d := eb.NextDelay(2)
		assert.GreaterOrEqual(t, d, 1*time.Second)
		assert.LessOrEqual(t, d, 3*time.Second)
	}
}

func TestWaitZeroDelay(t *testing.T) {
	assert.NoError(t, Wait(context.Background(), 0))
}

func TestWaitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Wait(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}
