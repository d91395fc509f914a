package pacer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/fserrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordSleeps returns a SleepOption which records the sleeps asked for
func recordSleeps(sleeps *[]time.Duration) Option {
	return SleepOption(func(ctx context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return ctx.Err()
	})
}

// failThenSucceed returns a Paced which fails k times with code then succeeds
func failThenSucceed(k int, code int, calls *int) Paced {
	return func() (bool, error) {
		*calls++
		if *calls <= k {
			err := fserrors.NewStatusError(code, nil)
			return fserrors.ShouldRetry(err), err
		}
		return false, nil
	}
}

func TestNew(t *testing.T) {
	p := New()
	assert.Equal(t, 6, p.retries)
	assert.Equal(t, time.Second, p.baseSleep)
	assert.Nil(t, p.limiter)
	assert.NotNil(t, p.sleep)
}

func TestNewFromConfig(t *testing.T) {
	ctx, ci := fs.AddConfig(context.Background())
	ci.LowLevelRetries = 3
	ci.RetryBaseSleep = time.Millisecond
	ci.TPSLimit = 0
	p := NewFromConfig(ctx)
	assert.Equal(t, 3, p.Retries())
	assert.Equal(t, time.Millisecond, p.baseSleep)
	assert.Nil(t, p.limiter)

	ci.TPSLimit = 5
	p = NewFromConfig(ctx)
	require.NotNil(t, p.limiter)
}

func TestOptions(t *testing.T) {
	p := New(RetriesOption(0), BaseSleepOption(time.Millisecond), RateLimitOption(10, 0))
	assert.Equal(t, 1, p.retries)
	assert.Equal(t, time.Millisecond, p.baseSleep)
	require.NotNil(t, p.limiter)
	assert.Equal(t, 1, p.limiter.Burst())

	p = New(RateLimitOption(10, 5), RateLimitOption(0, 5))
	assert.Nil(t, p.limiter)
}

func TestBackoff(t *testing.T) {
	p := New()
	for _, test := range []struct {
		try  int
		want time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 16 * time.Second},
	} {
		assert.Equal(t, test.want, p.Backoff(test.try), test.try)
	}
}

func TestCallTransientThenSuccess(t *testing.T) {
	ctx := context.Background()
	for k := 0; k <= 5; k++ {
		var sleeps []time.Duration
		calls := 0
		p := New(recordSleeps(&sleeps))
		err := p.Call(ctx, failThenSucceed(k, 503, &calls))
		require.NoError(t, err, k)
		assert.Equal(t, k+1, calls)
		require.Equal(t, k, len(sleeps))
		for i, d := range sleeps {
			assert.Equal(t, time.Second<<uint(i), d)
		}
	}
}

func TestCallRetriesExhausted(t *testing.T) {
	ctx := context.Background()
	for _, k := range []int{6, 7, 100} {
		var sleeps []time.Duration
		calls := 0
		p := New(recordSleeps(&sleeps))
		err := p.Call(ctx, failThenSucceed(k, 429, &calls))
		require.Error(t, err)
		assert.True(t, errors.Is(err, fserrors.ErrorRetriesExhausted))
		code, ok := fserrors.Status(err)
		assert.True(t, ok)
		assert.Equal(t, 429, code)
		assert.Equal(t, 6, calls)
		assert.Equal(t, []time.Duration{
			1 * time.Second,
			2 * time.Second,
			4 * time.Second,
			8 * time.Second,
			16 * time.Second,
		}, sleeps)
	}
}

func TestCallFatal(t *testing.T) {
	var sleeps []time.Duration
	calls := 0
	p := New(recordSleeps(&sleeps))
	err := p.Call(context.Background(), failThenSucceed(3, 404, &calls))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fserrors.ErrorNotFound))
	assert.False(t, errors.Is(err, fserrors.ErrorRetriesExhausted))
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeps)
}

func TestCallSingleAttempt(t *testing.T) {
	calls := 0
	p := New(RetriesOption(1), SleepOption(func(ctx context.Context, d time.Duration) error {
		t.Fatal("shouldn't sleep")
		return nil
	}))
	err := p.Call(context.Background(), failThenSucceed(1, 500, &calls))
	assert.True(t, errors.Is(err, fserrors.ErrorRetriesExhausted))
	assert.Equal(t, 1, calls)
}

func TestCallContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	p := New(SleepOption(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))
	err := p.Call(ctx, failThenSucceed(3, 503, &calls))
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 1, calls)

	// already cancelled - fn is never called
	calls = 0
	err = p.Call(ctx, failThenSucceed(0, 503, &calls))
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 0, calls)
}

func TestCallRealSleep(t *testing.T) {
	calls := 0
	p := New(BaseSleepOption(time.Millisecond))
	start := time.Now()
	err := p.Call(context.Background(), failThenSucceed(2, 500, &calls))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, time.Since(start) >= 3*time.Millisecond)
}

func TestCallRateLimited(t *testing.T) {
	calls := 0
	p := New(RateLimitOption(1000, 1))
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Call(context.Background(), failThenSucceed(0, 500, &calls)))
	}
	assert.Equal(t, 3, calls)
}
