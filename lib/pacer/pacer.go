// Package pacer makes pacing and retrying API calls easy
package pacer

import (
	"context"
	"sync"
	"time"

	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/fserrors"
	"github.com/rclone/driveclone/lib/metrics"
	"golang.org/x/time/rate"
)

// Defaults for the retry policy
const (
	DefaultRetries   = 6
	DefaultBaseSleep = time.Second
)

// Paced is a function which is called by the Call method.  It
// should return a boolean, true if it would like to be retried, and
// an error.  This error may be returned or returned wrapped in a
// retries exhausted error.
type Paced func() (bool, error)

// SleepFn waits for d or until ctx is done
type SleepFn func(ctx context.Context, d time.Duration) error

// Pacer state
type Pacer struct {
	mu        sync.Mutex
	retries   int           // total number of attempts for Call
	baseSleep time.Duration // sleep after the first failed attempt
	limiter   *rate.Limiter // optional limit on calls per second
	sleep     SleepFn
}

// Option is used to configure a Pacer
type Option func(*Pacer)

// RetriesOption sets the maximum number of attempts for each call
func RetriesOption(retries int) Option {
	return func(p *Pacer) {
		if retries < 1 {
			retries = 1
		}
		p.retries = retries
	}
}

// BaseSleepOption sets the sleep after the first failed attempt.
// Each further failure doubles it.
func BaseSleepOption(d time.Duration) Option {
	return func(p *Pacer) {
		p.baseSleep = d
	}
}

// RateLimitOption limits calls to qps per second with bursts of
// burst. qps <= 0 disables the limit.
func RateLimitOption(qps float64, burst int) Option {
	return func(p *Pacer) {
		if qps <= 0 {
			p.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(qps), burst)
	}
}

// SleepOption replaces the function used to wait between attempts
func SleepOption(sleep SleepFn) Option {
	return func(p *Pacer) {
		p.sleep = sleep
	}
}

// New returns a Pacer with sensible defaults
func New(options ...Option) *Pacer {
	p := &Pacer{
		retries:   DefaultRetries,
		baseSleep: DefaultBaseSleep,
		sleep:     contextSleep,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// NewFromConfig returns a Pacer configured from the config in ctx
func NewFromConfig(ctx context.Context, options ...Option) *Pacer {
	ci := fs.GetConfig(ctx)
	options = append([]Option{
		RetriesOption(ci.LowLevelRetries),
		BaseSleepOption(ci.RetryBaseSleep),
		RateLimitOption(ci.TPSLimit, ci.TPSLimitBurst),
	}, options...)
	return New(options...)
}

// contextSleep sleeps for d unless ctx is cancelled first
func contextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retries returns the maximum number of attempts for each call
func (p *Pacer) Retries() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.retries
}

// Backoff returns the sleep after failed attempt number try
// (1-indexed), which is baseSleep * 2^(try-1)
func (p *Pacer) Backoff(try int) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if try < 1 {
		try = 1
	}
	return p.baseSleep << uint(try-1)
}

// beginCall waits for the rate limiter if there is one
func (p *Pacer) beginCall(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	limiter := p.limiter
	p.mu.Unlock()
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

// Call paces the remote operations to not exceed the limits and
// retries on transient errors.
//
// This calls fn, expecting it to return a retry flag and an
// error. If the last attempt still wants a retry the error is
// returned wrapped with fserrors.RetriesExhausted.
func (p *Pacer) Call(ctx context.Context, fn Paced) (err error) {
	retries := p.Retries()
	var again bool
	for try := 1; try <= retries; try++ {
		if err = p.beginCall(ctx); err != nil {
			return err
		}
		again, err = fn()
		metrics.ObserveCall(err)
		if !again {
			return err
		}
		if try == retries {
			break
		}
		sleepTime := p.Backoff(try)
		metrics.RemoteRetries.Inc()
		fs.Debugf("pacer", "Transient error on attempt %d/%d, sleeping %v: %v", try, retries, sleepTime, err)
		if sleepErr := p.sleep(ctx, sleepTime); sleepErr != nil {
			return sleepErr
		}
	}
	return fserrors.RetriesExhausted(err, retries)
}
