package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
)

// retryableCodes is the explicit allow-list of transient API error
// codes. Anything else propagates on the first attempt.
var retryableCodes = map[string]struct{}{
	"Throttling":                  {},
	"ThrottlingException":         {},
	"TooManyRequestsException":    {},
	"RequestLimitExceeded":        {},
	"RequestThrottled":            {},
	"SlowDown":                    {},
	"ServiceUnavailable":          {},
	"ServiceUnavailableException": {},
	"InternalServerError":         {},
	"LimitExceededException":      {},
}

var permissionCodes = map[string]struct{}{
	"AccessDenied":          {},
	"AccessDeniedException": {},
	"UnauthorizedOperation": {},
	"UnauthorizedException": {},
	"Forbidden":             {},
}

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
)

// Executor retries transient upstream failures with exponential
// backoff. A call is attempted at most maxRetries+1 times; the last
// error is returned once attempts are exhausted.
type Executor struct {
	maxRetries int
	baseDelay  time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

type Option func(*Executor)

func WithMaxRetries(n int) Option {
	return func(e *Executor) { e.maxRetries = n }
}

func WithBaseDelay(d time.Duration) Option {
	return func(e *Executor) { e.baseDelay = d }
}

// WithSleeper overrides the backoff sleep, for tests.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) { e.sleep = sleep }
}

func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		maxRetries: DefaultMaxRetries,
		baseDelay:  DefaultBaseDelay,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Do runs fn, retrying allow-listed transient errors with
// baseDelay * 2^attempt backoff.
func (e *Executor) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	logger := zerolog.Ctx(ctx)

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			delay := e.baseDelay * (1 << (attempt - 1))
			logger.Warn().
				Str("op", op).
				Int("attempt", attempt).
				Dur("delay", delay).
				Err(lastErr).
				Msg("retrying transient error")
			if err := e.sleep(ctx, delay); err != nil {
				return err
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

// IsTransient reports whether the error carries an allow-listed
// transient API error code.
func IsTransient(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	_, ok := retryableCodes[apiErr.ErrorCode()]
	return ok
}

// IsPermissionDenied reports whether the error is an authorization
// failure; these are never retried and surface immediately as
// batch-level errors.
func IsPermissionDenied(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	_, ok := permissionCodes[apiErr.ErrorCode()]
	return ok
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
