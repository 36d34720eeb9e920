package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"verbum-lector/internal/config"
)

// RetryConfig controls how DoWithRetryContext backs off.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	BackoffFactor   float64
	RetryableStatus []int
}

// DefaultRetryConfig retries rate limiting and gateway failures.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   config.DefaultMaxRetries,
		InitialDelay:  config.DefaultRetryDelayBase,
		BackoffFactor: 2,
		RetryableStatus: []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
		},
	}
}

// StatusError reports a retryable status seen on a non-final attempt.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("HTTP %d", e.Code) }

// DoWithRetryContext sends req until it gets a non-retryable response or
// runs out of attempts. The final attempt's response is returned whatever its
// status. A request body is replayed through GetBody, which http.NewRequest
// sets for bytes and strings readers.
func DoWithRetryContext(ctx context.Context, client *http.Client, req *http.Request, cfg RetryConfig) (*http.Response, error) {
	attempts := max(cfg.MaxAttempts, 1)
	attempt := 0
	return retry(ctx, attempts, cfg.InitialDelay, cfg.BackoffFactor, func() (*http.Response, error) {
		attempt++
		clone, err := replay(ctx, req, attempt)
		if err != nil {
			return nil, Permanent(err)
		}
		resp, err := client.Do(clone)
		if err != nil {
			return nil, err
		}
		if attempt < attempts && slices.Contains(cfg.RetryableStatus, resp.StatusCode) {
			resp.Body.Close()
			return nil, &StatusError{Code: resp.StatusCode}
		}
		return resp, nil
	})
}

func replay(ctx context.Context, req *http.Request, attempt int) (*http.Request, error) {
	clone := req.Clone(ctx)
	if req.Body == nil {
		return clone, nil
	}
	if req.GetBody == nil {
		if attempt > 1 {
			return nil, errors.New("request body cannot be replayed")
		}
		return clone, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to rewind request body: %w", err)
	}
	clone.Body = body
	return clone, nil
}

// RetryFunc is one attempt of a retried operation.
type RetryFunc[T any] func() (T, error)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryWithContext calls fn up to maxAttempts times, doubling the delay
// between attempts. Errors wrapped with Permanent end it at once.
func RetryWithContext[T any](ctx context.Context, fn RetryFunc[T], maxAttempts int, initialDelay time.Duration) (T, error) {
	return retry(ctx, maxAttempts, initialDelay, 2, fn)
}

func retry[T any](ctx context.Context, attempts int, delay time.Duration, factor float64, fn RetryFunc[T]) (T, error) {
	var zero T
	var lastErr error
	attempts = max(attempts, 1)
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := fn()
		if err == nil {
			return v, nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
		delay = time.Duration(float64(delay) * factor)
	}
	return zero, fmt.Errorf("gave up after %d attempts: %w", attempts, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
