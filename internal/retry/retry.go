// Package retry re-runs storage operations that fail with transient errors.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/loykin/servicecall/internal/common"
)

// Config holds configuration for storage operation retries
type Config struct {
	MaxRetries      int           // Maximum number of retry attempts
	InitialDelay    time.Duration // Initial delay before first retry
	MaxDelay        time.Duration // Maximum delay between retries
	BackoffFactor   float64       // Multiplier for exponential backoff
	RetryableErrors []string      // Error substrings that trigger retries
}

// DefaultConfig returns the retry policy used by the credential stores.
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:    3,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
		RetryableErrors: []string{
			"connection refused",
			"connection reset",
			"database is locked",
			"sqlite_busy",
			"too many clients",
			"connection lost",
			"broken pipe",
		},
	}
}

// isRetryable checks if an error should trigger a retry
func (rc *Config) isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	errStr := strings.ToLower(err.Error())
	for _, s := range rc.RetryableErrors {
		if strings.Contains(errStr, s) {
			return true
		}
	}
	return false
}

// delay returns the exponential backoff for attempt, capped at MaxDelay.
func (rc *Config) delay(attempt int) time.Duration {
	if attempt <= 0 {
		return rc.InitialDelay
	}
	d := time.Duration(float64(rc.InitialDelay) * math.Pow(rc.BackoffFactor, float64(attempt-1)))
	if d > rc.MaxDelay {
		d = rc.MaxDelay
	}
	return d
}

// Do runs op until it succeeds, fails with a non-retryable error, runs out of
// attempts, or ctx is done.
func Do(ctx context.Context, config *Config, op func() error) error {
	if config == nil {
		config = DefaultConfig()
	}
	logger := common.GetLogger().WithComponent("storage-retry")

	var lastErr error
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		err := op()
		if err == nil {
			if attempt > 0 {
				logger.Info("storage operation succeeded after retry", "attempt", attempt+1)
			}
			return nil
		}
		lastErr = err

		if attempt == config.MaxRetries {
			break
		}
		if !config.isRetryable(err) {
			return err
		}

		d := config.delay(attempt)
		logger.Warn("storage operation failed, retrying",
			"error", err,
			"attempt", attempt+1,
			"max_attempts", config.MaxRetries+1,
			"retry_delay", d)

		select {
		case <-ctx.Done():
			return fmt.Errorf("operation cancelled during retry: %w", ctx.Err())
		case <-time.After(d):
		}
	}

	logger.Error("storage operation failed after all retry attempts",
		"error", lastErr,
		"attempts", config.MaxRetries+1)
	return fmt.Errorf("operation failed after %d attempts: %w", config.MaxRetries+1, lastErr)
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, config *Config, op func() (T, error)) (T, error) {
	var out T
	err := Do(ctx, config, func() error {
		v, err := op()
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
