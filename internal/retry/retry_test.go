package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func fastConfig() *Config {
	c := DefaultConfig()
	c.InitialDelay = time.Millisecond
	c.MaxDelay = 5 * time.Millisecond
	return c
}

func TestConfig_isRetryable(t *testing.T) {
	config := DefaultConfig()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"sqlite locked", errors.New("database is locked (5) (SQLITE_BUSY)"), true},
		{"postgres refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), true},
		{"case insensitive", errors.New("BROKEN PIPE"), true},
		{"context canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"constraint violation", errors.New("UNIQUE constraint failed"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := config.isRetryable(tt.err); got != tt.expected {
				t.Errorf("isRetryable(%v) = %v, expected %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestConfig_delay(t *testing.T) {
	config := &Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, BackoffFactor: 2}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{10, time.Second},
	}
	for _, tt := range tests {
		if got := config.delay(tt.attempt); got != tt.expected {
			t.Errorf("delay(%d) = %v, expected %v", tt.attempt, got, tt.expected)
		}
	}
}

func TestDo_SucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDo_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	boom := errors.New("syntax error")
	err := Do(context.Background(), fastConfig(), func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 1 {
		t.Fatalf("expected single call returning boom, got calls=%d err=%v", calls, err)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	config := fastConfig()
	config.MaxRetries = 2
	calls := 0
	err := Do(context.Background(), config, func() error {
		calls++
		return errors.New("connection reset by peer")
	})
	if err == nil || !strings.Contains(err.Error(), "after 3 attempts") {
		t.Fatalf("unexpected error %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ContextCanceledDuringBackoff(t *testing.T) {
	config := fastConfig()
	config.InitialDelay = time.Second
	config.MaxDelay = time.Second
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, config, func() error { return errors.New("database is locked") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestValue_ReturnsResult(t *testing.T) {
	calls := 0
	v, err := Value(context.Background(), fastConfig(), func() (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("database is locked")
		}
		return "blob", nil
	})
	if err != nil || v != "blob" {
		t.Fatalf("got %q, %v", v, err)
	}
}

func TestDo_NilConfigUsesDefaults(t *testing.T) {
	if err := Do(context.Background(), nil, func() error { return nil }); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
