package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},  // capped at 30s
		{10, 30 * time.Second}, // capped at 30s
		{15, 30 * time.Second}, // capped at 30s
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			result := Backoff(tt.attempt)
			if result != tt.expected {
				t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, result, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"closed connection error", errors.New("connection closed"), true},
		{"unexpected EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"closed network connection", errors.New("use of closed network connection"), true},
		{"amqp channel closed", errors.New(`Exception (504) Reason: "channel/connection is not open"`), true},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("read sheet: %w", context.DeadlineExceeded), true},
		{"canceled", context.Canceled, false},
		{"quota", errors.New("googleapi: Error 429: Too Many Requests"), true},
		{"permission", errors.New("googleapi: Error 403: The caller does not have permission"), false},
		{"validation error", errors.New("invalid input"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConnectionError(tt.err); got != tt.expected {
				t.Errorf("IsConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestSleep_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Sleep(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := Sleep(context.Background(), time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
