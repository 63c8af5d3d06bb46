// Package retry holds the backoff policy shared by the ledger stores and
// the message broker client.
package retry

import (
	"context"
	"errors"
	"strings"
	"time"
)

const MaxBackoff = 30 * time.Second

// Backoff returns 1s, 2s, 4s, ... capped at 30s.
func Backoff(attempt int) time.Duration {
	if attempt >= 5 {
		return MaxBackoff
	}
	d := time.Second << attempt
	if d > MaxBackoff {
		return MaxBackoff
	}
	return d
}

var transientMarkers = []string{
	"connection refused",
	"connection reset",
	"connection closed",
	"closed network connection",
	"not open",
	"broken pipe",
	"eof",
	"timeout",
	"temporarily unavailable",
	"too many requests",
	"rate limit",
	"503",
	"502",
}

// IsConnectionError reports whether err looks like a transport failure worth retrying.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
