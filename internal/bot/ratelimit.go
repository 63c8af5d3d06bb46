package bot

import (
	"sync"
	"time"

	"gastos/internal/core"
)

// rateLimiter is a fixed one-minute window per owner.
type rateLimiter struct {
	mu           sync.Mutex
	limit        int
	owners       map[core.OwnerID]*ownerWindow
	now          func() time.Time
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type ownerWindow struct {
	start    time.Time
	requests int
}

// newRateLimiter allows limit messages per owner per minute. A limit of zero
// or less disables limiting.
func newRateLimiter(limit int) *rateLimiter {
	rl := &rateLimiter{
		limit:       limit,
		owners:      make(map[core.OwnerID]*ownerWindow),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}
	if limit > 0 {
		go rl.startCleanup()
	}
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries drops owners idle for more than 10 minutes.
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-10 * time.Minute)
	for owner, w := range rl.owners {
		if w.start.Before(cutoff) {
			delete(rl.owners, owner)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func (rl *rateLimiter) allow(owner core.OwnerID) bool {
	if rl.limit <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, exists := rl.owners[owner]
	if !exists || now.Sub(w.start) >= time.Minute {
		rl.owners[owner] = &ownerWindow{start: now, requests: 1}
		return true
	}

	w.requests++
	return w.requests <= rl.limit
}
