package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingSyncer struct {
	calls atomic.Int32
	err   error
}

func (c *countingSyncer) ProcessPending(context.Context) (int, error) {
	c.calls.Add(1)
	return 1, c.err
}

func TestDefaultSyncProcessorConfig(t *testing.T) {
	p := NewSyncProcessor(&countingSyncer{}, SyncProcessorConfig{})
	if p.config.PollInterval != 30*time.Second {
		t.Errorf("expected PollInterval 30s, got %v", p.config.PollInterval)
	}
}

func TestSyncProcessor_StartStop(t *testing.T) {
	syncer := &countingSyncer{}
	p := NewSyncProcessor(syncer, SyncProcessorConfig{PollInterval: 10 * time.Millisecond})
	ctx := context.Background()

	if p.IsRunning() {
		t.Fatal("processor should not be running initially")
	}
	if err := p.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := p.Start(ctx); err == nil {
		t.Fatal("expected error when starting already running processor")
	}

	deadline := time.Now().Add(2 * time.Second)
	for syncer.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if syncer.calls.Load() < 2 {
		t.Fatalf("expected repeated sweeps, got %d", syncer.calls.Load())
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if p.IsRunning() {
		t.Fatal("processor should be stopped")
	}
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("stopping a stopped processor should be a no-op: %v", err)
	}
}

func TestSyncProcessor_RunReturnsOnCancel(t *testing.T) {
	syncer := &countingSyncer{err: errors.New("sheets down")}
	p := NewSyncProcessor(syncer, SyncProcessorConfig{PollInterval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if syncer.calls.Load() != 1 {
		t.Fatalf("expected the startup sweep only, got %d", syncer.calls.Load())
	}
}
