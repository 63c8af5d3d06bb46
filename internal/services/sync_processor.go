package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// PendingSyncer mirrors a batch of not yet synced records and reports how
// many it handled. worker.SyncWorker implements it.
type PendingSyncer interface {
	ProcessPending(ctx context.Context) (int, error)
}

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often to check for pending records (default: 30s)
	PollInterval time.Duration
}

func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{PollInterval: 30 * time.Second}
}

// SyncProcessor periodically sweeps records whose AMQP message was lost or
// never sent.
type SyncProcessor struct {
	syncer PendingSyncer
	config SyncProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSyncProcessor(syncer PendingSyncer, config SyncProcessorConfig) *SyncProcessor {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultSyncProcessorConfig().PollInterval
	}
	return &SyncProcessor{syncer: syncer, config: config}
}

// Start begins the processing loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Sync processor started", "poll_interval", p.config.PollInterval)
	return nil
}

// Stop signals the loop and waits for the current sweep to finish.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}
}

func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Run starts the processor and blocks until ctx is done, for use in an errgroup.
func (p *SyncProcessor) Run(ctx context.Context) error {
	if err := p.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return p.Stop(stopCtx)
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.sweep(ctx)
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *SyncProcessor) sweep(ctx context.Context) {
	n, err := p.syncer.ProcessPending(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Pending sync sweep failed", "error", err)
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "Pending sync sweep completed", "records", n)
	}
}
