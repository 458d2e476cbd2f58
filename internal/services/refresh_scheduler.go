package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Refresher recomputes every linked user's report.
type Refresher interface {
	RefreshAll(ctx context.Context) (RefreshResult, error)
}

type RefreshSchedulerConfig struct {
	// Interval between runs (default: 1h).
	Interval time.Duration
	// RunOnStart triggers a run as soon as the scheduler starts.
	RunOnStart bool
}

func DefaultRefreshSchedulerConfig() RefreshSchedulerConfig {
	return RefreshSchedulerConfig{Interval: time.Hour, RunOnStart: true}
}

// RefreshScheduler runs a Refresher periodically in the background.
type RefreshScheduler struct {
	refresher Refresher
	config    RefreshSchedulerConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewRefreshScheduler(refresher Refresher, config RefreshSchedulerConfig) *RefreshScheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultRefreshSchedulerConfig().Interval
	}
	return &RefreshScheduler{refresher: refresher, config: config}
}

// Start begins the loop. Returns an error if already running.
func (p *RefreshScheduler) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return errors.New("refresh scheduler is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})

	go p.runLoop(ctx, p.stopCh, p.doneCh)

	slog.InfoContext(ctx, "Refresh scheduler started", "component", "report", "interval", p.config.Interval)
	return nil
}

// Stop signals the loop and waits for an in-flight run to finish or ctx to end.
func (p *RefreshScheduler) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.running = false
	p.mu.Unlock()

	close(stopCh)
	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Refresh scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Refresh scheduler stop timed out")
		return ctx.Err()
	}
}

func (p *RefreshScheduler) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *RefreshScheduler) runLoop(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	// runs are cancelled when Stop is called
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-runCtx.Done():
		}
	}()

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	if p.config.RunOnStart {
		p.runOnce(runCtx)
	}
	for {
		select {
		case <-runCtx.Done():
			return
		case <-ticker.C:
			p.runOnce(runCtx)
		}
	}
}

func (p *RefreshScheduler) runOnce(ctx context.Context) {
	if _, err := p.refresher.RefreshAll(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.ErrorContext(ctx, "Scheduled refresh failed", "component", "report", "error", err)
	}
}
