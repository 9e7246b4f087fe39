package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	escrowapp "github.com/relove/backend/internal/application/escrow"
	"github.com/relove/backend/internal/application/reconciliation"
)

// SweepRunner is the sweeper entrypoint driven by the scheduler
type SweepRunner interface {
	Run(ctx context.Context) (reconciliation.SweepReport, error)
}

// ReleaseRunner is the escrow release entrypoint driven by the scheduler
type ReleaseRunner interface {
	ReleaseDue(ctx context.Context) (escrowapp.ReleaseReport, error)
	RetryFailedTransfers(ctx context.Context) (escrowapp.ReleaseReport, error)
}

// LifecycleScheduler drives the background loops of the order lifecycle:
// the unpaid-order sweeper and the escrow release scan. Each loop runs on
// its own interval ticker and tolerates individual run failures.
type LifecycleScheduler struct {
	sweeper   SweepRunner
	release   ReleaseRunner
	config    Config
	logger    *zap.Logger
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// Config holds the scheduler loop intervals
type Config struct {
	// SweepEnabled determines whether the unpaid-order sweeper runs
	SweepEnabled bool

	// SweepInterval is how often stale pending orders are scanned
	SweepInterval time.Duration

	// ReleaseInterval is how often due escrow holds are scanned
	ReleaseInterval time.Duration

	// RunTimeout is the maximum duration of a single loop run
	RunTimeout time.Duration
}

// DefaultConfig returns default scheduler intervals
func DefaultConfig() Config {
	return Config{
		SweepEnabled:    true,
		SweepInterval:   time.Minute,
		ReleaseInterval: 5 * time.Minute,
		RunTimeout:      10 * time.Minute,
	}
}

// NewLifecycleScheduler creates a new lifecycle scheduler
func NewLifecycleScheduler(
	sweeper SweepRunner,
	release ReleaseRunner,
	config Config,
	logger *zap.Logger,
) *LifecycleScheduler {
	if config.RunTimeout <= 0 {
		config.RunTimeout = 10 * time.Minute
	}
	return &LifecycleScheduler{
		sweeper: sweeper,
		release: release,
		config:  config,
		logger:  logger,
	}
}

// Start starts the background loops
func (s *LifecycleScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if s.config.SweepEnabled {
		s.wg.Add(1)
		go s.runLoop(ctx, "sweep", s.config.SweepInterval, s.executeSweep)
	} else {
		s.logger.Info("unpaid-order sweeper is disabled")
	}

	s.wg.Add(1)
	go s.runLoop(ctx, "escrow_release", s.config.ReleaseInterval, s.executeReleaseScan)

	s.logger.Info("lifecycle scheduler started",
		zap.Bool("sweep_enabled", s.config.SweepEnabled),
		zap.Duration("sweep_interval", s.config.SweepInterval),
		zap.Duration("release_interval", s.config.ReleaseInterval),
	)
	return nil
}

// Stop gracefully stops the scheduler, waiting for in-flight runs
func (s *LifecycleScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("lifecycle scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("lifecycle scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the scheduler is running
func (s *LifecycleScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// TriggerSweep runs the unpaid-order sweeper immediately
func (s *LifecycleScheduler) TriggerSweep(ctx context.Context) error {
	return s.trigger(ctx, s.executeSweep)
}

// TriggerReleaseScan runs the escrow release scan immediately
func (s *LifecycleScheduler) TriggerReleaseScan(ctx context.Context) error {
	return s.trigger(ctx, s.executeReleaseScan)
}

func (s *LifecycleScheduler) trigger(ctx context.Context, run func(context.Context)) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		run(ctx)
	}()
	return nil
}

func (s *LifecycleScheduler) runLoop(ctx context.Context, name string, interval time.Duration, run func(context.Context)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("scheduler loop stopping", zap.String("loop", name))
			return
		case <-ticker.C:
			run(ctx)
		}
	}
}

func (s *LifecycleScheduler) executeSweep(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	start := time.Now()
	report, err := s.sweeper.Run(runCtx)
	if err != nil {
		s.logger.Error("unpaid-order sweep failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return
	}

	if report.LockHeld {
		s.logger.Debug("unpaid-order sweep skipped, lock held elsewhere")
		return
	}

	s.logger.Info("unpaid-order sweep completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("orders_scanned", report.OrdersScanned),
		zap.Int("expired", report.Expired),
		zap.Int("recovered", report.Recovered),
		zap.Int("skipped", report.Skipped),
	)
}

func (s *LifecycleScheduler) executeReleaseScan(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	start := time.Now()
	report, err := s.release.ReleaseDue(runCtx)
	if err != nil {
		s.logger.Error("escrow release scan failed",
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return
	}

	retryReport, err := s.release.RetryFailedTransfers(runCtx)
	if err != nil {
		s.logger.Error("transfer retry scan failed", zap.Error(err))
	}

	s.logger.Info("escrow release scan completed",
		zap.Duration("duration", time.Since(start)),
		zap.Int("orders_scanned", report.OrdersScanned),
		zap.Int("released", report.Released),
		zap.Int("transferred", report.Transferred+retryReport.Transferred),
		zap.Int("failed", report.Failed+retryReport.Failed),
		zap.Int("skipped", report.Skipped),
	)
}
