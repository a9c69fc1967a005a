// file: internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// VoucherSweeper expires unused vouchers past their window
type VoucherSweeper interface {
	ExpireVouchers(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler runs the ledger's periodic jobs
type Scheduler struct {
	sched   gocron.Scheduler
	sweep   gocron.Job
	timeout time.Duration
	logger  *zap.Logger
}

// New registers the voucher sweep every interval. Runs never overlap; a run
// still in flight when the next one is due pushes it back.
func New(sweeper VoucherSweeper, interval time.Duration, logger *zap.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &Scheduler{sched: sched, timeout: interval, logger: logger}
	s.sweep, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.runSweep, sweeper),
		gocron.WithName("voucher-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("failed to register voucher sweep: %w", err)
	}
	return s, nil
}

func (s *Scheduler) runSweep(sweeper VoucherSweeper) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	count, err := sweeper.ExpireVouchers(ctx, time.Time{})
	if err != nil {
		s.logger.Error("Voucher sweep failed", zap.Error(err))
		return
	}
	s.logger.Debug("Voucher sweep finished", zap.Int64("expired", count))
}

// Start begins running jobs in the background
func (s *Scheduler) Start() {
	s.sched.Start()
	s.logger.Info("⏱️ Scheduler started", zap.Duration("voucher_sweep_every", s.timeout))
}

// RunNow triggers one sweep outside the schedule
func (s *Scheduler) RunNow() error {
	return s.sweep.RunNow()
}

// Shutdown stops the scheduler and waits for running jobs
func (s *Scheduler) Shutdown() error {
	if err := s.sched.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	s.logger.Info("Scheduler stopped")
	return nil
}
