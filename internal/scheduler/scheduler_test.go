package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSweeper struct {
	calls   atomic.Int32
	running atomic.Int32
	overlap atomic.Bool
	hold    time.Duration
	err     error
}

func (c *countingSweeper) ExpireVouchers(ctx context.Context, now time.Time) (int64, error) {
	if c.running.Add(1) > 1 {
		c.overlap.Store(true)
	}
	defer c.running.Add(-1)

	c.calls.Add(1)
	time.Sleep(c.hold)
	return 1, c.err
}

func TestScheduler_SweepsPeriodically(t *testing.T) {
	sweeper := &countingSweeper{}
	s, err := New(sweeper, 20*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 3 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Shutdown())
}

func TestScheduler_RunsNeverOverlap(t *testing.T) {
	sweeper := &countingSweeper{hold: 60 * time.Millisecond}
	s, err := New(sweeper, 10*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 3 }, 3*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Shutdown())
	assert.False(t, sweeper.overlap.Load())
}

func TestScheduler_FailedSweepKeepsRunning(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("store unavailable")}
	s, err := New(sweeper, time.Hour, zap.NewNop())
	require.NoError(t, err)

	s.Start()
	require.NoError(t, s.RunNow())
	require.Eventually(t, func() bool { return sweeper.calls.Load() == 1 && sweeper.running.Load() == 0 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.RunNow())
	assert.Eventually(t, func() bool { return sweeper.calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Shutdown())
}

func TestNew_RejectsBadInterval(t *testing.T) {
	_, err := New(&countingSweeper{}, 0, zap.NewNop())
	assert.Error(t, err)
}
