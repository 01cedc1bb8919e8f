package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nekogravitycat/class-booking-backend/internal/booking"
)

type sweepBookings struct {
	booking.Service
	expireTTL   time.Duration
	expireCalls atomic.Int32
	finishCalls atomic.Int32
	expireErr   error
}

func (s *sweepBookings) ExpirePending(_ context.Context, ttl time.Duration) (int, error) {
	s.expireTTL = ttl
	s.expireCalls.Add(1)
	return 2, s.expireErr
}

func (s *sweepBookings) CompleteFinished(context.Context) (int64, error) {
	s.finishCalls.Add(1)
	return 1, nil
}

func TestSweepRunsBothJobs(t *testing.T) {
	b := &sweepBookings{expireErr: errors.New("db down")}
	Sweep(context.Background(), b, 15*time.Minute)

	assert.Equal(t, 15*time.Minute, b.expireTTL)
	assert.EqualValues(t, 1, b.expireCalls.Load())
	assert.EqualValues(t, 1, b.finishCalls.Load(), "a failed expiry must not skip completion")
}

func TestRunSweeperStopsWithContext(t *testing.T) {
	b := &sweepBookings{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		RunSweeper(ctx, b, time.Minute, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return b.finishCalls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
