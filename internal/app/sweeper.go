package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/nekogravitycat/class-booking-backend/internal/booking"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/logger"
)

// Sweep expires checkout bookings left pending for longer than ttl and marks
// bookings of finished classes as completed.
func Sweep(ctx context.Context, bookings booking.Service, ttl time.Duration) {
	log := logger.FromContext(ctx)

	expired, err := bookings.ExpirePending(ctx, ttl)
	if err != nil {
		log.Error("failed to expire pending bookings", logger.Err(err))
	} else if expired > 0 {
		log.Info("expired pending bookings", slog.Int("count", expired))
	}

	completed, err := bookings.CompleteFinished(ctx)
	if err != nil {
		log.Error("failed to complete finished bookings", logger.Err(err))
	} else if completed > 0 {
		log.Info("completed finished bookings", slog.Int64("count", completed))
	}
}

// RunSweeper calls Sweep every interval until ctx is done.
func RunSweeper(ctx context.Context, bookings booking.Service, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			Sweep(ctx, bookings, ttl)
		case <-ctx.Done():
			return
		}
	}
}
