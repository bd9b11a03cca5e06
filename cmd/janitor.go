package cmd

import (
	"context"
	"time"

	"event-booking/internal/data/repository"
	"event-booking/pkg/utils"

	"go.uber.org/zap"
)

// StartSessionJanitor deletes expired sessions every interval until the
// returned stop func is called.
func StartSessionJanitor(sessions repository.SessionRepository, clock utils.Clock, interval time.Duration, logger *zap.Logger) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := sessions.CleanExpiredSessions(ctx, clock.Now()); err != nil {
					logger.Warn("Failed to clean expired sessions", zap.Error(err))
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
