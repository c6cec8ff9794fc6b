package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Scheduler struct {
	dispatcher *Dispatcher
	interval   time.Duration
	logger     *zap.Logger
}

func NewScheduler(d *Dispatcher, interval time.Duration) *Scheduler {
	return &Scheduler{
		dispatcher: d,
		interval:   interval,
		logger:     d.logger,
	}
}

// Start runs the dispatcher on every tick until ctx is cancelled. The
// returned channel closes once the loop has exited.
func (s *Scheduler) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("scheduler stopped")
				return
			case <-ticker.C:
				n, err := s.dispatcher.DispatchOnce(ctx)
				if err != nil {
					s.logger.Error("dispatch failed", zap.Error(err))
				} else if n > 0 {
					s.logger.Info("dispatched", zap.Int("count", n))
				}
			}
		}
	}()
	return done
}
