package store

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Poller runs Store.Sync on a fixed interval so that writes made by other
// processes sharing the backend reach local subscribers.
type Poller struct {
	scheduler gocron.Scheduler
}

func StartPoller(ctx context.Context, s *Store, interval time.Duration, logger *zap.Logger) (*Poller, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if err := s.Sync(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("store sync failed", zap.Error(err))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	logger.Info("store poller started", zap.Duration("interval", interval))
	return &Poller{scheduler: sched}, nil
}

func (p *Poller) Stop() error {
	return p.scheduler.Shutdown()
}
