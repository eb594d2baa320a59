package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const sweepTimeout = 2 * time.Minute

// BlockageSweeper recomputes the derived fields of active blockages.
type BlockageSweeper interface {
	RefreshActiveBlockages(ctx context.Context) (int, error)
}

// InitCronJobs registers the background jobs on c and starts it.
func InitCronJobs(c *cron.Cron, schedule string, sweeper BlockageSweeper, logger *logrus.Logger) error {
	_, err := c.AddFunc(schedule, func() {
		RunBlockageSweep(sweeper, logger)
	})
	if err != nil {
		return err
	}

	c.Start()
	logger.WithField("schedule", schedule).Info("cron jobs initialized")
	return nil
}

// RunBlockageSweep runs one refresh of active blockages.
func RunBlockageSweep(sweeper BlockageSweeper, logger *logrus.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	start := time.Now()
	updated, err := sweeper.RefreshActiveBlockages(ctx)
	if err != nil {
		logger.WithError(err).Error("blockage sweep failed")
		return
	}
	logger.WithFields(logrus.Fields{
		"updated":     updated,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("blockage sweep finished")
}
