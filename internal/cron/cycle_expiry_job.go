package cron

import (
	"context"
	"fmt"

	"github.com/domiquerendona/domiq-backend/pkg/logger"
)

type CycleExpiryJobParams struct {
	Logger  *logger.Logger
	Sweeper cycleSweeper
}

type cycleSweeper interface {
	SweepExpiredCycles(ctx context.Context) (int, error)
}

// NewCycleExpiryJob cancels published orders whose dispatch cycle ran
// out of time without an acceptance.
func NewCycleExpiryJob(params CycleExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("cycle sweeper required")
	}
	return &cycleExpiryJob{
		logg:    params.Logger,
		sweeper: params.Sweeper,
	}, nil
}

type cycleExpiryJob struct {
	logg    *logger.Logger
	sweeper cycleSweeper
}

func (j *cycleExpiryJob) Name() string { return "cycle-expiry-sweep" }

func (j *cycleExpiryJob) Run(ctx context.Context) error {
	cancelled, err := j.sweeper.SweepExpiredCycles(ctx)
	if err != nil {
		return fmt.Errorf("cycle expiry sweep: %w", err)
	}
	if cancelled > 0 {
		logCtx := j.logg.WithField(ctx, "orders_cancelled", cancelled)
		j.logg.Info(logCtx, "cycle expiry sweep complete")
	}
	return nil
}
