package cron

import (
	"context"
	"fmt"

	"github.com/domiquerendona/domiq-backend/pkg/logger"
)

type OfferTimeoutJobParams struct {
	Logger  *logger.Logger
	Sweeper offerSweeper
}

type offerSweeper interface {
	SweepOfferTimeouts(ctx context.Context) (int, error)
}

// NewOfferTimeoutJob expires offers that outran the response window so
// their queues can move to the next courier.
func NewOfferTimeoutJob(params OfferTimeoutJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("offer sweeper required")
	}
	return &offerTimeoutJob{
		logg:    params.Logger,
		sweeper: params.Sweeper,
	}, nil
}

type offerTimeoutJob struct {
	logg    *logger.Logger
	sweeper offerSweeper
}

func (j *offerTimeoutJob) Name() string { return "offer-timeout-sweep" }

func (j *offerTimeoutJob) Run(ctx context.Context) error {
	expired, err := j.sweeper.SweepOfferTimeouts(ctx)
	if err != nil {
		return fmt.Errorf("offer timeout sweep: %w", err)
	}
	if expired > 0 {
		logCtx := j.logg.WithField(ctx, "offers_expired", expired)
		j.logg.Info(logCtx, "offer timeout sweep complete")
	}
	return nil
}
