package cron

import (
	"context"
	"fmt"

	"github.com/domiquerendona/domiq-backend/pkg/logger"
)

type LocationStalenessJobParams struct {
	Logger   *logger.Logger
	Couriers locationExpirer
}

type locationExpirer interface {
	ExpireStaleLocations(ctx context.Context) (int64, error)
}

// NewLocationStalenessJob clears live location reports that are too old
// to count for ranking.
func NewLocationStalenessJob(params LocationStalenessJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Couriers == nil {
		return nil, fmt.Errorf("courier location expirer required")
	}
	return &locationStalenessJob{
		logg:     params.Logger,
		couriers: params.Couriers,
	}, nil
}

type locationStalenessJob struct {
	logg     *logger.Logger
	couriers locationExpirer
}

func (j *locationStalenessJob) Name() string { return "location-staleness-sweep" }

func (j *locationStalenessJob) Run(ctx context.Context) error {
	cleared, err := j.couriers.ExpireStaleLocations(ctx)
	if err != nil {
		return fmt.Errorf("location staleness sweep: %w", err)
	}
	if cleared > 0 {
		logCtx := j.logg.WithField(ctx, "locations_cleared", cleared)
		j.logg.Info(logCtx, "location staleness sweep complete")
	}
	return nil
}
