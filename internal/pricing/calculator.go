package pricing

import (
	"math"

	"github.com/domiquerendona/domiq-backend/pkg/config"
)

// Calculator turns a delivery distance into a fee in minor units.
// Rates are tiered: a flat fee up to the base band, a second flat fee up
// to the mid band, then the mid fee plus a per-km charge for every
// started kilometer past the mid band. Distances past the long-haul
// threshold use the cheaper long-haul per-km rate for all extra
// kilometers.
type Calculator struct {
	baseKM        float64
	midKM         float64
	basePrice     int64
	midPrice      int64
	perKM         int64
	longHaulKM    float64
	longHaulPerKM int64
}

// NewCalculator builds a Calculator from the pricing config.
func NewCalculator(cfg config.PricingConfig) Calculator {
	return Calculator{
		baseKM:        cfg.BaseKM,
		midKM:         cfg.MidKM,
		basePrice:     cfg.BasePrice,
		midPrice:      cfg.MidPrice,
		perKM:         cfg.PerKMPrice,
		longHaulKM:    cfg.LongHaulKM,
		longHaulPerKM: cfg.LongHaulPerKM,
	}
}

// BaseFee returns the flat fee for the shortest band, used when the
// delivery distance is unknown.
func (c Calculator) BaseFee() int64 {
	return c.basePrice
}

// PriceForDistance returns the delivery fee for the given distance.
// Non-positive distances price at zero.
func (c Calculator) PriceForDistance(distanceKM float64) int64 {
	if distanceKM <= 0 {
		return 0
	}
	if distanceKM <= c.baseKM {
		return c.basePrice
	}
	if distanceKM <= c.midKM {
		return c.midPrice
	}

	extraKM := int64(math.Ceil(distanceKM - c.midKM))
	rate := c.perKM
	if distanceKM > c.longHaulKM {
		rate = c.longHaulPerKM
	}
	return c.midPrice + extraKM*rate
}
