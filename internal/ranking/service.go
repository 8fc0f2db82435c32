package ranking

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
	"github.com/domiquerendona/domiq-backend/pkg/geo"
)

// Candidate tiers. Lower is better.
const (
	TierFreshLive = 0
	TierStale     = 1
	TierOffline   = 2
)

// Candidate is one eligible courier in offer order.
type Candidate struct {
	CourierID     uuid.UUID
	UserID        uuid.UUID
	LinkID        uuid.UUID
	Tier          int
	DistanceKM    float64
	KnownLocation bool
	AvailableCash int64
}

// RankInput describes the order being dispatched.
type RankInput struct {
	AdminID      uuid.UUID
	AllyID       uuid.UUID
	Pickup       geo.Point
	RequiresCash bool
	CashRequired int64
}

// Service produces the ordered courier list an offer queue is built
// from. An empty result is a valid outcome, not an error.
type Service interface {
	Rank(ctx context.Context, input RankInput) ([]Candidate, error)
}

type service struct {
	repo      Repository
	staleness time.Duration
	now       func() time.Time
}

// NewService wires the ranker. staleness is the live-location freshness
// window separating tier 0 from tier 1.
func NewService(repo Repository, staleness time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ranking repository required")
	}
	if staleness <= 0 {
		return nil, fmt.Errorf("staleness window must be positive")
	}
	return &service{repo: repo, staleness: staleness, now: time.Now}, nil
}

func (s *service) Rank(ctx context.Context, input RankInput) ([]Candidate, error) {
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id is required")
	}
	if input.AllyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ally id is required")
	}

	rows, err := s.repo.ListTeamCouriers(ctx, input.AdminID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading team couriers")
	}

	blockedIDs, err := s.repo.ListBlockedCourierIDs(ctx, input.AllyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading ally blocklist")
	}
	blocked := make(map[uuid.UUID]struct{}, len(blockedIDs))
	for _, id := range blockedIDs {
		blocked[id] = struct{}{}
	}

	now := s.now()
	candidates := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		if _, isBlocked := blocked[row.CourierID]; isBlocked {
			continue
		}
		if row.AvailableCash <= 0 {
			continue
		}
		if input.RequiresCash && row.AvailableCash < input.CashRequired {
			continue
		}
		candidates = append(candidates, s.classify(row, input.Pickup, now))
	}

	sortCandidates(candidates)
	return candidates, nil
}

// classify assigns the tier and measures distance from the courier's
// best known location to the pickup point.
func (s *service) classify(row CourierRow, pickup geo.Point, now time.Time) Candidate {
	candidate := Candidate{
		CourierID:     row.CourierID,
		UserID:        row.UserID,
		LinkID:        row.LinkID,
		AvailableCash: row.AvailableCash,
		DistanceKM:    math.Inf(1),
	}

	hasLive := row.LiveLat != nil && row.LiveLng != nil && row.LiveReportedAt != nil
	liveFresh := hasLive && now.Sub(*row.LiveReportedAt) <= s.staleness
	hasResidence := row.ResidenceLat != nil && row.ResidenceLng != nil

	switch {
	case row.Online && liveFresh:
		candidate.Tier = TierFreshLive
		candidate.DistanceKM = geo.HaversineKM(geo.Point{Lat: *row.LiveLat, Lng: *row.LiveLng}, pickup)
		candidate.KnownLocation = true
	case row.Online:
		candidate.Tier = TierStale
		if hasLive {
			candidate.DistanceKM = geo.HaversineKM(geo.Point{Lat: *row.LiveLat, Lng: *row.LiveLng}, pickup)
			candidate.KnownLocation = true
		} else if hasResidence {
			candidate.DistanceKM = geo.HaversineKM(geo.Point{Lat: *row.ResidenceLat, Lng: *row.ResidenceLng}, pickup)
			candidate.KnownLocation = true
		}
	default:
		candidate.Tier = TierOffline
		if hasResidence {
			candidate.DistanceKM = geo.HaversineKM(geo.Point{Lat: *row.ResidenceLat, Lng: *row.ResidenceLng}, pickup)
			candidate.KnownLocation = true
		}
	}
	return candidate
}

// sortCandidates orders by tier, then nearest first with unknown
// locations last, then richest cash float, then id for stability.
func sortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Tier != b.Tier {
			return a.Tier < b.Tier
		}
		if a.KnownLocation != b.KnownLocation {
			return a.KnownLocation
		}
		if a.DistanceKM != b.DistanceKM {
			return a.DistanceKM < b.DistanceKM
		}
		if a.AvailableCash != b.AvailableCash {
			return a.AvailableCash > b.AvailableCash
		}
		return a.CourierID.String() < b.CourierID.String()
	})
}
