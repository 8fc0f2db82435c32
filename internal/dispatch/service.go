package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/internal/balances"
	"github.com/domiquerendona/domiq-backend/internal/orders"
	"github.com/domiquerendona/domiq-backend/internal/ranking"
	"github.com/domiquerendona/domiq-backend/pkg/config"
	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	pkgerrors "github.com/domiquerendona/domiq-backend/pkg/errors"
	"github.com/domiquerendona/domiq-backend/pkg/geo"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// linkDirectory resolves the wallet links that delivery fees settle
// against.
type linkDirectory interface {
	FindCourierLink(ctx context.Context, adminID, courierID uuid.UUID) (*models.AdminCourier, error)
	FindAllyLink(ctx context.Context, adminID, allyID uuid.UUID) (*models.AdminAlly, error)
}

// operabilityChecker gates publishing on the team's courier capacity.
type operabilityChecker interface {
	CanOperate(ctx context.Context, adminID uuid.UUID) (bool, error)
}

// Notifier fans dispatch events out to the people who care about them.
// It may be nil, and its failures never change dispatch outcomes.
type Notifier interface {
	OfferMade(ctx context.Context, offer *models.Offer, order *models.Order)
	OfferUnavailable(ctx context.Context, courierID uuid.UUID, order *models.Order)
	OrderAssigned(ctx context.Context, order *models.Order)
	OrderReleased(ctx context.Context, order *models.Order, courierID uuid.UUID)
	OrderCancelled(ctx context.Context, order *models.Order)
	OrderDelivered(ctx context.Context, order *models.Order)
	NoEligibleCouriers(ctx context.Context, order *models.Order)
	CourierFeeFailed(ctx context.Context, order *models.Order, courierID uuid.UUID)
}

// Service coordinates the life of a published order: building the offer
// queue from the ranker, walking it one courier at a time, settling
// delivery fees, and cancelling cycles that run out of time.
type Service interface {
	Publish(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	Accept(ctx context.Context, orderID, courierID uuid.UUID) (*models.Order, error)
	Reject(ctx context.Context, orderID, courierID uuid.UUID) error
	Release(ctx context.Context, orderID, courierID uuid.UUID) error
	ConfirmPickup(ctx context.Context, orderID, courierID uuid.UUID) (*models.Order, error)
	ConfirmDelivered(ctx context.Context, orderID, courierID uuid.UUID) (*models.Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID, actor enums.CancelActor) error
	Queue(ctx context.Context, orderID uuid.UUID) ([]models.Offer, error)
	SweepOfferTimeouts(ctx context.Context) (int, error)
	SweepExpiredCycles(ctx context.Context) (int, error)
}

type service struct {
	offers      Repository
	orders      orders.Repository
	ranker      ranking.Service
	balances    balances.Service
	tx          txRunner
	directory   linkDirectory
	operability operabilityChecker
	notifier    Notifier
	dispatchCfg config.DispatchConfig
	feesCfg     config.FeesConfig
	now         func() time.Time
}

// ServiceParams bundles the dependencies required to build a dispatch
// coordinator.
type ServiceParams struct {
	Offers      Repository
	Orders      orders.Repository
	Ranker      ranking.Service
	Balances    balances.Service
	TxRunner    txRunner
	Directory   linkDirectory
	Operability operabilityChecker
	Notifier    Notifier
	Dispatch    config.DispatchConfig
	Fees        config.FeesConfig
}

// NewService constructs the dispatch coordinator. Notifier may be nil.
func NewService(params ServiceParams) (Service, error) {
	if params.Offers == nil {
		return nil, fmt.Errorf("offers repository is required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if params.Ranker == nil {
		return nil, fmt.Errorf("ranker is required")
	}
	if params.Balances == nil {
		return nil, fmt.Errorf("balances service is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Directory == nil {
		return nil, fmt.Errorf("link directory is required")
	}
	if params.Operability == nil {
		return nil, fmt.Errorf("operability checker is required")
	}
	return &service{
		offers:      params.Offers,
		orders:      params.Orders,
		ranker:      params.Ranker,
		balances:    params.Balances,
		tx:          params.TxRunner,
		directory:   params.Directory,
		operability: params.Operability,
		notifier:    params.Notifier,
		dispatchCfg: params.Dispatch,
		feesCfg:     params.Fees,
		now:         time.Now,
	}, nil
}

func (s *service) Publish(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not pending")
	}

	allowed, err := s.operability.CanOperate(ctx, order.AdminID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking team operability")
	}
	if !allowed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "team does not have enough funded couriers to operate")
	}

	now := s.now().UTC()
	won, err := s.orders.TransitionStatus(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusPublished, map[string]any{
		"published_at":     now,
		"cycle_started_at": now,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "publishing order")
	}
	if !won {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not pending")
	}
	order.Status = enums.OrderStatusPublished
	order.PublishedAt = &now
	order.CycleStartedAt = &now

	candidates, err := s.ranker.Rank(ctx, ranking.RankInput{
		AdminID:      order.AdminID,
		AllyID:       order.AllyID,
		Pickup:       geo.Point{Lat: order.PickupLat, Lng: order.PickupLng},
		RequiresCash: order.RequiresCash,
		CashRequired: order.CashRequiredAmount,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ranking couriers")
	}

	// No eligible couriers is a valid outcome. The order stays
	// PUBLISHED and the cycle sweep will cancel it if nobody shows up.
	if len(candidates) == 0 {
		if s.notifier != nil {
			s.notifier.NoEligibleCouriers(ctx, order)
		}
		return order, nil
	}

	courierIDs := make([]uuid.UUID, 0, len(candidates))
	for _, candidate := range candidates {
		courierIDs = append(courierIDs, candidate.CourierID)
	}
	if _, err := s.offers.CreateQueue(ctx, order.ID, courierIDs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating offer queue")
	}
	if err := s.offerNext(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) Accept(ctx context.Context, orderID, courierID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	offer, err := s.offers.FindByOrderAndCourier(ctx, orderID, courierID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading offer")
	}

	now := s.now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		won, err := s.offers.WithTx(tx).MarkResponse(ctx, offer.ID, enums.OfferStatusAccepted, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "accepting offer")
		}
		if !won {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "offer is no longer open")
		}

		assigned, err := s.orders.WithTx(tx).AssignCourier(ctx, orderID, courierID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assigning courier")
		}
		if !assigned {
			return pkgerrors.New(pkgerrors.CodeAlreadyAssigned, "order was assigned to another courier")
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeAlreadyAssigned && s.notifier != nil {
			s.notifier.OfferUnavailable(ctx, courierID, order)
		}
		return nil, err
	}

	if err := s.offers.DeleteQueue(ctx, orderID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing offer queue")
	}

	order.Status = enums.OrderStatusAccepted
	order.CourierID = &courierID
	order.AcceptedAt = &now
	if s.notifier != nil {
		s.notifier.OrderAssigned(ctx, order)
	}
	return order, nil
}

func (s *service) Reject(ctx context.Context, orderID, courierID uuid.UUID) error {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}
	offer, err := s.offers.FindByOrderAndCourier(ctx, orderID, courierID)
	if err != nil {
		if isNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading offer")
	}

	won, err := s.offers.MarkResponse(ctx, offer.ID, enums.OfferStatusRejected, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rejecting offer")
	}
	if !won {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "offer is no longer open")
	}
	return s.offerNext(ctx, order)
}

func (s *service) Release(ctx context.Context, orderID, courierID uuid.UUID) error {
	now := s.now().UTC()
	released, err := s.orders.ReleaseCourier(ctx, orderID, courierID, now)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "releasing order")
	}
	if !released {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not held by this courier")
	}
	if err := s.offers.DeleteQueue(ctx, orderID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing offer queue")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.OrderReleased(ctx, order, courierID)
	}

	candidates, err := s.ranker.Rank(ctx, ranking.RankInput{
		AdminID:      order.AdminID,
		AllyID:       order.AllyID,
		Pickup:       geo.Point{Lat: order.PickupLat, Lng: order.PickupLng},
		RequiresCash: order.RequiresCash,
		CashRequired: order.CashRequiredAmount,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ranking couriers")
	}
	if len(candidates) == 0 {
		if s.notifier != nil {
			s.notifier.NoEligibleCouriers(ctx, order)
		}
		return nil
	}

	courierIDs := make([]uuid.UUID, 0, len(candidates))
	for _, candidate := range candidates {
		courierIDs = append(courierIDs, candidate.CourierID)
	}
	if _, err := s.offers.CreateQueue(ctx, orderID, courierIDs); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating offer queue")
	}
	return s.offerNext(ctx, order)
}

func (s *service) ConfirmPickup(ctx context.Context, orderID, courierID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CourierID == nil || *order.CourierID != courierID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order is not assigned to this courier")
	}

	now := s.now().UTC()
	won, err := s.orders.TransitionStatus(ctx, orderID, enums.OrderStatusAccepted, enums.OrderStatusPickedUp, map[string]any{
		"picked_up_at": now,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirming pickup")
	}
	if !won {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting pickup")
	}
	order.Status = enums.OrderStatusPickedUp
	order.PickedUpAt = &now
	return order, nil
}

func (s *service) ConfirmDelivered(ctx context.Context, orderID, courierID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CourierID == nil || *order.CourierID != courierID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order is not assigned to this courier")
	}

	allyLink, err := s.directory.FindAllyLink(ctx, order.AdminID, order.AllyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ally link not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving ally link")
	}

	now := s.now().UTC()
	memo := "delivery service fee"
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		won, err := s.orders.WithTx(tx).TransitionStatus(ctx, orderID, enums.OrderStatusPickedUp, enums.OrderStatusDelivered, map[string]any{
			"delivered_at": now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking order delivered")
		}
		if !won {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not in transit")
		}
		return s.balances.PostTransfer(ctx, tx, balances.TransferInput{
			From:    &balances.AccountRef{Type: enums.AccountAllyLink, ID: allyLink.ID},
			To:      balances.AccountRef{Type: enums.AccountAdmin, ID: order.AdminID},
			Amount:  s.feesCfg.DeliveryServiceFee,
			RefType: enums.LedgerRefOrder,
			RefID:   order.ID,
			Memo:    &memo,
		})
	})
	if err != nil {
		return nil, err
	}
	order.Status = enums.OrderStatusDelivered
	order.DeliveredAt = &now

	// The courier side of the fee is best effort. A courier wallet that
	// cannot cover it must never undo a physical delivery.
	s.chargeCourierFee(ctx, order, courierID)

	if s.notifier != nil {
		s.notifier.OrderDelivered(ctx, order)
	}
	return order, nil
}

func (s *service) chargeCourierFee(ctx context.Context, order *models.Order, courierID uuid.UUID) {
	courierLink, err := s.directory.FindCourierLink(ctx, order.AdminID, courierID)
	if err != nil {
		if s.notifier != nil {
			s.notifier.CourierFeeFailed(ctx, order, courierID)
		}
		return
	}
	memo := "delivery service fee"
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.balances.PostTransfer(ctx, tx, balances.TransferInput{
			From:    &balances.AccountRef{Type: enums.AccountCourierLink, ID: courierLink.ID},
			To:      balances.AccountRef{Type: enums.AccountAdmin, ID: order.AdminID},
			Amount:  s.feesCfg.DeliveryServiceFee,
			RefType: enums.LedgerRefOrder,
			RefID:   order.ID,
			Memo:    &memo,
		})
	})
	if err != nil && s.notifier != nil {
		s.notifier.CourierFeeFailed(ctx, order, courierID)
	}
}

func (s *service) Cancel(ctx context.Context, orderID uuid.UUID, actor enums.CancelActor) error {
	if !actor.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid cancel actor")
	}
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already finished")
	}

	now := s.now().UTC()
	won, err := s.orders.TransitionStatus(ctx, orderID, order.Status, enums.OrderStatusCancelled, map[string]any{
		"cancelled_at": now,
		"cancelled_by": actor,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancelling order")
	}
	if !won {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed state before it could be cancelled")
	}
	if err := s.offers.DeleteQueue(ctx, orderID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing offer queue")
	}

	order.Status = enums.OrderStatusCancelled
	order.CancelledAt = &now
	order.CancelledBy = &actor
	if s.notifier != nil {
		s.notifier.OrderCancelled(ctx, order)
	}
	return nil
}

func (s *service) Queue(ctx context.Context, orderID uuid.UUID) ([]models.Offer, error) {
	offers, err := s.offers.ListQueue(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing offer queue")
	}
	return offers, nil
}

// SweepOfferTimeouts expires offers past the response window and moves
// each affected queue to its next courier.
func (s *service) SweepOfferTimeouts(ctx context.Context) (int, error) {
	now := s.now().UTC()
	stale, err := s.offers.FindOfferedBefore(ctx, now.Add(-s.dispatchCfg.OfferTimeout))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finding stale offers")
	}

	expired := 0
	for _, offer := range stale {
		won, err := s.offers.MarkResponse(ctx, offer.ID, enums.OfferStatusExpired, now)
		if err != nil {
			return expired, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "expiring offer")
		}
		if !won {
			continue
		}
		expired++

		order, err := s.loadOrder(ctx, offer.OrderID)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				continue
			}
			return expired, err
		}
		if order.Status != enums.OrderStatusPublished || order.CourierID != nil {
			continue
		}
		if err := s.offerNext(ctx, order); err != nil {
			return expired, err
		}
	}
	return expired, nil
}

// SweepExpiredCycles cancels orders whose publish cycle outran the
// window and charges the ally the expired-cycle fee.
func (s *service) SweepExpiredCycles(ctx context.Context) (int, error) {
	now := s.now().UTC()
	stale, err := s.orders.FindPublishedCyclesBefore(ctx, now.Add(-s.dispatchCfg.MaxCycleWindow))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finding expired cycles")
	}

	actor := enums.CancelActorSystem
	cancelled := 0
	for i := range stale {
		order := &stale[i]
		won, err := s.orders.TransitionStatus(ctx, order.ID, enums.OrderStatusPublished, enums.OrderStatusCancelled, map[string]any{
			"cancelled_at": now,
			"cancelled_by": actor,
		})
		if err != nil {
			return cancelled, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancelling expired cycle")
		}
		if !won {
			continue
		}
		cancelled++
		order.Status = enums.OrderStatusCancelled
		order.CancelledAt = &now
		order.CancelledBy = &actor

		if err := s.offers.DeleteQueue(ctx, order.ID); err != nil {
			return cancelled, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing offer queue")
		}
		s.chargeExpiredCycleFee(ctx, order)

		if s.notifier != nil {
			s.notifier.OrderCancelled(ctx, order)
		}
	}
	return cancelled, nil
}

func (s *service) chargeExpiredCycleFee(ctx context.Context, order *models.Order) {
	allyLink, err := s.directory.FindAllyLink(ctx, order.AdminID, order.AllyID)
	if err != nil {
		return
	}
	memo := "expired dispatch cycle fee"
	_ = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.balances.PostTransfer(ctx, tx, balances.TransferInput{
			From:    &balances.AccountRef{Type: enums.AccountAllyLink, ID: allyLink.ID},
			To:      balances.AccountRef{Type: enums.AccountAdmin, ID: order.AdminID},
			Amount:  s.feesCfg.ExpiredCycleFee,
			RefType: enums.LedgerRefOrder,
			RefID:   order.ID,
			Memo:    &memo,
		})
	})
}

// offerNext advances the queue to its first PENDING row. An exhausted
// queue restarts from the top as long as the cycle window is open.
func (s *service) offerNext(ctx context.Context, order *models.Order) error {
	offer, err := s.offers.NextPending(ctx, order.ID)
	if err != nil {
		if !isNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading next offer")
		}
		if order.CycleStartedAt == nil || s.now().After(order.CycleStartedAt.Add(s.dispatchCfg.MaxCycleWindow)) {
			return nil
		}
		reset, err := s.offers.ResetQueue(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resetting offer queue")
		}
		if reset == 0 {
			return nil
		}
		offer, err = s.offers.NextPending(ctx, order.ID)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading next offer")
		}
	}

	won, err := s.offers.MarkOffered(ctx, offer.ID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "offering order")
	}
	if !won {
		return nil
	}
	offer.Status = enums.OfferStatusOffered
	if s.notifier != nil {
		s.notifier.OfferMade(ctx, offer, order)
	}
	return nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}
