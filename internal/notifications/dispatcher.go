package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/domiquerendona/domiq-backend/pkg/db/models"
	"github.com/domiquerendona/domiq-backend/pkg/enums"
	"github.com/domiquerendona/domiq-backend/pkg/logger"
)

// identityDirectory maps profile ids to the user identities that
// in-app notifications are addressed to.
type identityDirectory interface {
	CourierUserID(ctx context.Context, courierID uuid.UUID) (uuid.UUID, error)
	AllyUserID(ctx context.Context, allyID uuid.UUID) (uuid.UUID, error)
	AdminOwnerUserID(ctx context.Context, adminID uuid.UUID) (uuid.UUID, error)
}

// Dispatcher turns domain events into notification rows. Every method
// is best effort: a failed insert is logged and dropped, never
// propagated back into the emitting workflow.
type Dispatcher struct {
	repo      Repository
	directory identityDirectory
	logg      *logger.Logger
}

// NewDispatcher builds the notification fan-out used by the dispatch,
// recharge, and membership workflows.
func NewDispatcher(repo Repository, directory identityDirectory, logg *logger.Logger) (*Dispatcher, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if directory == nil {
		return nil, fmt.Errorf("identity directory required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{repo: repo, directory: directory, logg: logg}, nil
}

// OfferMade tells a courier it is their turn in an order's queue.
func (d *Dispatcher) OfferMade(ctx context.Context, offer *models.Offer, order *models.Order) {
	d.notifyCourier(ctx, offer.CourierID, enums.NotificationTypeOfferReceived,
		"New delivery offer",
		fmt.Sprintf("You have a delivery offer for order %s. Respond before it expires.", shortID(order.ID)))
}

// OfferUnavailable tells a courier the order they tried to take is gone.
func (d *Dispatcher) OfferUnavailable(ctx context.Context, courierID uuid.UUID, order *models.Order) {
	d.notifyCourier(ctx, courierID, enums.NotificationTypeOfferUnavailable,
		"Offer no longer available",
		fmt.Sprintf("Order %s was taken by another courier.", shortID(order.ID)))
}

// OrderAssigned tells the ally who is delivering their order.
func (d *Dispatcher) OrderAssigned(ctx context.Context, order *models.Order) {
	d.notifyAlly(ctx, order.AllyID, enums.NotificationTypeOrderAssigned,
		"Courier assigned",
		fmt.Sprintf("A courier accepted order %s.", shortID(order.ID)))
}

// OrderReleased tells the ally their order went back to the queue.
func (d *Dispatcher) OrderReleased(ctx context.Context, order *models.Order, courierID uuid.UUID) {
	d.notifyAlly(ctx, order.AllyID, enums.NotificationTypeOrderReleased,
		"Order released",
		fmt.Sprintf("The courier released order %s. It is being reassigned.", shortID(order.ID)))
}

// OrderCancelled tells the ally their order was cancelled, and the
// assigned courier when there is one.
func (d *Dispatcher) OrderCancelled(ctx context.Context, order *models.Order) {
	message := fmt.Sprintf("Order %s was cancelled.", shortID(order.ID))
	if order.CancelledBy != nil && *order.CancelledBy == enums.CancelActorSystem {
		message = fmt.Sprintf("Order %s was cancelled because no courier took it in time.", shortID(order.ID))
	}
	d.notifyAlly(ctx, order.AllyID, enums.NotificationTypeOrderCancelled, "Order cancelled", message)

	if order.CourierID != nil {
		d.notifyCourier(ctx, *order.CourierID, enums.NotificationTypeOrderCancelled,
			"Order cancelled",
			fmt.Sprintf("Order %s you were delivering was cancelled.", shortID(order.ID)))
	}
}

// OrderDelivered tells the ally their order arrived.
func (d *Dispatcher) OrderDelivered(ctx context.Context, order *models.Order) {
	d.notifyAlly(ctx, order.AllyID, enums.NotificationTypeOrderDelivered,
		"Order delivered",
		fmt.Sprintf("Order %s was delivered.", shortID(order.ID)))
}

// NoEligibleCouriers warns the team that an order found nobody to offer to.
func (d *Dispatcher) NoEligibleCouriers(ctx context.Context, order *models.Order) {
	d.notifyAdmin(ctx, order.AdminID, enums.NotificationTypeSystemAlert,
		"No eligible couriers",
		fmt.Sprintf("Order %s was published but no courier is currently eligible.", shortID(order.ID)))
}

// CourierFeeFailed warns the team that a delivery fee could not be
// collected from the courier's wallet.
func (d *Dispatcher) CourierFeeFailed(ctx context.Context, order *models.Order, courierID uuid.UUID) {
	d.notifyAdmin(ctx, order.AdminID, enums.NotificationTypeBalanceAlert,
		"Courier fee not collected",
		fmt.Sprintf("The delivery fee for order %s could not be charged to the courier.", shortID(order.ID)))
}

// RechargeDecided tells the requester how their recharge went.
func (d *Dispatcher) RechargeDecided(ctx context.Context, request *models.RechargeRequest) {
	title := "Recharge approved"
	message := "Your recharge request was approved and credited."
	if request.Status == enums.RechargeStatusRejected {
		title = "Recharge rejected"
		message = "Your recharge request was rejected."
		if request.RejectReason != nil && *request.RejectReason != "" {
			message = fmt.Sprintf("Your recharge request was rejected: %s", *request.RejectReason)
		}
	}
	d.create(ctx, request.RequestedBy, enums.NotificationTypeRechargeDecided, title, message)
}

// CourierLinkDecided tells a courier their team join request was decided.
func (d *Dispatcher) CourierLinkDecided(ctx context.Context, link *models.AdminCourier) {
	title := "Team request approved"
	message := "Your request to join the team was approved."
	if link.Status == enums.RoleStatusRejected {
		title = "Team request rejected"
		message = "Your request to join the team was rejected."
	}
	d.notifyCourier(ctx, link.CourierID, enums.NotificationTypeSystemAlert, title, message)
}

// AllyLinkDecided tells an ally their team join request was decided.
func (d *Dispatcher) AllyLinkDecided(ctx context.Context, link *models.AdminAlly) {
	title := "Team request approved"
	message := "Your request to join the team was approved."
	if link.Status == enums.RoleStatusRejected {
		title = "Team request rejected"
		message = "Your request to join the team was rejected."
	}
	d.notifyAlly(ctx, link.AllyID, enums.NotificationTypeSystemAlert, title, message)
}

func (d *Dispatcher) notifyCourier(ctx context.Context, courierID uuid.UUID, kind enums.NotificationType, title, message string) {
	userID, err := d.directory.CourierUserID(ctx, courierID)
	if err != nil {
		d.logg.Error(ctx, "notifications: resolving courier user", err)
		return
	}
	d.create(ctx, userID, kind, title, message)
}

func (d *Dispatcher) notifyAlly(ctx context.Context, allyID uuid.UUID, kind enums.NotificationType, title, message string) {
	userID, err := d.directory.AllyUserID(ctx, allyID)
	if err != nil {
		d.logg.Error(ctx, "notifications: resolving ally user", err)
		return
	}
	d.create(ctx, userID, kind, title, message)
}

func (d *Dispatcher) notifyAdmin(ctx context.Context, adminID uuid.UUID, kind enums.NotificationType, title, message string) {
	userID, err := d.directory.AdminOwnerUserID(ctx, adminID)
	if err != nil {
		d.logg.Error(ctx, "notifications: resolving team owner", err)
		return
	}
	d.create(ctx, userID, kind, title, message)
}

func (d *Dispatcher) create(ctx context.Context, userID uuid.UUID, kind enums.NotificationType, title, message string) {
	notification := &models.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
	}
	if err := d.repo.Create(ctx, notification); err != nil {
		d.logg.Error(ctx, "notifications: creating notification", err)
	}
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

// GormDirectory resolves profile identities straight from the database.
type GormDirectory struct {
	db *gorm.DB
}

// NewGormDirectory binds the directory to the provided GORM connection.
func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func (g *GormDirectory) CourierUserID(ctx context.Context, courierID uuid.UUID) (uuid.UUID, error) {
	var userID uuid.UUID
	err := g.db.WithContext(ctx).
		Model(&models.Courier{}).
		Where("id = ?", courierID).
		Pluck("user_id", &userID).Error
	if err != nil {
		return uuid.Nil, err
	}
	if userID == uuid.Nil {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return userID, nil
}

func (g *GormDirectory) AllyUserID(ctx context.Context, allyID uuid.UUID) (uuid.UUID, error) {
	var userID uuid.UUID
	err := g.db.WithContext(ctx).
		Model(&models.Ally{}).
		Where("id = ?", allyID).
		Pluck("user_id", &userID).Error
	if err != nil {
		return uuid.Nil, err
	}
	if userID == uuid.Nil {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return userID, nil
}

func (g *GormDirectory) AdminOwnerUserID(ctx context.Context, adminID uuid.UUID) (uuid.UUID, error) {
	var userID uuid.UUID
	err := g.db.WithContext(ctx).
		Model(&models.Admin{}).
		Where("id = ?", adminID).
		Pluck("owner_user_id", &userID).Error
	if err != nil {
		return uuid.Nil, err
	}
	if userID == uuid.Nil {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return userID, nil
}
