package service

import (
	"context"
	"errors"
	"time"

	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/domain"
	"restaurant-floor/internal/floor"
	"restaurant-floor/internal/snapshot"
)

type FloorServiceInterface interface {
	Snapshot() domain.Document
	Watch() (<-chan domain.Document, func())
	User(id string) (domain.User, error)
	Login(username, password string) (domain.User, error)
	Notifications(userID string) ([]domain.Notification, error)
	DismissNotification(ctx context.Context, notifID string) error
	MarkNotificationRead(ctx context.Context, notifID string) error
	Heartbeat(ctx context.Context, userID string) error

	PlaceOrder(ctx context.Context, tableID int, lines []floor.OrderLine, orderType domain.OrderType) (domain.Table, error)
	ConfirmOrders(ctx context.Context, tableID int, notifID string) (domain.Table, error)
	CancelItem(ctx context.Context, tableID int, itemID string) (domain.Table, error)
	UpdateItemStatus(ctx context.Context, tableID int, itemID string, status domain.ItemStatus, kitchenStaffID string) (domain.Table, error)
	ServeItem(ctx context.Context, tableID int, itemID, notifID string) (domain.Table, error)

	RequestQr(ctx context.Context, tableID int, staffID string) error
	ApproveQr(ctx context.Context, notifID string) (bool, error)
	RejectQr(ctx context.Context, notifID string) error
	RequestPayment(ctx context.Context, tableID int) (domain.Table, error)
	StartBilling(ctx context.Context, tableID int) (domain.Table, error)
	ConfirmPayment(ctx context.Context, tableID int, staffID string) (domain.HistoryEntry, error)
	ForceClose(ctx context.Context, tableID int) error

	RequestMove(ctx context.Context, fromID, toID int, staffID string) error
	ApproveMove(ctx context.Context, notifID string) (bool, error)
	RejectMove(ctx context.Context, notifID string) error

	CustomerView(tableID int, token string) (floor.CustomerView, error)
	CustomerOrder(ctx context.Context, tableID int, token string, lines []floor.OrderLine) (domain.Table, error)
	CustomerRequestPayment(ctx context.Context, tableID int, token string) (domain.Table, error)
	CallStaff(ctx context.Context, tableID int, token string) error
	SubmitReview(ctx context.Context, tableID int, token string, rating int, comment string) error

	KitchenStats() []floor.CookStat
	Revenue(from, to time.Time) floor.RevenueReport
}

// FloorService binds engine operations to the shared document: read the
// last-known snapshot, run the operation, commit the whole result.
type FloorService struct {
	store  *snapshot.Store
	engine *floor.Engine
	log    *logger.Logger
}

func NewFloorService(store *snapshot.Store, engine *floor.Engine, log *logger.Logger) FloorServiceInterface {
	return &FloorService{store: store, engine: engine, log: log}
}

func (fs *FloorService) commit(ctx context.Context, action string, fields map[string]any, fn snapshot.Mutator) (domain.Document, error) {
	doc, err := fs.store.Commit(ctx, fn)
	switch {
	case err == nil:
		fs.log.Debug(action, fields)
	case errors.Is(err, domain.ErrSyncFailure):
		fs.log.Error(action+"_sync_failed", err, fields)
	default:
		fs.log.Debug(action+"_rejected", withErr(fields, err))
	}
	return doc, err
}

func withErr(fields map[string]any, err error) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["reason"] = err.Error()
	return out
}

func tableOf(doc domain.Document, id int) (domain.Table, error) {
	t, err := doc.Table(id)
	if err != nil {
		return domain.Table{}, err
	}
	return *t, nil
}

func (fs *FloorService) Snapshot() domain.Document { return fs.store.Read() }

func (fs *FloorService) Watch() (<-chan domain.Document, func()) { return fs.store.Watch() }

func (fs *FloorService) User(id string) (domain.User, error) {
	doc := fs.store.Read()
	u, err := doc.User(id)
	if err != nil {
		return domain.User{}, err
	}
	return *u, nil
}

func (fs *FloorService) Login(username, password string) (domain.User, error) {
	u, err := floor.Login(fs.store.Read(), username, password)
	if err != nil {
		fs.log.Info("login_failed", map[string]any{"username": username})
		return domain.User{}, err
	}
	fs.log.Info("login", map[string]any{"user_id": u.ID, "role": u.Role})
	return u, nil
}

func (fs *FloorService) Notifications(userID string) ([]domain.Notification, error) {
	u, err := fs.User(userID)
	if err != nil {
		return nil, err
	}
	return floor.NotificationsFor(fs.store.Read(), u), nil
}

func (fs *FloorService) DismissNotification(ctx context.Context, notifID string) error {
	_, err := fs.commit(ctx, "notification_dismissed", map[string]any{"notification_id": notifID},
		func(d domain.Document) (domain.Document, error) { return fs.engine.DismissNotification(d, notifID) })
	return err
}

func (fs *FloorService) MarkNotificationRead(ctx context.Context, notifID string) error {
	_, err := fs.commit(ctx, "notification_read", map[string]any{"notification_id": notifID},
		func(d domain.Document) (domain.Document, error) { return fs.engine.MarkNotificationRead(d, notifID) })
	return err
}

func (fs *FloorService) Heartbeat(ctx context.Context, userID string) error {
	_, err := fs.commit(ctx, "heartbeat", map[string]any{"user_id": userID},
		func(d domain.Document) (domain.Document, error) { return fs.engine.TouchUser(d, userID) })
	return err
}

func (fs *FloorService) PlaceOrder(ctx context.Context, tableID int, lines []floor.OrderLine, orderType domain.OrderType) (domain.Table, error) {
	doc, err := fs.commit(ctx, "order_placed", map[string]any{"table_id": tableID, "lines": len(lines)},
		func(d domain.Document) (domain.Document, error) {
			return fs.engine.PlaceOrder(d, tableID, lines, orderType)
		})
	if err != nil {
		return domain.Table{}, err
	}
	return tableOf(doc, tableID)
}

func (fs *FloorService) ConfirmOrders(ctx context.Context, tableID int, notifID string) (domain.Table, error) {
	doc, err := fs.commit(ctx, "orders_confirmed", map[string]any{"table_id": tableID, "notification_id": notifID},
		func(d domain.Document) (domain.Document, error) {
			return fs.engine.ConfirmTableOrders(d, tableID, notifID)
		})
	if err != nil {
		return domain.Table{}, err
	}
	return tableOf(doc, tableID)
}

func (fs *FloorService) CancelItem(ctx context.Context, tableID int, itemID string) (domain.Table, error) {
	doc, err := fs.commit(ctx, "item_cancelled", map[string]any{"table_id": tableID, "item_id": itemID},
		func(d domain.Document) (domain.Document, error) { return fs.engine.CancelOrderItem(d, tableID, itemID) })
	if err != nil {
		return domain.Table{}, err
	}
	return tableOf(doc, tableID)
}

func (fs *FloorService) UpdateItemStatus(ctx context.Context, tableID int, itemID string, status domain.ItemStatus, kitchenStaffID string) (domain.Table, error) {
	fields := map[string]any{"table_id": tableID, "item_id": itemID, "status": status, "kitchen_staff_id": kitchenStaffID}
	doc, err := fs.commit(ctx, "item_status_changed", fields,
		func(d domain.Document) (domain.Document, error) {
			return fs.engine.UpdateOrderItemStatus(d, tableID, itemID, status, kitchenStaffID)
		})
	if err != nil {
		return domain.Table{}, err
	}
	return tableOf(doc, tableID)
}

func (fs *FloorService) ServeItem(ctx context.Context, tableID int, itemID, notifID string) (domain.Table, error) {
	doc, err := fs.commit(ctx, "item_served", map[string]any{"table_id": tableID, "item_id": itemID},
		func(d domain.Document) (domain.Document, error) {
			return fs.engine.ServeOrderItem(d, tableID, itemID, notifID)
		})
	if err != nil {
		return domain.Table{}, err
	}
	return tableOf(doc, tableID)
}

func (fs *FloorService) RequestQr(ctx context.Context, tableID int, staffID string) error {
	_, err := fs.commit(ctx, "qr_requested", map[string]any{"table_id": tableID, "staff_id": staffID},
		func(d domain.Document) (domain.Document, error) { return fs.engine.RequestTableQr(d, tableID, staffID) })
	return err
}

// ApproveQr reports applied=false when the request or its table vanished
// before the approval landed. That is a lost race, not an error.
func (fs *FloorService) ApproveQr(ctx context.Context, notifID string) (bool, error) {
	_, err := fs.commit(ctx, "qr_approved", map[string]any{"notification_id": notifID},
		func(d domain.Document) (domain.Document, error) { return fs.engine.ApproveTableQr(d, notifID) })
	return fs.applied("qr_approval_not_applied", notifID, err)
}

func (fs *FloorService) RejectQr(ctx context.Context, notifID string) error {
	_, err := fs.commit(ctx, "qr_rejected", map[string]any{"notification_id": notifID},
		func(d domain.Document) (domain.Document, error) { return fs.engine.RejectTableQr(d, notifID) })
	return err
}

func (fs *FloorService) applied(action, notifID string, err error) (bool, error) {
	if errors.Is(err, domain.ErrNotFound) {
		fs.log.Warn(action, err, map[string]any{"notification_id": notifID})
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (fs *FloorService) RequestPayment(ctx context.Context, tableID int) (domain.Table, error) {
	doc, err := fs.commit(ctx, "payment_requested", map[string]any{"table_id": tableID},
		func(d domain.Document) (domain.Document, error) { return fs.engine.RequestPayment(d, tableID) })
	if err != nil {
		return domain.Table{}, err
	}
	return tableOf(doc, tableID)
}

func (fs *FloorService) StartBilling(ctx context.Context, tableID int) (domain.Table, error) {
	doc, err := fs.commit(ctx, "billing_started", map[string]any{"table_id": tableID},
		func(d domain.Document) (domain.Document, error) { return fs.engine.StartBilling(d, tableID) })
	if err != nil {
		return domain.Table{}, err
	}
	return tableOf(doc, tableID)
}

func (fs *FloorService) ConfirmPayment(ctx context.Context, tableID int, staffID string) (domain.HistoryEntry, error) {
	doc, err := fs.commit(ctx, "payment_confirmed", map[string]any{"table_id": tableID, "staff_id": staffID},
		func(d domain.Document) (domain.Document, error) { return fs.engine.ConfirmPayment(d, tableID, staffID) })
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	bill := doc.History[len(doc.History)-1]
	fs.log.Info("bill_recorded", map[string]any{"bill_id": bill.ID, "table_id": tableID, "total": bill.Total.String()})
	return bill, nil
}

func (fs *FloorService) ForceClose(ctx context.Context, tableID int) error {
	_, err := fs.commit(ctx, "table_force_closed", map[string]any{"table_id": tableID},
		func(d domain.Document) (domain.Document, error) { return fs.engine.AdminForceClose(d, tableID) })
	return err
}

func (fs *FloorService) RequestMove(ctx context.Context, fromID, toID int, staffID string) error {
	_, err := fs.commit(ctx, "move_requested", map[string]any{"from_id": fromID, "to_id": toID, "staff_id": staffID},
		func(d domain.Document) (domain.Document, error) {
			return fs.engine.RequestTableMove(d, fromID, toID, staffID)
		})
	return err
}

func (fs *FloorService) ApproveMove(ctx context.Context, notifID string) (bool, error) {
	_, err := fs.commit(ctx, "move_approved", map[string]any{"notification_id": notifID},
		func(d domain.Document) (domain.Document, error) { return fs.engine.ApproveTableMove(d, notifID) })
	return fs.applied("move_not_applied", notifID, err)
}

func (fs *FloorService) RejectMove(ctx context.Context, notifID string) error {
	_, err := fs.commit(ctx, "move_rejected", map[string]any{"notification_id": notifID},
		func(d domain.Document) (domain.Document, error) { return fs.engine.RejectTableMove(d, notifID) })
	return err
}

func (fs *FloorService) CustomerView(tableID int, token string) (floor.CustomerView, error) {
	return floor.ViewForCustomer(fs.store.Read(), tableID, token)
}

// CustomerOrder places PENDING lines for a table session. The token is
// checked against the same snapshot the order is computed from.
func (fs *FloorService) CustomerOrder(ctx context.Context, tableID int, token string, lines []floor.OrderLine) (domain.Table, error) {
	pending := make([]floor.OrderLine, len(lines))
	for i, l := range lines {
		l.Status = domain.ItemPending
		pending[i] = l
	}
	doc, err := fs.commit(ctx, "customer_order_placed", map[string]any{"table_id": tableID, "lines": len(lines)},
		func(d domain.Document) (domain.Document, error) {
			if err := floor.Authorize(d, tableID, token); err != nil {
				return d, err
			}
			return fs.engine.PlaceOrder(d, tableID, pending, domain.DineIn)
		})
	if err != nil {
		return domain.Table{}, err
	}
	return tableOf(doc, tableID)
}

func (fs *FloorService) CustomerRequestPayment(ctx context.Context, tableID int, token string) (domain.Table, error) {
	doc, err := fs.commit(ctx, "customer_payment_requested", map[string]any{"table_id": tableID},
		func(d domain.Document) (domain.Document, error) {
			if err := floor.Authorize(d, tableID, token); err != nil {
				return d, err
			}
			return fs.engine.RequestPayment(d, tableID)
		})
	if err != nil {
		return domain.Table{}, err
	}
	return tableOf(doc, tableID)
}

func (fs *FloorService) CallStaff(ctx context.Context, tableID int, token string) error {
	_, err := fs.commit(ctx, "staff_called", map[string]any{"table_id": tableID},
		func(d domain.Document) (domain.Document, error) { return fs.engine.CallStaff(d, tableID, token) })
	return err
}

func (fs *FloorService) SubmitReview(ctx context.Context, tableID int, token string, rating int, comment string) error {
	_, err := fs.commit(ctx, "review_submitted", map[string]any{"table_id": tableID, "rating": rating},
		func(d domain.Document) (domain.Document, error) {
			return fs.engine.SubmitReview(d, tableID, token, rating, comment)
		})
	return err
}

func (fs *FloorService) KitchenStats() []floor.CookStat { return floor.KitchenStats(fs.store.Read()) }

func (fs *FloorService) Revenue(from, to time.Time) floor.RevenueReport {
	return floor.Revenue(fs.store.Read(), from, to)
}
