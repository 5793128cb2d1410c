package floor

import (
	"fmt"

	"restaurant-floor/internal/domain"
)

// RequestTableQr marks an empty table as waiting for an admin to open a
// customer session for staffID.
func (e *Engine) RequestTableQr(doc domain.Document, tableID int, staffID string) (domain.Document, error) {
	if staffID == "" {
		return doc, fmt.Errorf("%w: staff id is required", domain.ErrInvalidInput)
	}
	out := doc.Clone()
	t, err := out.Table(tableID)
	if err != nil {
		return doc, err
	}
	if t.IsWalkIn() {
		return doc, fmt.Errorf("%w: the walk-in table has no QR session", domain.ErrInvalidInput)
	}
	if t.Status != domain.TableAvailable {
		return doc, domain.NewInvalidTransition("table", t.ID, t.Status, domain.TableOccupied)
	}
	if t.QRRequested {
		return doc, fmt.Errorf("%w: table %d already has a pending QR request", domain.ErrInvalidInput, t.ID)
	}
	if err := CheckCapacity(doc, staffID); err != nil {
		return doc, err
	}
	t.QRRequested = true
	out.Notifications = append(out.Notifications, e.qrRequestNotice(*t, staffID))
	return out, nil
}

// ApproveTableQr opens the session: fresh token, claim to the requester, empty
// ticket. A table that disappeared meanwhile is a lost race and yields
// NotFoundError with the document unchanged.
func (e *Engine) ApproveTableQr(doc domain.Document, notifID string) (domain.Document, error) {
	out := doc.Clone()
	n, _, err := out.Notification(notifID)
	if err != nil {
		return doc, err
	}
	p, ok := n.Payload.(domain.QRRequestPayload)
	if !ok {
		return doc, fmt.Errorf("%w: notification %s is %s, not a QR request", domain.ErrInvalidInput, n.ID, n.Type)
	}
	t, err := out.Table(p.TableID)
	if err != nil {
		return doc, err
	}
	if t.Status != domain.TableAvailable {
		return doc, domain.NewInvalidTransition("table", t.ID, t.Status, domain.TableOccupied)
	}
	if err := CheckCapacity(doc, p.StaffID); err != nil {
		return doc, err
	}
	t.Status = domain.TableOccupied
	t.OrderType = domain.DineIn
	t.SessionToken = e.NewToken()
	t.ClaimedBy = p.StaffID
	t.QRRequested = false
	t.CurrentOrders = []domain.OrderItem{}
	out.RemoveNotification(notifID)
	out.Notifications = append(out.Notifications, e.tableOpenedNotice(*t))
	return out, nil
}

func (e *Engine) RejectTableQr(doc domain.Document, notifID string) (domain.Document, error) {
	out := doc.Clone()
	n, _, err := out.Notification(notifID)
	if err != nil {
		return doc, err
	}
	p, ok := n.Payload.(domain.QRRequestPayload)
	if !ok {
		return doc, fmt.Errorf("%w: notification %s is %s, not a QR request", domain.ErrInvalidInput, n.ID, n.Type)
	}
	if t, err := out.Table(p.TableID); err == nil {
		t.QRRequested = false
	}
	out.RemoveNotification(notifID)
	return out, nil
}

// RequestPayment moves an occupied table to PAYING. Staff or the customer may
// trigger it.
func (e *Engine) RequestPayment(doc domain.Document, tableID int) (domain.Document, error) {
	out := doc.Clone()
	t, err := out.Table(tableID)
	if err != nil {
		return doc, err
	}
	if t.Status != domain.TableOccupied {
		return doc, domain.NewInvalidTransition("table", t.ID, t.Status, domain.TablePaying)
	}
	t.Status = domain.TablePaying
	out.Notifications = append(out.Notifications, e.paymentNotice(*t))
	return out, nil
}

// StartBilling records that the bill has been presented.
func (e *Engine) StartBilling(doc domain.Document, tableID int) (domain.Document, error) {
	out := doc.Clone()
	t, err := out.Table(tableID)
	if err != nil {
		return doc, err
	}
	if t.Status != domain.TablePaying {
		return doc, domain.NewInvalidTransition("table", t.ID, t.Status, domain.TableBilling)
	}
	t.Status = domain.TableBilling
	return out, nil
}

// SubmitReview closes a paid session. The table passes through CLEANING and is
// AVAILABLE again in the same write.
func (e *Engine) SubmitReview(doc domain.Document, tableID int, token string, rating int, comment string) (domain.Document, error) {
	if err := Authorize(doc, tableID, token); err != nil {
		return doc, err
	}
	if rating < 1 || rating > 5 {
		return doc, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalidInput)
	}
	out := doc.Clone()
	t, err := out.Table(tableID)
	if err != nil {
		return doc, err
	}
	if t.Status != domain.TableReviewing {
		return doc, domain.NewInvalidTransition("table", t.ID, t.Status, domain.TableCleaning)
	}
	out.Reviews = append(out.Reviews, domain.Review{
		ID:      e.NewID(),
		TableID: t.ID,
		Rating:  rating,
		Comment: comment,
		Date:    e.millis(),
	})
	t.Status = domain.TableCleaning
	resetTable(t)
	return out, nil
}

// AdminForceClose puts any table back to AVAILABLE and drops the work queued
// for it. No bill is written.
func (e *Engine) AdminForceClose(doc domain.Document, tableID int) (domain.Document, error) {
	out := doc.Clone()
	t, err := out.Table(tableID)
	if err != nil {
		return doc, err
	}
	resetTable(t)
	out.RemoveNotificationsWhere(func(n domain.Notification) bool {
		for _, id := range n.TableRef() {
			if id == tableID {
				return true
			}
		}
		return false
	})
	return out, nil
}

// SetTableEmpty is the admin "empty table" action.
func (e *Engine) SetTableEmpty(doc domain.Document, tableID int) (domain.Document, error) {
	return e.AdminForceClose(doc, tableID)
}

// CallStaff raises a service call from the customer's device. A call that is
// still unread is not repeated.
func (e *Engine) CallStaff(doc domain.Document, tableID int, token string) (domain.Document, error) {
	if err := Authorize(doc, tableID, token); err != nil {
		return doc, err
	}
	for _, n := range doc.Notifications {
		if p, ok := n.Payload.(domain.CallStaffPayload); ok && p.TableID == tableID && !n.Read {
			return doc, nil
		}
	}
	out := doc.Clone()
	t, err := out.Table(tableID)
	if err != nil {
		return doc, err
	}
	out.Notifications = append(out.Notifications, e.callStaffNotice(*t))
	return out, nil
}

func resetTable(t *domain.Table) {
	*t = domain.NewTable(t.ID)
}
