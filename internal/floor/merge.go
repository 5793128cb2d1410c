package floor

import (
	"fmt"

	"restaurant-floor/internal/domain"
)

// RequestTableMove asks an admin to move table fromID onto toID. Nothing but
// the admin notification changes until the request is approved.
func (e *Engine) RequestTableMove(doc domain.Document, fromID, toID int, staffID string) (domain.Document, error) {
	if fromID == toID {
		return doc, fmt.Errorf("%w: cannot move table %d onto itself", domain.ErrInvalidInput, fromID)
	}
	out := doc.Clone()
	from, err := out.Table(fromID)
	if err != nil {
		return doc, err
	}
	to, err := out.Table(toID)
	if err != nil {
		return doc, err
	}
	if from.Status == domain.TableAvailable {
		return doc, fmt.Errorf("%w: table %d has nothing to move", domain.ErrInvalidInput, fromID)
	}
	out.Notifications = append(out.Notifications, e.moveRequestNotice(*from, *to, staffID))
	return out, nil
}

// ApproveTableMove merges the source table into the destination: destination
// orders first, then the source's. A destination that was free inherits the
// source's session; the destination keeps its own claim when it has one. The
// source is reset. If either table is gone the document is left unchanged and
// NotFoundError is returned.
func (e *Engine) ApproveTableMove(doc domain.Document, notifID string) (domain.Document, error) {
	out := doc.Clone()
	n, _, err := out.Notification(notifID)
	if err != nil {
		return doc, err
	}
	p, ok := n.Payload.(domain.MoveRequestPayload)
	if !ok {
		return doc, fmt.Errorf("%w: notification %s is %s, not a move request", domain.ErrInvalidInput, n.ID, n.Type)
	}
	src, err := out.Table(p.FromID)
	if err != nil {
		return doc, err
	}
	dst, err := out.Table(p.ToID)
	if err != nil {
		return doc, err
	}

	wasFree := dst.Status == domain.TableAvailable
	merged := make([]domain.OrderItem, 0, len(dst.CurrentOrders)+len(src.CurrentOrders))
	merged = append(merged, dst.CurrentOrders...)
	merged = append(merged, src.CurrentOrders...)
	dst.CurrentOrders = merged
	dst.Status = domain.TableOccupied
	if wasFree {
		dst.SessionToken = src.SessionToken
	}
	if dst.ClaimedBy == "" {
		dst.ClaimedBy = src.ClaimedBy
	}
	resetTable(src)

	if err := checkClaimGrowth(doc, out, dst.ClaimedBy); err != nil {
		return doc, err
	}
	retargetNotifications(&out, p.FromID, *dst)
	out.RemoveNotification(notifID)
	return out, nil
}

func (e *Engine) RejectTableMove(doc domain.Document, notifID string) (domain.Document, error) {
	n, _, err := doc.Notification(notifID)
	if err != nil {
		return doc, err
	}
	if _, ok := n.Payload.(domain.MoveRequestPayload); !ok {
		return doc, fmt.Errorf("%w: notification %s is %s, not a move request", domain.ErrInvalidInput, n.ID, n.Type)
	}
	out := doc.Clone()
	out.RemoveNotification(notifID)
	return out, nil
}
