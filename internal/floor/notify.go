package floor

import (
	"fmt"

	"restaurant-floor/internal/domain"
)

func (e *Engine) notice(role domain.Role, title, msg string, p domain.Payload) domain.Notification {
	return domain.Notification{
		ID:         e.NewID(),
		TargetRole: role,
		Title:      title,
		Message:    msg,
		Timestamp:  e.millis(),
		Type:       p.Kind(),
		Payload:    p,
	}
}

func tableLabel(t domain.Table) string {
	if t.IsWalkIn() {
		return "Walk-in"
	}
	return fmt.Sprintf("Table %d", t.ID)
}

func (e *Engine) newDishNotice(t domain.Table, count int) domain.Notification {
	return e.notice(domain.RoleKitchen, "New dish",
		fmt.Sprintf("%s: %d new item(s)", tableLabel(t), count),
		domain.KitchenPayload{TableID: t.ID, Count: count, ClaimedBy: t.ClaimedBy})
}

func (e *Engine) customerOrderNotice(t domain.Table, count int) domain.Notification {
	return e.notice(domain.RoleStaff, "New customer order",
		fmt.Sprintf("%s ordered %d item(s), waiting for confirmation", tableLabel(t), count),
		domain.OrderPayload{TableID: t.ID, ClaimedBy: t.ClaimedBy, Count: count})
}

func (e *Engine) confirmedNotice(t domain.Table, count int) domain.Notification {
	return e.notice(domain.RoleKitchen, "Order confirmed",
		fmt.Sprintf("%s: %d item(s) confirmed", tableLabel(t), count),
		domain.KitchenPayload{TableID: t.ID, Count: count, ClaimedBy: t.ClaimedBy})
}

func (e *Engine) cancelledNotice(t domain.Table, item domain.OrderItem) domain.Notification {
	return e.notice(domain.RoleKitchen, "Item cancelled",
		fmt.Sprintf("%s: %s x%d cancelled", tableLabel(t), item.Name, item.Quantity),
		domain.KitchenPayload{TableID: t.ID, ItemID: item.ID, ItemName: item.Name})
}

func (e *Engine) readyNotice(t domain.Table, item domain.OrderItem) domain.Notification {
	return e.notice(domain.RoleStaff, "Dish ready",
		fmt.Sprintf("%s: %s x%d is ready to serve", tableLabel(t), item.Name, item.Quantity),
		domain.KitchenPayload{TableID: t.ID, ItemID: item.ID, ItemName: item.Name, ClaimedBy: t.ClaimedBy, StaffID: item.KitchenStaffID})
}

func (e *Engine) paymentNotice(t domain.Table) domain.Notification {
	return e.notice(domain.RoleStaff, "Payment requested",
		fmt.Sprintf("%s wants to pay", tableLabel(t)),
		domain.PaymentPayload{TableID: t.ID, ClaimedBy: t.ClaimedBy})
}

func (e *Engine) qrRequestNotice(t domain.Table, staffID string) domain.Notification {
	return e.notice(domain.RoleAdmin, "QR requested",
		fmt.Sprintf("%s: staff %s asks to open a session", tableLabel(t), staffID),
		domain.QRRequestPayload{TableID: t.ID, StaffID: staffID})
}

func (e *Engine) tableOpenedNotice(t domain.Table) domain.Notification {
	return e.notice(domain.RoleStaff, "Table opened",
		fmt.Sprintf("%s is open, session code %s", tableLabel(t), t.SessionToken),
		domain.SystemPayload{TableID: t.ID, ClaimedBy: t.ClaimedBy})
}

func (e *Engine) moveRequestNotice(from, to domain.Table, staffID string) domain.Notification {
	return e.notice(domain.RoleAdmin, "Move requested",
		fmt.Sprintf("Move %s to %s (staff %s)", tableLabel(from), tableLabel(to), staffID),
		domain.MoveRequestPayload{FromID: from.ID, ToID: to.ID, StaffID: staffID})
}

func (e *Engine) callStaffNotice(t domain.Table) domain.Notification {
	return e.notice(domain.RoleStaff, "Service call",
		fmt.Sprintf("%s is calling for staff", tableLabel(t)),
		domain.CallStaffPayload{TableID: t.ID, ClaimedBy: t.ClaimedBy})
}

// NotificationsFor is the work queue a user sees. Admins see everything,
// kitchen sees kitchen work, and staff see staff work addressed to them or to
// nobody in particular.
func NotificationsFor(doc domain.Document, u domain.User) []domain.Notification {
	out := make([]domain.Notification, 0)
	for _, n := range doc.Notifications {
		switch u.Role {
		case domain.RoleAdmin:
			out = append(out, n)
		case domain.RoleKitchen:
			if n.TargetRole == domain.RoleKitchen {
				out = append(out, n)
			}
		case domain.RoleStaff:
			if n.TargetRole != domain.RoleStaff {
				continue
			}
			if c := n.Claimant(); c == "" || c == u.ID {
				out = append(out, n)
			}
		}
	}
	return out
}

// DismissNotification consumes a work-queue entry.
func (e *Engine) DismissNotification(doc domain.Document, notifID string) (domain.Document, error) {
	if _, _, err := doc.Notification(notifID); err != nil {
		return doc, err
	}
	out := doc.Clone()
	out.RemoveNotification(notifID)
	return out, nil
}

func (e *Engine) MarkNotificationRead(doc domain.Document, notifID string) (domain.Document, error) {
	out := doc.Clone()
	_, i, err := out.Notification(notifID)
	if err != nil {
		return doc, err
	}
	out.Notifications[i].Read = true
	return out, nil
}

// retargetNotifications points staff and kitchen work for table from at
// table to after a merge.
func retargetNotifications(doc *domain.Document, from int, to domain.Table) {
	for i, n := range doc.Notifications {
		switch p := n.Payload.(type) {
		case domain.OrderPayload:
			if p.TableID == from {
				p.TableID, p.ClaimedBy = to.ID, to.ClaimedBy
				doc.Notifications[i].Payload = p
			}
		case domain.KitchenPayload:
			if p.TableID == from {
				p.TableID, p.ClaimedBy = to.ID, to.ClaimedBy
				doc.Notifications[i].Payload = p
			}
		case domain.PaymentPayload:
			if p.TableID == from {
				p.TableID, p.ClaimedBy = to.ID, to.ClaimedBy
				doc.Notifications[i].Payload = p
			}
		case domain.CallStaffPayload:
			if p.TableID == from {
				p.TableID, p.ClaimedBy = to.ID, to.ClaimedBy
				doc.Notifications[i].Payload = p
			}
		}
	}
}
