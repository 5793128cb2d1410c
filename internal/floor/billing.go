package floor

import (
	"fmt"

	"github.com/shopspring/decimal"

	"restaurant-floor/internal/domain"
)

// BillTotal sums price*quantity over items that were not cancelled.
func BillTotal(items []domain.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if it.Status == domain.ItemCancelled {
			continue
		}
		total = total.Add(it.LineTotal())
	}
	return total
}

// ConfirmPayment writes the bill to history and moves the table on: dining
// tables wait for a review, the walk-in table is free again at once. The
// server's claim ends here.
func (e *Engine) ConfirmPayment(doc domain.Document, tableID int, staffID string) (domain.Document, error) {
	out := doc.Clone()
	t, err := out.Table(tableID)
	if err != nil {
		return doc, err
	}
	if !holdsClaim(t.Status) {
		return doc, domain.NewInvalidTransition("table", t.ID, t.Status, domain.TableReviewing)
	}

	now := e.millis()
	tokenPart := t.SessionToken
	if tokenPart == "" {
		tokenPart = "CASH"
	}
	billedBy := t.ClaimedBy
	if billedBy == "" {
		billedBy = staffID
	}
	// cancelled items stay on the bill record for loss accounting
	out.History = append(out.History, domain.HistoryEntry{
		ID:        fmt.Sprintf("BILL-%s-%d", tokenPart, now),
		TableID:   t.ID,
		StaffID:   billedBy,
		Items:     append([]domain.OrderItem(nil), t.CurrentOrders...),
		Total:     BillTotal(t.CurrentOrders),
		Date:      now,
		OrderType: t.OrderType,
	})
	out.RemoveNotificationsWhere(func(n domain.Notification) bool {
		switch p := n.Payload.(type) {
		case domain.PaymentPayload:
			return p.TableID == tableID
		case domain.CallStaffPayload:
			return p.TableID == tableID
		}
		return false
	})

	if t.IsWalkIn() {
		resetTable(t)
		return out, nil
	}
	t.Status = domain.TableReviewing
	t.ClaimedBy = ""
	t.QRRequested = false
	t.CurrentOrders = []domain.OrderItem{}
	return out, nil
}
