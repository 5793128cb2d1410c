package floor

import (
	"fmt"

	"restaurant-floor/internal/domain"
)

// itemEdges lists every legal OrderItem transition. SERVED and CANCELLED are
// terminal.
var itemEdges = map[domain.ItemStatus][]domain.ItemStatus{
	domain.ItemPending:   {domain.ItemConfirmed, domain.ItemCancelled},
	domain.ItemConfirmed: {domain.ItemCooking, domain.ItemCancelled},
	domain.ItemCooking:   {domain.ItemReady, domain.ItemCancelled},
	domain.ItemReady:     {domain.ItemServed},
}

func CanTransition(from, to domain.ItemStatus) bool {
	for _, s := range itemEdges[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves item to status to, or leaves it untouched and reports an
// InvalidTransitionError.
func Transition(item *domain.OrderItem, to domain.ItemStatus) error {
	if !CanTransition(item.Status, to) {
		return domain.NewInvalidTransition("order item", item.ID, item.Status, to)
	}
	item.Status = to
	return nil
}

// OrderLine is one requested dish. Status must be PENDING (customer, awaits
// staff approval) or CONFIRMED (staff, goes straight to the kitchen).
type OrderLine struct {
	MenuItemID string
	Quantity   int
	Note       string
	Status     domain.ItemStatus
}

func (e *Engine) PlaceOrder(doc domain.Document, tableID int, lines []OrderLine, orderType domain.OrderType) (domain.Document, error) {
	if len(lines) == 0 {
		return doc, fmt.Errorf("%w: order has no items", domain.ErrInvalidInput)
	}
	if orderType != domain.DineIn && orderType != domain.Takeaway {
		return doc, fmt.Errorf("%w: unknown order type %q", domain.ErrInvalidInput, orderType)
	}
	out := doc.Clone()
	t, err := out.Table(tableID)
	if err != nil {
		return doc, err
	}
	if !t.IsWalkIn() && orderType != domain.DineIn {
		return doc, fmt.Errorf("%w: table %d only takes %s orders", domain.ErrInvalidInput, tableID, domain.DineIn)
	}

	now := e.millis()
	var pending, confirmed int
	for _, l := range lines {
		if l.Quantity < 1 {
			return doc, fmt.Errorf("%w: quantity for %s must be at least 1", domain.ErrInvalidInput, l.MenuItemID)
		}
		switch l.Status {
		case domain.ItemPending:
			pending++
		case domain.ItemConfirmed:
			confirmed++
		default:
			return doc, fmt.Errorf("%w: new items start PENDING or CONFIRMED, got %s", domain.ErrInvalidInput, l.Status)
		}
		m, err := out.MenuItem(l.MenuItemID)
		if err != nil {
			return doc, err
		}
		if !m.Available {
			return doc, fmt.Errorf("%w: %s is not available", domain.ErrInvalidInput, m.Name)
		}
		t.CurrentOrders = append(t.CurrentOrders, domain.OrderItem{
			ID:         e.NewID(),
			MenuItemID: m.ID,
			Name:       m.Name,
			Price:      m.Price,
			Quantity:   l.Quantity,
			Status:     l.Status,
			Timestamp:  now,
			Note:       l.Note,
		})
	}
	t.Status = domain.TableOccupied
	t.OrderType = orderType

	if confirmed > 0 {
		out.Notifications = append(out.Notifications, e.newDishNotice(*t, confirmed))
	}
	if pending > 0 {
		out.Notifications = append(out.Notifications, e.customerOrderNotice(*t, pending))
	}
	return out, nil
}

// ConfirmTableOrders approves every PENDING item on the table and consumes the
// staff notification that asked for it.
func (e *Engine) ConfirmTableOrders(doc domain.Document, tableID int, notifID string) (domain.Document, error) {
	out := doc.Clone()
	t, err := out.Table(tableID)
	if err != nil {
		return doc, err
	}
	count := 0
	for i := range t.CurrentOrders {
		if t.CurrentOrders[i].Status == domain.ItemPending {
			t.CurrentOrders[i].Status = domain.ItemConfirmed
			count++
		}
	}
	out.RemoveNotification(notifID)
	if count > 0 {
		out.Notifications = append(out.Notifications, e.confirmedNotice(*t, count))
	}
	return out, nil
}

func (e *Engine) CancelOrderItem(doc domain.Document, tableID int, itemID string) (domain.Document, error) {
	out := doc.Clone()
	t, item, err := findItem(&out, tableID, itemID)
	if err != nil {
		return doc, err
	}
	from := item.Status
	if err := Transition(item, domain.ItemCancelled); err != nil {
		return doc, err
	}
	// the kitchen only needs to hear about items it already knows of
	if from == domain.ItemConfirmed || from == domain.ItemCooking {
		out.Notifications = append(out.Notifications, e.cancelledNotice(*t, *item))
	}
	return out, nil
}

// UpdateOrderItemStatus is the kitchen-side move CONFIRMED→COOKING→READY.
func (e *Engine) UpdateOrderItemStatus(doc domain.Document, tableID int, itemID string, to domain.ItemStatus, kitchenStaffID string) (domain.Document, error) {
	out := doc.Clone()
	t, item, err := findItem(&out, tableID, itemID)
	if err != nil {
		return doc, err
	}
	if to != domain.ItemCooking && to != domain.ItemReady {
		return doc, domain.NewInvalidTransition("order item", item.ID, item.Status, to)
	}
	if err := Transition(item, to); err != nil {
		return doc, err
	}
	if kitchenStaffID != "" {
		item.KitchenStaffID = kitchenStaffID
	}
	if to == domain.ItemReady {
		out.Notifications = append(out.Notifications, e.readyNotice(*t, *item))
	}
	return out, nil
}

func (e *Engine) ServeOrderItem(doc domain.Document, tableID int, itemID, notifID string) (domain.Document, error) {
	out := doc.Clone()
	_, item, err := findItem(&out, tableID, itemID)
	if err != nil {
		return doc, err
	}
	if err := Transition(item, domain.ItemServed); err != nil {
		return doc, err
	}
	out.RemoveNotification(notifID)
	return out, nil
}

func findItem(doc *domain.Document, tableID int, itemID string) (*domain.Table, *domain.OrderItem, error) {
	t, err := doc.Table(tableID)
	if err != nil {
		return nil, nil, err
	}
	for i := range t.CurrentOrders {
		if t.CurrentOrders[i].ID == itemID {
			return t, &t.CurrentOrders[i], nil
		}
	}
	return nil, nil, domain.NewNotFound("order item", itemID)
}
