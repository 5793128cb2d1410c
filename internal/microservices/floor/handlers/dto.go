package handlers

import (
	"time"

	"restaurant-floor/internal/domain"
	"restaurant-floor/internal/floor"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      domain.User `json:"user"`
}

type OrderLineRequest struct {
	MenuItemID string `json:"menuItemId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,min=1,max=99"`
	Note       string `json:"note" validate:"max=200"`
}

type PlaceOrderRequest struct {
	Items     []OrderLineRequest `json:"items" validate:"required,min=1,dive"`
	OrderType domain.OrderType   `json:"orderType" validate:"omitempty,oneof=DINE_IN TAKEAWAY"`
	// Pending sends the lines through staff confirmation like a customer order.
	Pending bool `json:"pending"`
}

type CustomerOrderRequest struct {
	Items []OrderLineRequest `json:"items" validate:"required,min=1,dive"`
}

type ConfirmOrdersRequest struct {
	NotificationID string `json:"notificationId"`
}

type ItemStatusRequest struct {
	Status domain.ItemStatus `json:"status" validate:"required,oneof=COOKING READY"`
}

type ServeRequest struct {
	NotificationID string `json:"notificationId"`
}

type MoveRequest struct {
	ToTableID int `json:"toTableId" validate:"min=0"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

type AppliedResponse struct {
	Applied bool `json:"applied"`
}

func (r PlaceOrderRequest) lines(status domain.ItemStatus) []floor.OrderLine {
	return toLines(r.Items, status)
}

func toLines(items []OrderLineRequest, status domain.ItemStatus) []floor.OrderLine {
	out := make([]floor.OrderLine, len(items))
	for i, it := range items {
		out[i] = floor.OrderLine{MenuItemID: it.MenuItemID, Quantity: it.Quantity, Note: it.Note, Status: status}
	}
	return out
}
