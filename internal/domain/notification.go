package domain

import (
	"encoding/json"
	"fmt"
)

type NotificationType string

const (
	NotifyOrder       NotificationType = "order"
	NotifyKitchen     NotificationType = "kitchen"
	NotifyPayment     NotificationType = "payment"
	NotifySystem      NotificationType = "system"
	NotifyQRRequest   NotificationType = "qr_request"
	NotifyMoveRequest NotificationType = "move_request"
	NotifyCallStaff   NotificationType = "call_staff"
)

// Payload is the type-specific body of a notification. The concrete type is
// selected by Notification.Type.
type Payload interface {
	Kind() NotificationType
}

type OrderPayload struct {
	TableID   int    `json:"tableId"`
	ClaimedBy string `json:"claimedBy,omitempty"`
	Count     int    `json:"count"`
}

func (OrderPayload) Kind() NotificationType { return NotifyOrder }

type KitchenPayload struct {
	TableID   int    `json:"tableId"`
	ItemID    string `json:"itemId,omitempty"`
	ItemName  string `json:"itemName,omitempty"`
	Count     int    `json:"count,omitempty"`
	ClaimedBy string `json:"claimedBy,omitempty"`
	StaffID   string `json:"staffId,omitempty"`
}

func (KitchenPayload) Kind() NotificationType { return NotifyKitchen }

type PaymentPayload struct {
	TableID   int    `json:"tableId"`
	ClaimedBy string `json:"claimedBy,omitempty"`
}

func (PaymentPayload) Kind() NotificationType { return NotifyPayment }

type SystemPayload struct {
	TableID   int    `json:"tableId"`
	ClaimedBy string `json:"claimedBy,omitempty"`
}

func (SystemPayload) Kind() NotificationType { return NotifySystem }

type QRRequestPayload struct {
	TableID int    `json:"tableId"`
	StaffID string `json:"staffId"`
}

func (QRRequestPayload) Kind() NotificationType { return NotifyQRRequest }

type MoveRequestPayload struct {
	FromID  int    `json:"fromId"`
	ToID    int    `json:"toId"`
	StaffID string `json:"staffId"`
}

func (MoveRequestPayload) Kind() NotificationType { return NotifyMoveRequest }

type CallStaffPayload struct {
	TableID   int    `json:"tableId"`
	ClaimedBy string `json:"claimedBy,omitempty"`
}

func (CallStaffPayload) Kind() NotificationType { return NotifyCallStaff }

type Notification struct {
	ID         string           `json:"id"`
	TargetRole Role             `json:"targetRole"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Timestamp  int64            `json:"timestamp"`
	Read       bool             `json:"read"`
	Type       NotificationType `json:"type"`
	Payload    Payload          `json:"payload"`
}

// TableRef returns the tables a notification refers to.
func (n Notification) TableRef() []int {
	switch p := n.Payload.(type) {
	case OrderPayload:
		return []int{p.TableID}
	case KitchenPayload:
		return []int{p.TableID}
	case PaymentPayload:
		return []int{p.TableID}
	case SystemPayload:
		return []int{p.TableID}
	case QRRequestPayload:
		return []int{p.TableID}
	case CallStaffPayload:
		return []int{p.TableID}
	case MoveRequestPayload:
		return []int{p.FromID, p.ToID}
	}
	return nil
}

// Claimant returns the staff id a staff-targeted notification is addressed to,
// or "" when every staff member may act on it.
func (n Notification) Claimant() string {
	switch p := n.Payload.(type) {
	case OrderPayload:
		return p.ClaimedBy
	case KitchenPayload:
		return p.ClaimedBy
	case PaymentPayload:
		return p.ClaimedBy
	case SystemPayload:
		return p.ClaimedBy
	case CallStaffPayload:
		return p.ClaimedBy
	}
	return ""
}

func (n *Notification) UnmarshalJSON(data []byte) error {
	type plain Notification
	var raw struct {
		plain
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*n = Notification(raw.plain)
	p, err := decodePayload(n.Type, raw.Payload)
	if err != nil {
		return fmt.Errorf("notification %s: %w", n.ID, err)
	}
	n.Payload = p
	return nil
}

func decodePayload(t NotificationType, raw json.RawMessage) (Payload, error) {
	var p Payload
	switch t {
	case NotifyOrder:
		p = &OrderPayload{}
	case NotifyKitchen:
		p = &KitchenPayload{}
	case NotifyPayment:
		p = &PaymentPayload{}
	case NotifySystem:
		p = &SystemPayload{}
	case NotifyQRRequest:
		p = &QRRequestPayload{}
	case NotifyMoveRequest:
		p = &MoveRequestPayload{}
	case NotifyCallStaff:
		p = &CallStaffPayload{}
	default:
		return nil, fmt.Errorf("unknown notification type %q", t)
	}
	if len(raw) != 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, p); err != nil {
			return nil, err
		}
	}
	// store by value so type switches match the value variants
	switch v := p.(type) {
	case *OrderPayload:
		return *v, nil
	case *KitchenPayload:
		return *v, nil
	case *PaymentPayload:
		return *v, nil
	case *SystemPayload:
		return *v, nil
	case *QRRequestPayload:
		return *v, nil
	case *MoveRequestPayload:
		return *v, nil
	case *CallStaffPayload:
		return *v, nil
	}
	return p, nil
}
