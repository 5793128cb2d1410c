package domain

import "github.com/shopspring/decimal"

type TableStatus string

const (
	TableAvailable TableStatus = "AVAILABLE"
	TableOccupied  TableStatus = "OCCUPIED"
	TablePaying    TableStatus = "PAYING"
	TableBilling   TableStatus = "BILLING"
	TableReviewing TableStatus = "REVIEWING"
	TableCleaning  TableStatus = "CLEANING"
)

type OrderType string

const (
	DineIn   OrderType = "DINE_IN"
	Takeaway OrderType = "TAKEAWAY"
)

type ItemStatus string

const (
	ItemPending   ItemStatus = "PENDING"
	ItemConfirmed ItemStatus = "CONFIRMED"
	ItemCooking   ItemStatus = "COOKING"
	ItemReady     ItemStatus = "READY"
	ItemServed    ItemStatus = "SERVED"
	ItemCancelled ItemStatus = "CANCELLED"
)

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleStaff    Role = "STAFF"
	RoleKitchen  Role = "KITCHEN"
	RoleAdmin    Role = "ADMIN"
)

// WalkInTableID is the counter/takeaway table. It always exists.
const WalkInTableID = 0

type Table struct {
	ID            int         `json:"id"`
	Status        TableStatus `json:"status"`
	OrderType     OrderType   `json:"orderType"`
	CurrentOrders []OrderItem `json:"currentOrders"`
	SessionToken  string      `json:"sessionToken,omitempty"`
	ClaimedBy     string      `json:"claimedBy,omitempty"`
	QRRequested   bool        `json:"qrRequested"`
}

func (t Table) IsWalkIn() bool { return t.ID == WalkInTableID }

// OrderItem keeps the name and price captured when the item was ordered, so
// later menu edits never change a placed order.
type OrderItem struct {
	ID             string          `json:"id"`
	MenuItemID     string          `json:"menuItemId"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	Status         ItemStatus      `json:"status"`
	Timestamp      int64           `json:"timestamp"`
	Note           string          `json:"note,omitempty"`
	KitchenStaffID string          `json:"kitchenStaffId,omitempty"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type HistoryEntry struct {
	ID        string          `json:"id"`
	TableID   int             `json:"tableId"`
	StaffID   string          `json:"staffId,omitempty"`
	Items     []OrderItem     `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Date      int64           `json:"date"`
	OrderType OrderType       `json:"orderType"`
}

type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
	Role         Role   `json:"role"`
	FullName     string `json:"fullName"`
	LastActive   int64  `json:"lastActive,omitempty"`
}

type Review struct {
	ID      string `json:"id"`
	TableID int    `json:"tableId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
	Date    int64  `json:"date"`
}

type MenuItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
	Available bool            `json:"available"`
}

type BankConfig struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
}
