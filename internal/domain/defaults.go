package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// DefaultDocument is written once when the shared document does not exist
// yet: the walk-in table, dineIn dining tables, a starter menu and one user
// per role.
func DefaultDocument(dineIn int, now int64) Document {
	tables := make([]Table, 0, dineIn+1)
	tables = append(tables, NewTable(WalkInTableID))
	for id := 1; id <= dineIn; id++ {
		tables = append(tables, NewTable(id))
	}
	return Document{
		Tables: tables,
		Menu: []MenuItem{
			{ID: "m-pho", Name: "Pho Bo", Price: decimal.RequireFromString("55000"), Category: "Main", Available: true},
			{ID: "m-bunbo", Name: "Bun Bo Hue", Price: decimal.RequireFromString("60000"), Category: "Main", Available: true},
			{ID: "m-springroll", Name: "Spring Rolls", Price: decimal.RequireFromString("35000"), Category: "Starter", Available: true},
			{ID: "m-icedtea", Name: "Iced Tea", Price: decimal.RequireFromString("10000"), Category: "Drink", Available: true},
			{ID: "m-coffee", Name: "Iced Milk Coffee", Price: decimal.RequireFromString("25000"), Category: "Drink", Available: true},
		},
		History:       []HistoryEntry{},
		Notifications: []Notification{},
		Users: []User{
			defaultUser("admin", "admin", RoleAdmin, "Floor Manager"),
			defaultUser("staff1", "staff1", RoleStaff, "Server One"),
			defaultUser("staff2", "staff2", RoleStaff, "Server Two"),
			defaultUser("kitchen1", "kitchen1", RoleKitchen, "Head Chef"),
		},
		BankConfig:  BankConfig{BankName: "Demo Bank", AccountNumber: "0000000000", AccountName: "RESTAURANT"},
		Reviews:     []Review{},
		LastUpdated: now,
	}
}

// NewTable builds an empty table. Only the walk-in table takes away.
func NewTable(id int) Table {
	t := Table{ID: id, Status: TableAvailable, OrderType: DineIn, CurrentOrders: []OrderItem{}}
	if id == WalkInTableID {
		t.OrderType = Takeaway
	}
	return t
}

func defaultUser(id, password string, role Role, name string) User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return User{ID: id, Username: id, PasswordHash: string(hash), Role: role, FullName: name}
}
