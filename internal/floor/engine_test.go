package floor

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"restaurant-floor/internal/domain"
)

var testClock = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	ids, tokens := 0, 0
	return &Engine{
		Now: func() time.Time { return testClock },
		NewID: func() string {
			ids++
			return fmt.Sprintf("id-%d", ids)
		},
		NewToken: func() string {
			tokens++
			return fmt.Sprintf("TOK%03d", tokens)
		},
	}
}

func testDoc(dineIn int) domain.Document {
	tables := []domain.Table{domain.NewTable(0)}
	for i := 1; i <= dineIn; i++ {
		tables = append(tables, domain.NewTable(i))
	}
	return domain.Document{
		Tables: tables,
		Menu: []domain.MenuItem{
			{ID: "pho", Name: "Pho", Price: decimal.RequireFromString("55000"), Available: true},
			{ID: "tea", Name: "Iced Tea", Price: decimal.RequireFromString("10000"), Available: true},
			{ID: "rolls", Name: "Spring Rolls", Price: decimal.RequireFromString("35000"), Available: false},
		},
		Users: []domain.User{
			{ID: "staff1", Username: "staff1", Role: domain.RoleStaff},
			{ID: "staff2", Username: "staff2", Role: domain.RoleStaff},
			{ID: "kitchen1", Username: "kitchen1", Role: domain.RoleKitchen},
			{ID: "admin", Username: "admin", Role: domain.RoleAdmin},
		},
	}
}

// openTable runs the QR request/approve pair and returns the new document.
func openTable(t *testing.T, e *Engine, doc domain.Document, tableID int, staffID string) domain.Document {
	t.Helper()
	doc, err := e.RequestTableQr(doc, tableID, staffID)
	require.NoError(t, err)
	n := lastOfType(doc, domain.NotifyQRRequest)
	doc, err = e.ApproveTableQr(doc, n.ID)
	require.NoError(t, err)
	return doc
}

func table(t *testing.T, doc domain.Document, id int) domain.Table {
	t.Helper()
	i := doc.TableIndex(id)
	require.GreaterOrEqual(t, i, 0, "table %d missing", id)
	return doc.Tables[i]
}

func ofType(doc domain.Document, typ domain.NotificationType) []domain.Notification {
	var out []domain.Notification
	for _, n := range doc.Notifications {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func lastOfType(doc domain.Document, typ domain.NotificationType) domain.Notification {
	ns := ofType(doc, typ)
	if len(ns) == 0 {
		return domain.Notification{}
	}
	return ns[len(ns)-1]
}

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
