package floor

import (
	"crypto/subtle"

	"github.com/shopspring/decimal"

	"restaurant-floor/internal/domain"
)

// Authorize is the only gate on customer requests: the token carried in the
// URL must equal the table's current session token. A missing table, a table
// without a session and an empty token are all unauthorized.
func Authorize(doc domain.Document, tableID int, token string) error {
	i := doc.TableIndex(tableID)
	if i < 0 || token == "" {
		return &domain.UnauthorizedError{TableID: tableID}
	}
	want := doc.Tables[i].SessionToken
	if want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(token)) != 1 {
		return &domain.UnauthorizedError{TableID: tableID}
	}
	return nil
}

// CustomerView is what a customer's device is allowed to read.
type CustomerView struct {
	Table      domain.Table      `json:"table"`
	Menu       []domain.MenuItem `json:"menu"`
	BankConfig domain.BankConfig `json:"bankConfig"`
	Total      decimal.Decimal   `json:"total"`
}

func ViewForCustomer(doc domain.Document, tableID int, token string) (CustomerView, error) {
	if err := Authorize(doc, tableID, token); err != nil {
		return CustomerView{}, err
	}
	t := doc.Tables[doc.TableIndex(tableID)]
	menu := make([]domain.MenuItem, 0, len(doc.Menu))
	for _, m := range doc.Menu {
		if m.Available {
			menu = append(menu, m)
		}
	}
	return CustomerView{Table: t, Menu: menu, BankConfig: doc.BankConfig, Total: BillTotal(t.CurrentOrders)}, nil
}
