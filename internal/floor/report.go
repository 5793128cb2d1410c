package floor

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"restaurant-floor/internal/domain"
)

type CookStat struct {
	KitchenStaffID string `json:"kitchenStaffId"`
	Items          int    `json:"items"`
	Portions       int    `json:"portions"`
}

// KitchenStats attributes finished dishes (READY or SERVED) to the cook who
// made them, over billed history and tables still open.
func KitchenStats(doc domain.Document) []CookStat {
	byCook := map[string]*CookStat{}
	count := func(items []domain.OrderItem) {
		for _, it := range items {
			if it.KitchenStaffID == "" {
				continue
			}
			if it.Status != domain.ItemReady && it.Status != domain.ItemServed {
				continue
			}
			s, ok := byCook[it.KitchenStaffID]
			if !ok {
				s = &CookStat{KitchenStaffID: it.KitchenStaffID}
				byCook[it.KitchenStaffID] = s
			}
			s.Items++
			s.Portions += it.Quantity
		}
	}
	for _, h := range doc.History {
		count(h.Items)
	}
	for _, t := range doc.Tables {
		count(t.CurrentOrders)
	}
	out := make([]CookStat, 0, len(byCook))
	for _, s := range byCook {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Portions != out[j].Portions {
			return out[i].Portions > out[j].Portions
		}
		return out[i].KitchenStaffID < out[j].KitchenStaffID
	})
	return out
}

type RevenueReport struct {
	From     time.Time       `json:"from"`
	To       time.Time       `json:"to"`
	Bills    int             `json:"bills"`
	Total    decimal.Decimal `json:"total"`
	Takeaway decimal.Decimal `json:"takeaway"`
	Lost     decimal.Decimal `json:"lost"`
}

// Revenue sums bills dated in [from, to]. Lost is the value of cancelled
// items on those bills.
func Revenue(doc domain.Document, from, to time.Time) RevenueReport {
	r := RevenueReport{From: from, To: to, Total: decimal.Zero, Takeaway: decimal.Zero, Lost: decimal.Zero}
	lo, hi := from.UnixMilli(), to.UnixMilli()
	for _, h := range doc.History {
		if h.Date < lo || h.Date > hi {
			continue
		}
		r.Bills++
		r.Total = r.Total.Add(h.Total)
		if h.OrderType == domain.Takeaway {
			r.Takeaway = r.Takeaway.Add(h.Total)
		}
		for _, it := range h.Items {
			if it.Status == domain.ItemCancelled {
				r.Lost = r.Lost.Add(it.LineTotal())
			}
		}
	}
	return r
}
