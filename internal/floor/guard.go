package floor

import "restaurant-floor/internal/domain"

// MaxActiveTables is how many open tables one server may hold at once.
const MaxActiveTables = 3

func holdsClaim(s domain.TableStatus) bool {
	return s == domain.TableOccupied || s == domain.TablePaying || s == domain.TableBilling
}

// ActiveClaims counts the dining tables staffID currently owns. The walk-in
// table is shared and never counts.
func ActiveClaims(doc domain.Document, staffID string) int {
	n := 0
	for _, t := range doc.Tables {
		if t.ClaimedBy == staffID && !t.IsWalkIn() && holdsClaim(t.Status) {
			n++
		}
	}
	return n
}

// CheckCapacity must pass before staffID is handed another table.
func CheckCapacity(doc domain.Document, staffID string) error {
	if n := ActiveClaims(doc, staffID); n >= MaxActiveTables {
		return &domain.CapacityExceededError{StaffID: staffID, Active: n, Limit: MaxActiveTables}
	}
	return nil
}

// checkClaimGrowth rejects a result that hands staffID more tables than the
// limit. Moves that only shift an existing claim leave the count unchanged and
// always pass.
func checkClaimGrowth(before, after domain.Document, staffID string) error {
	if staffID == "" {
		return nil
	}
	was, now := ActiveClaims(before, staffID), ActiveClaims(after, staffID)
	if now > was && now > MaxActiveTables {
		return &domain.CapacityExceededError{StaffID: staffID, Active: was, Limit: MaxActiveTables}
	}
	return nil
}
