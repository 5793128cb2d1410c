package floor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-floor/internal/domain"
)

func itemIDs(items []domain.OrderItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestMoveIsDestinationFirst(t *testing.T) {
	e := testEngine()
	doc := openTable(t, e, testDoc(4), 1, "staff1")
	doc = openTable(t, e, doc, 2, "staff2")
	doc, err := e.PlaceOrder(doc, 2, []OrderLine{
		{MenuItemID: "pho", Quantity: 1, Status: domain.ItemConfirmed},
		{MenuItemID: "tea", Quantity: 1, Status: domain.ItemConfirmed},
	}, domain.DineIn)
	require.NoError(t, err)
	doc, err = e.PlaceOrder(doc, 1, []OrderLine{{MenuItemID: "pho", Quantity: 3, Status: domain.ItemConfirmed}}, domain.DineIn)
	require.NoError(t, err)
	dstItems := itemIDs(table(t, doc, 2).CurrentOrders)
	srcItems := itemIDs(table(t, doc, 1).CurrentOrders)
	dstToken := table(t, doc, 2).SessionToken

	doc, err = e.RequestTableMove(doc, 1, 2, "staff1")
	require.NoError(t, err)
	req := lastOfType(doc, domain.NotifyMoveRequest)
	assert.Equal(t, domain.MoveRequestPayload{FromID: 1, ToID: 2, StaffID: "staff1"}, req.Payload)
	assert.Len(t, table(t, doc, 1).CurrentOrders, 1, "request alone moves nothing")

	doc, err = e.ApproveTableMove(doc, req.ID)
	require.NoError(t, err)
	dst := table(t, doc, 2)
	assert.Equal(t, append(dstItems, srcItems...), itemIDs(dst.CurrentOrders))
	assert.Equal(t, domain.TableOccupied, dst.Status)
	assert.Equal(t, dstToken, dst.SessionToken, "occupied destination keeps its own session")
	assert.Equal(t, "staff2", dst.ClaimedBy)
	assert.Equal(t, domain.NewTable(1), table(t, doc, 1))
	assert.Empty(t, ofType(doc, domain.NotifyMoveRequest))
	for _, n := range ofType(doc, domain.NotifyKitchen) {
		assert.Equal(t, []int{2}, n.TableRef(), "kitchen work follows the merge")
	}
}

func TestMoveToFreeTableTakesSession(t *testing.T) {
	e := testEngine()
	doc := openTable(t, e, testDoc(4), 1, "staff1")
	doc, err := e.PlaceOrder(doc, 1, []OrderLine{{MenuItemID: "pho", Quantity: 1, Status: domain.ItemPending}}, domain.DineIn)
	require.NoError(t, err)
	token := table(t, doc, 1).SessionToken

	doc, err = e.RequestTableMove(doc, 1, 4, "staff1")
	require.NoError(t, err)
	doc, err = e.ApproveTableMove(doc, lastOfType(doc, domain.NotifyMoveRequest).ID)
	require.NoError(t, err)

	dst := table(t, doc, 4)
	assert.Equal(t, token, dst.SessionToken)
	assert.Equal(t, "staff1", dst.ClaimedBy)
	assert.Equal(t, domain.DineIn, dst.OrderType)
	assert.NoError(t, Authorize(doc, 4, token), "customer keeps ordering from the new table")
	assert.ErrorIs(t, Authorize(doc, 1, token), domain.ErrUnauthorized)
	assert.Equal(t, 1, ActiveClaims(doc, "staff1"))
}

func TestMoveOntoWalkInKeepsServer(t *testing.T) {
	e := testEngine()
	doc := openTable(t, e, testDoc(3), 1, "staff1")
	doc, err := e.PlaceOrder(doc, 1, []OrderLine{{MenuItemID: "pho", Quantity: 1, Status: domain.ItemPending}}, domain.DineIn)
	require.NoError(t, err)
	require.Equal(t, 1, ActiveClaims(doc, "staff1"))

	doc, err = e.RequestTableMove(doc, 1, 0, "staff1")
	require.NoError(t, err)
	doc, err = e.ApproveTableMove(doc, lastOfType(doc, domain.NotifyMoveRequest).ID)
	require.NoError(t, err)

	walkIn := table(t, doc, 0)
	assert.Equal(t, "staff1", walkIn.ClaimedBy, "the source's server follows the orders")
	assert.Equal(t, domain.Takeaway, walkIn.OrderType)
	assert.Equal(t, 0, ActiveClaims(doc, "staff1"), "the walk-in table never counts toward the limit")
	orders := ofType(doc, domain.NotifyOrder)
	require.Len(t, orders, 1)
	assert.Equal(t, []int{0}, orders[0].TableRef())
	assert.Equal(t, "staff1", orders[0].Claimant())
}

func TestMoveLostRace(t *testing.T) {
	e := testEngine()
	doc := openTable(t, e, testDoc(3), 1, "staff1")
	doc, err := e.RequestTableMove(doc, 1, 3, "staff1")
	require.NoError(t, err)
	req := lastOfType(doc, domain.NotifyMoveRequest)
	doc.Tables = doc.Tables[:3]

	next, err := e.ApproveTableMove(doc, req.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, doc, next)

	_, err = e.ApproveTableMove(doc, "gone")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRequestTableMoveValidation(t *testing.T) {
	e := testEngine()
	doc := openTable(t, e, testDoc(3), 1, "staff1")

	_, err := e.RequestTableMove(doc, 1, 1, "staff1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.RequestTableMove(doc, 2, 3, "staff1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "empty source")
	_, err = e.RequestTableMove(doc, 1, 8, "staff1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	doc, err = e.RequestTableMove(doc, 1, 2, "staff1")
	require.NoError(t, err)
	doc, err = e.RejectTableMove(doc, lastOfType(doc, domain.NotifyMoveRequest).ID)
	require.NoError(t, err)
	assert.Empty(t, ofType(doc, domain.NotifyMoveRequest))
	assert.Equal(t, domain.TableOccupied, table(t, doc, 1).Status)
}
