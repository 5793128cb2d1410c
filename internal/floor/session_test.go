package floor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-floor/internal/domain"
)

func TestQrSession(t *testing.T) {
	e := testEngine()
	doc := testDoc(3)

	doc, err := e.RequestTableQr(doc, 2, "staff1")
	require.NoError(t, err)
	tb := table(t, doc, 2)
	assert.Equal(t, domain.TableAvailable, tb.Status)
	assert.True(t, tb.QRRequested)
	assert.Empty(t, tb.ClaimedBy)
	req := lastOfType(doc, domain.NotifyQRRequest)
	assert.Equal(t, domain.RoleAdmin, req.TargetRole)
	assert.Equal(t, domain.QRRequestPayload{TableID: 2, StaffID: "staff1"}, req.Payload)

	_, err = e.RequestTableQr(doc, 2, "staff2")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "already pending")

	doc, err = e.ApproveTableQr(doc, req.ID)
	require.NoError(t, err)
	tb = table(t, doc, 2)
	assert.Equal(t, domain.TableOccupied, tb.Status)
	assert.Equal(t, "TOK001", tb.SessionToken)
	assert.Equal(t, "staff1", tb.ClaimedBy)
	assert.False(t, tb.QRRequested)
	assert.Empty(t, tb.CurrentOrders)
	assert.Empty(t, ofType(doc, domain.NotifyQRRequest))
	opened := lastOfType(doc, domain.NotifySystem)
	assert.Equal(t, "staff1", opened.Claimant())

	_, err = e.RequestTableQr(doc, 2, "staff1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "table is no longer free")
	_, err = e.RequestTableQr(doc, 0, "staff1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.ApproveTableQr(doc, "gone")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRejectTableQr(t *testing.T) {
	e := testEngine()
	doc, err := e.RequestTableQr(testDoc(2), 1, "staff1")
	require.NoError(t, err)
	doc, err = e.RejectTableQr(doc, lastOfType(doc, domain.NotifyQRRequest).ID)
	require.NoError(t, err)
	assert.False(t, table(t, doc, 1).QRRequested)
	assert.Empty(t, doc.Notifications)
}

func TestApproveQrForVanishedTable(t *testing.T) {
	e := testEngine()
	doc, err := e.RequestTableQr(testDoc(2), 2, "staff1")
	require.NoError(t, err)
	req := lastOfType(doc, domain.NotifyQRRequest)
	doc.Tables = doc.Tables[:2]

	next, err := e.ApproveTableQr(doc, req.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, doc, next)
}

func TestFullTableCycle(t *testing.T) {
	e := testEngine()
	doc := openTable(t, e, testDoc(3), 1, "staff1")
	token := table(t, doc, 1).SessionToken
	doc, err := e.PlaceOrder(doc, 1, []OrderLine{{MenuItemID: "pho", Quantity: 1, Status: domain.ItemConfirmed}}, domain.DineIn)
	require.NoError(t, err)

	doc, err = e.RequestPayment(doc, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.TablePaying, table(t, doc, 1).Status)
	pay := lastOfType(doc, domain.NotifyPayment)
	assert.Equal(t, "staff1", pay.Claimant())
	_, err = e.RequestPayment(doc, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	doc, err = e.StartBilling(doc, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.TableBilling, table(t, doc, 1).Status)

	doc, err = e.ConfirmPayment(doc, 1, "staff1")
	require.NoError(t, err)
	tb := table(t, doc, 1)
	assert.Equal(t, domain.TableReviewing, tb.Status)
	assert.Equal(t, token, tb.SessionToken, "the review still needs the session")
	assert.Empty(t, tb.ClaimedBy)
	assert.Empty(t, ofType(doc, domain.NotifyPayment))
	assert.Equal(t, "BILL-"+token+"-"+itoa(testClock.UnixMilli()), doc.History[0].ID)

	_, err = e.SubmitReview(doc, 1, "WRONG", 5, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = e.SubmitReview(doc, 1, token, 9, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	doc, err = e.SubmitReview(doc, 1, token, 5, "great pho")
	require.NoError(t, err)
	tb = table(t, doc, 1)
	assert.Equal(t, domain.TableAvailable, tb.Status)
	assert.Empty(t, tb.SessionToken)
	require.Len(t, doc.Reviews, 1)
	assert.Equal(t, 5, doc.Reviews[0].Rating)
	assert.ErrorIs(t, Authorize(doc, 1, token), domain.ErrUnauthorized, "old token is dead")
}

func TestAdminForceCloseIsIdempotent(t *testing.T) {
	e := testEngine()
	doc := openTable(t, e, testDoc(3), 2, "staff1")
	doc, err := e.PlaceOrder(doc, 2, []OrderLine{{MenuItemID: "pho", Quantity: 1, Status: domain.ItemPending}}, domain.DineIn)
	require.NoError(t, err)
	doc, err = e.RequestPayment(doc, 2)
	require.NoError(t, err)
	historyBefore := len(doc.History)

	once, err := e.AdminForceClose(doc, 2)
	require.NoError(t, err)
	twice, err := e.AdminForceClose(once, 2)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	tb := table(t, once, 2)
	assert.Equal(t, domain.NewTable(2), tb)
	assert.Len(t, once.History, historyBefore, "force close never bills")
	for _, n := range once.Notifications {
		assert.NotContains(t, n.TableRef(), 2)
	}

	_, err = e.SetTableEmpty(once, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCallStaff(t *testing.T) {
	e := testEngine()
	doc := openTable(t, e, testDoc(2), 1, "staff2")
	token := table(t, doc, 1).SessionToken

	doc, err := e.CallStaff(doc, 1, token)
	require.NoError(t, err)
	calls := ofType(doc, domain.NotifyCallStaff)
	require.Len(t, calls, 1)
	assert.Equal(t, "staff2", calls[0].Claimant())

	doc, err = e.CallStaff(doc, 1, token)
	require.NoError(t, err)
	assert.Len(t, ofType(doc, domain.NotifyCallStaff), 1, "unread call is not repeated")

	_, err = e.CallStaff(doc, 1, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthorize(t *testing.T) {
	e := testEngine()
	doc := openTable(t, e, testDoc(2), 1, "staff1")
	token := table(t, doc, 1).SessionToken

	assert.NoError(t, Authorize(doc, 1, token))
	for name, tc := range map[string]struct {
		table int
		token string
	}{
		"empty token":         {1, ""},
		"wrong token":         {1, "ZZZZZZ"},
		"token of other case": {1, "tok001"},
		"table without token": {2, token},
		"unknown table":       {9, token},
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, Authorize(doc, tc.table, tc.token), domain.ErrUnauthorized)
		})
	}

	view, err := ViewForCustomer(doc, 1, token)
	require.NoError(t, err)
	assert.Len(t, view.Menu, 2, "unavailable dishes are hidden")
}

func TestNotificationsFor(t *testing.T) {
	e := testEngine()
	doc := openTable(t, e, testDoc(3), 1, "staff1")
	doc = openTable(t, e, doc, 2, "staff2")
	doc, err := e.PlaceOrder(doc, 1, []OrderLine{{MenuItemID: "pho", Quantity: 1, Status: domain.ItemPending}}, domain.DineIn)
	require.NoError(t, err)
	doc, err = e.PlaceOrder(doc, 0, []OrderLine{{MenuItemID: "tea", Quantity: 1, Status: domain.ItemPending}}, domain.Takeaway)
	require.NoError(t, err)
	doc, err = e.RequestTableMove(doc, 1, 3, "staff1")
	require.NoError(t, err)

	staff2 := NotificationsFor(doc, domain.User{ID: "staff2", Role: domain.RoleStaff})
	for _, n := range staff2 {
		assert.Contains(t, []string{"", "staff2"}, n.Claimant())
		assert.Equal(t, domain.RoleStaff, n.TargetRole)
	}
	// walk-in order + own "table opened"
	assert.Len(t, staff2, 2)

	admin := NotificationsFor(doc, domain.User{ID: "admin", Role: domain.RoleAdmin})
	assert.Len(t, admin, len(doc.Notifications))
	assert.Empty(t, NotificationsFor(doc, domain.User{ID: "kitchen1", Role: domain.RoleKitchen}))

	doc, err = e.MarkNotificationRead(doc, staff2[0].ID)
	require.NoError(t, err)
	n, _, err := doc.Notification(staff2[0].ID)
	require.NoError(t, err)
	assert.True(t, n.Read)
	doc, err = e.DismissNotification(doc, staff2[0].ID)
	require.NoError(t, err)
	_, err = e.DismissNotification(doc, staff2[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
