package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/domain"
	"restaurant-floor/internal/floor"
	"restaurant-floor/internal/snapshot"
)

type switchChannel struct {
	snapshot.Channel
	down atomic.Bool
}

func (s *switchChannel) Replace(ctx context.Context, doc domain.Document) error {
	if s.down.Load() {
		return errors.New("offline")
	}
	return s.Channel.Replace(ctx, doc)
}

func newTestService(t *testing.T) (FloorServiceInterface, *snapshot.Store, *switchChannel) {
	t.Helper()
	ch := &switchChannel{Channel: snapshot.NewMemoryChannel()}
	log := logger.New("floor-test")
	store := snapshot.NewStore(ch, 4, log)
	require.NoError(t, store.Open(context.Background()))

	n := 0
	engine := floor.NewEngine()
	engine.NewToken = func() string {
		n++
		return fmt.Sprintf("TOKEN%d", n)
	}
	return New(store, engine, log).FloorService, store, ch
}

func openTable(t *testing.T, svc FloorServiceInterface, tableID int, staffID string) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, svc.RequestQr(ctx, tableID, staffID))
	var notifID string
	for _, n := range svc.Snapshot().Notifications {
		if p, ok := n.Payload.(domain.QRRequestPayload); ok && p.TableID == tableID {
			notifID = n.ID
		}
	}
	applied, err := svc.ApproveQr(ctx, notifID)
	require.NoError(t, err)
	require.True(t, applied)
	doc := svc.Snapshot()
	tb, err := doc.Table(tableID)
	require.NoError(t, err)
	return tb.SessionToken
}

func TestCustomerOrderNeedsSession(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	token := openTable(t, svc, 2, "staff1")

	before := svc.Snapshot()
	_, err := svc.CustomerOrder(ctx, 2, "WRONG", []floor.OrderLine{{MenuItemID: "m-pho", Quantity: 1}})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, before.LastUpdated, svc.Snapshot().LastUpdated)

	tb, err := svc.CustomerOrder(ctx, 2, token, []floor.OrderLine{
		{MenuItemID: "m-pho", Quantity: 1, Status: domain.ItemConfirmed},
	})
	require.NoError(t, err)
	require.Len(t, tb.CurrentOrders, 1)
	assert.Equal(t, domain.ItemPending, tb.CurrentOrders[0].Status, "customers cannot skip staff approval")

	view, err := svc.CustomerView(2, token)
	require.NoError(t, err)
	assert.Equal(t, "55000", view.Total.String())
}

func TestApprovalLostRace(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	openTable(t, svc, 1, "staff1")
	require.NoError(t, svc.RequestMove(ctx, 1, 3, "staff1"))

	var moveID string
	for _, n := range svc.Snapshot().Notifications {
		if n.Type == domain.NotifyMoveRequest {
			moveID = n.ID
		}
	}
	require.NoError(t, svc.ForceClose(ctx, 1), "closing the source drops its move request")

	applied, err := svc.ApproveMove(ctx, moveID)
	assert.NoError(t, err)
	assert.False(t, applied)

	applied, err = svc.ApproveQr(ctx, "never-existed")
	assert.NoError(t, err)
	assert.False(t, applied)
}

func TestConfirmPaymentReturnsBill(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	openTable(t, svc, 4, "staff2")
	_, err := svc.PlaceOrder(ctx, 4, []floor.OrderLine{
		{MenuItemID: "m-pho", Quantity: 2, Status: domain.ItemConfirmed},
		{MenuItemID: "m-icedtea", Quantity: 1, Status: domain.ItemConfirmed},
	}, domain.DineIn)
	require.NoError(t, err)
	_, err = svc.RequestPayment(ctx, 4)
	require.NoError(t, err)
	tb, err := svc.StartBilling(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, domain.TableBilling, tb.Status)

	bill, err := svc.ConfirmPayment(ctx, 4, "staff1")
	require.NoError(t, err)
	assert.Equal(t, "120000", bill.Total.String())
	assert.Equal(t, "staff2", bill.StaffID)

	report := svc.Revenue(time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	assert.Equal(t, 1, report.Bills)
}

func TestSyncFailureSurfaces(t *testing.T) {
	svc, store, ch := newTestService(t)
	ctx := context.Background()
	before := store.Read()

	ch.down.Store(true)
	err := svc.RequestQr(ctx, 1, "staff1")
	assert.ErrorIs(t, err, domain.ErrSyncFailure)
	assert.Equal(t, before, store.Read())

	ch.down.Store(false)
	assert.NoError(t, svc.RequestQr(ctx, 1, "staff1"), "retrying by hand works once the channel is back")
}

func TestLoginAndNotifications(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Login("staff1", "nope")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	u, err := svc.Login("STAFF1", "staff1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, u.Role)

	openTable(t, svc, 1, "staff1")
	mine, err := svc.Notifications("staff1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	theirs, err := svc.Notifications("staff2")
	require.NoError(t, err)
	assert.Empty(t, theirs)
	_, err = svc.Notifications("ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.MarkNotificationRead(ctx, mine[0].ID))
	mine, _ = svc.Notifications("staff1")
	assert.True(t, mine[0].Read)
	require.NoError(t, svc.DismissNotification(ctx, mine[0].ID))
	mine, _ = svc.Notifications("staff1")
	assert.Empty(t, mine)

	require.NoError(t, svc.Heartbeat(ctx, "staff1"))
	staff, _ := svc.User("staff1")
	assert.NotZero(t, staff.LastActive)
}
