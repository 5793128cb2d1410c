package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restaurant-floor/internal/common/logger"
	"restaurant-floor/internal/domain"
)

type fakeRepo struct {
	mu      sync.Mutex
	rows    map[string][]byte
	saveErr error
}

func (f *fakeRepo) Load(_ context.Context, path string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[path]
	return b, ok, nil
}

func (f *fakeRepo) Save(_ context.Context, path string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.rows[path] = body
	return nil
}

type fakeBroadcast struct {
	published []Envelope
	pubErr    error
	feed      chan Envelope
}

func (f *fakeBroadcast) Publish(_ context.Context, env Envelope) error {
	f.published = append(f.published, env)
	return f.pubErr
}

func (f *fakeBroadcast) Subscribe(context.Context) (<-chan Envelope, error) { return f.feed, nil }

func newRemote() (*RemoteChannel, *fakeRepo, *fakeBroadcast) {
	repo := &fakeRepo{rows: map[string][]byte{}}
	bc := &fakeBroadcast{feed: make(chan Envelope, 4)}
	return NewRemoteChannel("r/main", repo, bc, logger.New("remote-test")), repo, bc
}

func TestRemoteReplace(t *testing.T) {
	ctx := context.Background()
	rc, repo, bc := newRemote()

	_, ok, err := rc.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	doc := domain.DefaultDocument(2, 1000)
	require.NoError(t, rc.Replace(ctx, doc))
	require.Len(t, bc.published, 1)
	assert.Equal(t, "r/main", bc.published[0].Path)
	assert.JSONEq(t, string(repo.rows["r/main"]), string(bc.published[0].Body))

	got, ok, err := rc.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, got.Tables, 3)
	assert.EqualValues(t, 1000, got.LastUpdated)

	bc.pubErr = errors.New("no route")
	assert.NoError(t, rc.Replace(ctx, doc), "the row is written, the broadcast is best effort")

	repo.saveErr = errors.New("connection reset")
	assert.Error(t, rc.Replace(ctx, doc))
	assert.Len(t, bc.published, 2)
}

func TestRemoteLoadKeyedLists(t *testing.T) {
	ctx := context.Background()
	rc, repo, _ := newRemote()
	repo.rows["r/main"] = []byte(`{
		"tables": {"1": {"id": 1, "status": "AVAILABLE", "orderType": "DINE_IN"},
		           "0": {"id": 0, "status": "AVAILABLE", "orderType": "TAKEAWAY", "currentOrders": null}},
		"notifications": null,
		"lastUpdated": 5
	}`)

	doc, ok, err := rc.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, doc.Tables, 2)
	assert.Equal(t, 0, doc.Tables[0].ID)
	assert.NotNil(t, doc.Tables[0].CurrentOrders)
	assert.NotNil(t, doc.Notifications)
}

func TestRemoteLoadSkipsUnknownNotifications(t *testing.T) {
	ctx := context.Background()
	rc, repo, _ := newRemote()
	repo.rows["r/main"] = []byte(`{
		"tables": [{"id": 1, "status": "AVAILABLE", "orderType": "DINE_IN"}],
		"notifications": [{"id": "p1", "type": "promo"}],
		"lastUpdated": 9
	}`)

	doc, ok, err := rc.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, doc.Notifications)
	assert.Equal(t, []string{"p1"}, doc.DroppedNotifications)

	s := NewStore(rc, 1, logger.New("remote-test"))
	assert.NoError(t, s.Open(ctx), "one bad notification does not keep a device from starting")
}

func TestRemoteSubscribeFiltersPath(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rc, _, bc := newRemote()

	sub, err := rc.Subscribe(ctx)
	require.NoError(t, err)

	other, _ := json.Marshal(domain.DefaultDocument(1, 1))
	mine, _ := json.Marshal(domain.DefaultDocument(1, 2))
	bc.feed <- Envelope{Path: "other/branch", Body: other}
	bc.feed <- Envelope{Path: "r/main", Body: []byte(`{"tables": 7`)}
	bc.feed <- Envelope{Path: "r/main", Body: mine}

	select {
	case doc := <-sub:
		assert.EqualValues(t, 2, doc.LastUpdated)
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-sub
		return !open
	}, time.Second, 5*time.Millisecond)
}
