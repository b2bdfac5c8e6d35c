package tasklist

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"

	"tasksync/internal/api"
	"tasksync/internal/testutil"
)

// fakeSession records invalidations and reports a settable auth state.
type fakeSession struct {
	authenticated bool
	invalidated   int
}

func (f *fakeSession) IsAuthenticated() bool { return f.authenticated }

func (f *fakeSession) Invalidate() error {
	f.invalidated++
	f.authenticated = false
	return nil
}

func loadedSynchronizer(t *testing.T, gw api.Gateway) *Synchronizer {
	t.Helper()
	s := New(gw, nil)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return s
}

func titles(items []api.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title
	}
	return out
}

func TestLoadSortsByOrder(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.SeedItem("first", false)
	gw.SeedItem("second", false)
	gw.SeedItem("third", false)
	// Shuffle the stored orders so the wire order disagrees with Order.
	assert.Equal(t, nil, gw.ReorderItems(context.Background(), []api.OrderUpdate{
		{ID: 3, Order: 0},
		{ID: 1, Order: 1},
		{ID: 2, Order: 2},
	}))

	s := loadedSynchronizer(t, gw)

	assert.Equal(t, []string{"third", "first", "second"}, titles(s.Items()))
	assert.Equal(t, Ready, s.State())
	assert.Equal(t, false, s.Loading())
}

func TestLoadAbsorbedFailureYieldsEmptyList(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.SeedItem("hidden", false)
	gw.ListItemsErr = errors.New("boom")

	s := loadedSynchronizer(t, gw)

	assert.Equal(t, 0, len(s.Items()))
	assert.Equal(t, Ready, s.State())
}

func TestAddAppendsStoreItem(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.SeedItem("existing", false)
	s := loadedSynchronizer(t, gw)

	item, err := s.Add(context.Background(), "  buy milk  ", api.PriorityHigh, []api.Tag{api.TagShopping})
	assert.Equal(t, nil, err)
	assert.Equal(t, "buy milk", item.Title)
	assert.Equal(t, int64(2), item.ID)
	assert.Equal(t, 1, item.Order)

	items := s.Items()
	assert.Equal(t, 2, len(items))
	assert.Equal(t, item, items[1])
}

func TestAddEmptyTitle(t *testing.T) {
	s := loadedSynchronizer(t, testutil.NewFakeGateway())

	_, err := s.Add(context.Background(), "   \n\t ", api.Priority(""), nil)
	if !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("Add() error = %v, want ErrEmptyTitle", err)
	}
	assert.Equal(t, 0, len(s.Items()))
}

func TestAddFailureLeavesCollectionUntouched(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.SeedItem("existing", false)
	s := loadedSynchronizer(t, gw)
	gw.CreateItemErr = api.NewError(api.KindTransportFailure, "create-item", "connection refused", nil)

	_, err := s.Add(context.Background(), "new", api.Priority(""), nil)
	assert.NotEqual(t, nil, err)
	assert.Equal(t, []string{"existing"}, titles(s.Items()))
}

func TestUpdateReplacesWithStoreState(t *testing.T) {
	gw := testutil.NewFakeGateway()
	seeded := gw.SeedItem("walk dog", false)
	s := loadedSynchronizer(t, gw)

	completed := true
	err := s.Update(context.Background(), seeded.ID, api.ItemPatch{Completed: &completed})
	assert.Equal(t, nil, err)

	items := s.Items()
	assert.Equal(t, 1, len(items))
	assert.Equal(t, true, items[0].Completed)
	assert.Equal(t, "walk dog", items[0].Title)
}

func TestUpdateFailureLeavesItemUntouched(t *testing.T) {
	gw := testutil.NewFakeGateway()
	seeded := gw.SeedItem("walk dog", false)
	s := loadedSynchronizer(t, gw)
	gw.UpdateItemErr = api.NewError(api.KindRemoteRejected, "update-item", "nope", nil)

	completed := true
	err := s.Update(context.Background(), seeded.ID, api.ItemPatch{Completed: &completed})
	assert.NotEqual(t, nil, err)
	assert.Equal(t, false, s.Items()[0].Completed)
}

func TestUpdateUnauthorizedInvalidatesSession(t *testing.T) {
	gw := testutil.NewFakeGateway()
	seeded := gw.SeedItem("walk dog", false)
	sess := &fakeSession{authenticated: true}
	s := New(gw, sess)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	gw.UpdateItemErr = api.NewError(api.KindUnauthorized, "update-item", "credential rejected", nil)

	completed := true
	err := s.Update(context.Background(), seeded.ID, api.ItemPatch{Completed: &completed})
	assert.Equal(t, true, api.IsUnauthorized(err))
	assert.Equal(t, 1, sess.invalidated)
}

func TestUpdateAfterRacingDeleteDoesNotResurrect(t *testing.T) {
	gw := testutil.NewFakeGateway()
	seeded := gw.SeedItem("doomed", false)
	gw.SeedItem("survivor", false)
	s := loadedSynchronizer(t, gw)

	gate := make(chan struct{})
	gw.UpdateItemGate = gate

	completed := true
	done := make(chan error, 1)
	go func() {
		done <- s.Update(context.Background(), seeded.ID, api.ItemPatch{Completed: &completed})
	}()

	// Delete wins the race while the update completion is parked.
	if err := s.Delete(context.Background(), seeded.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	close(gate)

	// The store no longer has the item, so the parked update fails remotely;
	// either way the deleted item must not reappear locally.
	<-done
	assert.Equal(t, []string{"survivor"}, titles(s.Items()))
}

func TestDeleteRemovesItem(t *testing.T) {
	gw := testutil.NewFakeGateway()
	a := gw.SeedItem("a", false)
	gw.SeedItem("b", false)
	s := loadedSynchronizer(t, gw)

	assert.Equal(t, nil, s.Delete(context.Background(), a.ID))
	assert.Equal(t, []string{"b"}, titles(s.Items()))
	assert.Equal(t, 1, len(gw.StoredItems()))
}

func TestDeleteFailureKeepsItem(t *testing.T) {
	gw := testutil.NewFakeGateway()
	a := gw.SeedItem("a", false)
	s := loadedSynchronizer(t, gw)
	gw.DeleteItemErr = api.NewError(api.KindTransportFailure, "delete-item", "connection refused", nil)

	err := s.Delete(context.Background(), a.ID)
	assert.NotEqual(t, nil, err)
	assert.Equal(t, []string{"a"}, titles(s.Items()))
}

func TestReorderMovesAndRenumbers(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.SeedItem("a", false)
	gw.SeedItem("b", false)
	gw.SeedItem("c", false)
	s := loadedSynchronizer(t, gw)

	err := s.Reorder(context.Background(), 2, 0)
	assert.Equal(t, nil, err)

	items := s.Items()
	assert.Equal(t, []string{"c", "a", "b"}, titles(items))
	for i, item := range items {
		assert.Equal(t, i, item.Order)
	}
	assert.Equal(t, []string{"c", "a", "b"}, titles(gw.StoredItems()))
}

func TestReorderSameIndexStillConfirms(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.SeedItem("a", false)
	gw.SeedItem("b", false)
	s := loadedSynchronizer(t, gw)

	assert.Equal(t, nil, s.Reorder(context.Background(), 1, 1))
	assert.Equal(t, []string{"a", "b"}, titles(s.Items()))
}

func TestReorderOutOfRange(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.SeedItem("a", false)
	s := loadedSynchronizer(t, gw)

	tests := []struct {
		name     string
		oldIndex int
		newIndex int
	}{
		{"negative old", -1, 0},
		{"old past end", 1, 0},
		{"negative new", 0, -1},
		{"new past end", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Reorder(context.Background(), tt.oldIndex, tt.newIndex)
			if !errors.Is(err, ErrIndexOutOfRange) {
				t.Fatalf("Reorder(%d, %d) error = %v, want ErrIndexOutOfRange", tt.oldIndex, tt.newIndex, err)
			}
			assert.Equal(t, []string{"a"}, titles(s.Items()))
		})
	}
}

func TestReorderRejectedRollsBack(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.SeedItem("a", false)
	gw.SeedItem("b", false)
	gw.SeedItem("c", false)
	s := loadedSynchronizer(t, gw)
	before := s.Items()
	storedBefore := gw.StoredItems()
	gw.ReorderItemsErr = api.NewError(api.KindRemoteRejected, "reorder-items", "nope", nil)

	err := s.Reorder(context.Background(), 0, 2)
	assert.NotEqual(t, nil, err)
	// Element-wise identical: same ids, same order values, same positions.
	assert.Equal(t, before, s.Items())
	assert.Equal(t, storedBefore, gw.StoredItems())
}

func TestReorderPreservesIDSet(t *testing.T) {
	gw := testutil.NewFakeGateway()
	ids := map[int64]bool{}
	for _, title := range []string{"a", "b", "c", "d"} {
		ids[gw.SeedItem(title, false).ID] = true
	}
	s := loadedSynchronizer(t, gw)

	assert.Equal(t, nil, s.Reorder(context.Background(), 3, 1))

	after := map[int64]bool{}
	for _, item := range s.Items() {
		after[item.ID] = true
	}
	assert.Equal(t, ids, after)
}

func TestResetDropsInFlightAcknowledgment(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.SeedItem("a", false)
	s := loadedSynchronizer(t, gw)

	gate := make(chan struct{})
	gw.ReorderItemsGate = gate

	done := make(chan error, 1)
	go func() {
		done <- s.Reorder(context.Background(), 0, 0)
	}()

	// Tear down while the confirm is parked. The failure path must not
	// restore the pre-reset snapshot into the cleared collection.
	s.Reset()
	gw.ReorderItemsErr = api.NewError(api.KindTransportFailure, "reorder-items", "connection reset", nil)
	close(gate)
	<-done

	assert.Equal(t, 0, len(s.Items()))
	assert.Equal(t, Uninitialized, s.State())
	assert.Equal(t, true, s.Loading())
}

func TestResetThenReloadStartsFresh(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.SeedItem("a", false)
	s := loadedSynchronizer(t, gw)

	s.Reset()
	assert.Equal(t, 0, len(s.Items()))

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	assert.Equal(t, []string{"a"}, titles(s.Items()))
}

// logoutDuringListGateway flips the session to logged out while the list
// fetch is in flight.
type logoutDuringListGateway struct {
	*testutil.FakeGateway
	sess *fakeSession
}

func (g *logoutDuringListGateway) ListItems(ctx context.Context) ([]api.Item, error) {
	g.sess.authenticated = false
	return g.FakeGateway.ListItems(ctx)
}

func TestLoadAfterLogoutDropsFetchedItems(t *testing.T) {
	sess := &fakeSession{authenticated: true}
	gw := &logoutDuringListGateway{FakeGateway: testutil.NewFakeGateway(), sess: sess}
	gw.SeedItem("a", false)
	s := New(gw, sess)

	err := s.Load(context.Background())
	assert.Equal(t, nil, err)

	// The fetch settled, but its items must not attach to a logged-out
	// session's collection.
	assert.Equal(t, 0, len(s.Items()))
	assert.Equal(t, Ready, s.State())
	assert.Equal(t, false, s.Loading())
}

// resetDuringListGateway tears the synchronizer down while the list fetch
// is in flight.
type resetDuringListGateway struct {
	*testutil.FakeGateway
	syn *Synchronizer
}

func (g *resetDuringListGateway) ListItems(ctx context.Context) ([]api.Item, error) {
	g.syn.Reset()
	return g.FakeGateway.ListItems(ctx)
}

func TestLoadAfterResetKeepsTeardownState(t *testing.T) {
	gw := &resetDuringListGateway{FakeGateway: testutil.NewFakeGateway()}
	gw.SeedItem("a", false)
	s := New(gw, nil)
	gw.syn = s

	err := s.Load(context.Background())
	assert.Equal(t, nil, err)

	// The stale completion must not undo the teardown flags either.
	assert.Equal(t, 0, len(s.Items()))
	assert.Equal(t, Uninitialized, s.State())
	assert.Equal(t, true, s.Loading())
}

// ghostDeleteGateway acknowledges deletes without removing the stored item,
// so a later remote update of that item still succeeds.
type ghostDeleteGateway struct {
	*testutil.FakeGateway
}

func (g *ghostDeleteGateway) DeleteItem(ctx context.Context, id int64) error {
	return nil
}

func TestUpdateAcknowledgmentForLocallyRemovedItem(t *testing.T) {
	gw := &ghostDeleteGateway{FakeGateway: testutil.NewFakeGateway()}
	doomed := gw.SeedItem("doomed", false)
	gw.SeedItem("survivor", false)
	s := loadedSynchronizer(t, gw)

	// Locally removed, still present in the store.
	if err := s.Delete(context.Background(), doomed.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	assert.Equal(t, []string{"survivor"}, titles(s.Items()))

	// The remote update succeeds, but the acknowledgment lands on an item
	// the collection no longer holds and must not resurrect it.
	completed := true
	err := s.Update(context.Background(), doomed.ID, api.ItemPatch{Completed: &completed})
	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"survivor"}, titles(s.Items()))
	assert.Equal(t, true, gw.StoredItems()[0].Completed)
}

func TestLoggedOutSessionDropsAddAcknowledgment(t *testing.T) {
	gw := testutil.NewFakeGateway()
	sess := &fakeSession{authenticated: false}
	s := New(gw, sess)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	item, err := s.Add(context.Background(), "late", api.Priority(""), nil)
	assert.Equal(t, nil, err)
	assert.NotEqual(t, int64(0), item.ID)
	assert.Equal(t, 0, len(s.Items()))
}
