// Package tasklist holds the authoritative in-memory copy of the user's
// ordered task list and reconciles mutations against the remote store. The
// visible collection is always the last known-good store state plus any
// mutations not yet rejected.
package tasklist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/exp/slices"

	"tasksync/internal/api"
)

// ErrIndexOutOfRange is returned by Reorder for indices outside the
// collection. State is never mutated in that case.
var ErrIndexOutOfRange = errors.New("index out of range")

// ErrEmptyTitle is returned by Add for an empty or whitespace-only title.
var ErrEmptyTitle = errors.New("title must not be empty")

// State is the synchronizer lifecycle state.
type State int

const (
	Uninitialized State = iota
	Loading
	Ready
)

// Session is the synchronizer's view of the owning session: completions
// must not mutate state after teardown, and a rejected credential
// invalidates the session.
type Session interface {
	IsAuthenticated() bool
	Invalidate() error
}

// Synchronizer owns the ordered task collection. The collection is only
// ever mutated here; callers read snapshots via Items and issue mutation
// operations. The lock is never held across a gateway call, so completions
// re-validate their target before applying server data.
type Synchronizer struct {
	mu      sync.Mutex
	gw      api.Gateway
	session Session

	state   State
	loading bool
	epoch   uint64
	items   []api.Item
}

// New creates a synchronizer. A nil session is treated as always
// authenticated (useful for tests and single-shot tools).
func New(gw api.Gateway, session Session) *Synchronizer {
	return &Synchronizer{
		gw:      gw,
		session: session,
		loading: true,
	}
}

// Load fetches the task list, sorts it ascending by order, and replaces the
// local collection. The loading flag clears once the load settles either
// way, unless a reset raced the fetch. Gateway implementations absorb
// list-read failures, so a load cannot fail the caller.
func (s *Synchronizer) Load(ctx context.Context) error {
	s.mu.Lock()
	s.state = Loading
	s.loading = true
	epoch := s.epoch
	s.mu.Unlock()

	items, err := s.gw.ListItems(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		// A reset tore the collection down while the fetch was in flight;
		// leave its teardown state alone.
		return nil
	}
	s.loading = false
	s.state = Ready
	if err != nil {
		glog.Infof("[tasklist]load failed: %v", err)
		return err
	}
	if !s.authenticated() {
		glog.Infof("[tasklist]dropping fetched list for a logged-out session")
		return nil
	}
	slices.SortFunc(items, func(a, b api.Item) int { return a.Order - b.Order })
	s.items = items
	return nil
}

// Items returns a snapshot copy of the collection, in ascending order.
func (s *Synchronizer) Items() []api.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Loading reports whether the initial load has not settled yet.
func (s *Synchronizer) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// State returns the current lifecycle state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Add creates a new item. Nothing local is shown before the store
// acknowledges: on success the store's item, with its assigned id and
// order, is appended; on failure the collection is untouched.
func (s *Synchronizer) Add(ctx context.Context, title string, priority api.Priority, tags []api.Tag) (api.Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return api.Item{}, ErrEmptyTitle
	}

	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	item, err := s.gw.CreateItem(ctx, title, priority, tags)
	if err != nil {
		return api.Item{}, s.writeFailed("add", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch || !s.authenticated() {
		glog.Infof("[tasklist]dropping create acknowledgment for item %d after teardown", item.ID)
		return item, nil
	}
	s.items = append(s.items, item)
	return item, nil
}

// Update applies a partial update to the item with the given id. On success
// the store's merged representation replaces the local item: the store, not
// the local patch, is the source of truth for the result. On failure the
// local item is untouched.
func (s *Synchronizer) Update(ctx context.Context, id int64, patch api.ItemPatch) error {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	item, err := s.gw.UpdateItem(ctx, id, patch)
	if err != nil {
		return s.writeFailed("update", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch || !s.authenticated() {
		glog.Infof("[tasklist]dropping update acknowledgment for item %d after teardown", id)
		return nil
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = item
			return nil
		}
	}
	// A delete raced ahead of this completion; the stale acknowledgment
	// must not resurrect the item.
	glog.Infof("[tasklist]dropping update acknowledgment for deleted item %d", id)
	return nil
}

// Delete removes the item with the given id. On failure the item remains
// present.
func (s *Synchronizer) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	if err := s.gw.DeleteItem(ctx, id); err != nil {
		return s.writeFailed("delete", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch || !s.authenticated() {
		return nil
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = slices.Delete(s.items, i, i+1)
			break
		}
	}
	return nil
}

// Reorder moves the item at oldIndex to newIndex, renumbering every item's
// order to its positional index for instant feedback, then confirms the
// full {id, order} assignment with the store. A failed confirm restores the
// collection captured at entry. oldIndex == newIndex is allowed and still
// issues the call; out-of-range indices are rejected before any mutation.
func (s *Synchronizer) Reorder(ctx context.Context, oldIndex, newIndex int) error {
	var updates []api.OrderUpdate
	return s.optimistic(ctx, "reorder",
		func(items []api.Item) ([]api.Item, error) {
			n := len(items)
			if oldIndex < 0 || n <= oldIndex || newIndex < 0 || n <= newIndex {
				return nil, fmt.Errorf("%w: %d -> %d with %d items", ErrIndexOutOfRange, oldIndex, newIndex, n)
			}
			moved := items[oldIndex]
			items = slices.Delete(items, oldIndex, oldIndex+1)
			items = slices.Insert(items, newIndex, moved)
			updates = make([]api.OrderUpdate, n)
			for i := range items {
				items[i].Order = i
				updates[i] = api.OrderUpdate{ID: items[i].ID, Order: i}
			}
			return items, nil
		},
		func(ctx context.Context) error {
			return s.gw.ReorderItems(ctx, updates)
		})
}

// Reset tears the collection down. In-flight completions captured before
// the reset discard their server data instead of mutating cleared state.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.items = nil
	s.state = Uninitialized
	s.loading = true
}

// optimistic is the captured-snapshot + apply + confirm-or-restore
// primitive behind Reorder, reusable by any future optimistic mutation. The
// snapshot is captured under the lock at entry, so overlapping optimistic
// mutations roll back to the exact collection they mutated, never an
// earlier one. An apply error aborts before any state change; a confirm
// error restores the full snapshot (best-effort, no retry).
func (s *Synchronizer) optimistic(ctx context.Context, op string, apply func(items []api.Item) ([]api.Item, error), confirm func(ctx context.Context) error) error {
	s.mu.Lock()
	snapshot := slices.Clone(s.items)
	epoch := s.epoch
	next, err := apply(s.items)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.items = next
	s.mu.Unlock()

	if err := confirm(ctx); err != nil {
		s.mu.Lock()
		if epoch == s.epoch {
			glog.Infof("[tasklist]%s rejected, rolling back %d items: %v", op, len(snapshot), err)
			s.items = snapshot
		}
		s.mu.Unlock()
		return s.writeFailed(op, err)
	}
	return nil
}

func (s *Synchronizer) authenticated() bool {
	return s.session == nil || s.session.IsAuthenticated()
}

// writeFailed logs a classified write failure and invalidates the session
// when the store rejected the credential.
func (s *Synchronizer) writeFailed(op string, err error) error {
	glog.Infof("[tasklist]%s failed: %v", op, err)
	if api.IsUnauthorized(err) && s.session != nil {
		if invErr := s.session.Invalidate(); invErr != nil {
			glog.Infof("[tasklist]session invalidation failed: %v", invErr)
		}
	}
	return err
}
