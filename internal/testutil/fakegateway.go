// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"tasksync/internal/api"
)

// FakeGateway is an in-memory implementation of api.Gateway for testing.
// It models one user's remote store: registered users with passwords, the
// current profile, and the ordered item collection.
type FakeGateway struct {
	mu        sync.Mutex
	nextID    int64
	items     []api.Item
	profile   api.Profile
	passwords map[string]string

	credential func() string

	// Error injection for testing. ListItemsErr is absorbed into an empty
	// list, matching the gateway contract.
	AuthenticateErr  error
	RegisterErr      error
	FetchProfileErr  error
	UpdateProfileErr error
	ListItemsErr     error
	CreateItemErr    error
	UpdateItemErr    error
	DeleteItemErr    error
	ReorderItemsErr  error

	// Gates block the corresponding call until the channel is closed or
	// receives. Nil means no gate. Used to order racing completions.
	UpdateItemGate   chan struct{}
	ReorderItemsGate chan struct{}
}

// NewFakeGateway creates an empty fake gateway.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		nextID:    1,
		passwords: make(map[string]string),
	}
}

// AddUser registers a user without going through Register.
func (f *FakeGateway) AddUser(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwords[username] = password
	f.profile = api.Profile{Username: username}
}

// SetProfile replaces the stored profile.
func (f *FakeGateway) SetProfile(profile api.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profile = profile
}

// SeedItem adds an item directly to the store and returns it.
func (f *FakeGateway) SeedItem(title string, completed bool) api.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	item := api.Item{
		ID:        f.nextID,
		Title:     title,
		Completed: completed,
		Order:     len(f.items),
	}
	f.nextID++
	f.items = append(f.items, item)
	return item
}

// StoredItems returns a copy of the store's current items.
func (f *FakeGateway) StoredItems() []api.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]api.Item, len(f.items))
	copy(items, f.items)
	return items
}

// SetCredentialSource implements api.CredentialSetter.
func (f *FakeGateway) SetCredentialSource(source func() string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credential = source
}

// authorized reports whether the current call carries a credential. With no
// credential source wired, every call is allowed.
func (f *FakeGateway) authorized() bool {
	if f.credential == nil {
		return true
	}
	return f.credential() != ""
}

// Authenticate implements api.Gateway.
func (f *FakeGateway) Authenticate(ctx context.Context, username, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AuthenticateErr != nil {
		return "", f.AuthenticateErr
	}
	if stored, ok := f.passwords[username]; !ok || stored != password {
		return "", api.NewError(api.KindUnauthorized, "authenticate", "incorrect username or password", nil)
	}
	return "fake-credential-" + username, nil
}

// Register implements api.Gateway.
func (f *FakeGateway) Register(ctx context.Context, username, password string) (api.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RegisterErr != nil {
		return api.Profile{}, f.RegisterErr
	}
	if _, exists := f.passwords[username]; exists {
		return api.Profile{}, api.NewError(api.KindRemoteRejected, "register", "Username already registered", nil)
	}
	f.passwords[username] = password
	f.profile = api.Profile{Username: username}
	return f.profile, nil
}

// FetchProfile implements api.Gateway.
func (f *FakeGateway) FetchProfile(ctx context.Context) (api.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FetchProfileErr != nil {
		return api.Profile{}, f.FetchProfileErr
	}
	if !f.authorized() {
		return api.Profile{}, api.NewError(api.KindUnauthorized, "fetch-profile", "credential rejected", nil)
	}
	return f.profile, nil
}

// UpdateProfile implements api.Gateway.
func (f *FakeGateway) UpdateProfile(ctx context.Context, patch api.ProfilePatch) (api.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateProfileErr != nil {
		return api.Profile{}, f.UpdateProfileErr
	}
	if !f.authorized() {
		return api.Profile{}, api.NewError(api.KindUnauthorized, "update-profile", "credential rejected", nil)
	}
	if patch.DisplayName != nil {
		f.profile.DisplayName = *patch.DisplayName
	}
	if patch.Avatar != nil {
		f.profile.Avatar = *patch.Avatar
	}
	return f.profile, nil
}

// ListItems implements api.Gateway. Failures are absorbed into an empty
// list, per the gateway contract.
func (f *FakeGateway) ListItems(ctx context.Context) ([]api.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListItemsErr != nil || !f.authorized() {
		return []api.Item{}, nil
	}
	items := make([]api.Item, len(f.items))
	copy(items, f.items)
	return items, nil
}

// CreateItem implements api.Gateway.
func (f *FakeGateway) CreateItem(ctx context.Context, title string, priority api.Priority, tags []api.Tag) (api.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateItemErr != nil {
		return api.Item{}, f.CreateItemErr
	}
	if !f.authorized() {
		return api.Item{}, api.NewError(api.KindUnauthorized, "create-item", "credential rejected", nil)
	}
	item := api.Item{
		ID:       f.nextID,
		Title:    title,
		Order:    len(f.items),
		Priority: priority,
		Tags:     tags,
	}
	f.nextID++
	f.items = append(f.items, item)
	return item, nil
}

// UpdateItem implements api.Gateway.
func (f *FakeGateway) UpdateItem(ctx context.Context, id int64, patch api.ItemPatch) (api.Item, error) {
	f.mu.Lock()
	gate := f.UpdateItemGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateItemErr != nil {
		return api.Item{}, f.UpdateItemErr
	}
	if !f.authorized() {
		return api.Item{}, api.NewError(api.KindUnauthorized, "update-item", "credential rejected", nil)
	}
	for i := range f.items {
		if f.items[i].ID != id {
			continue
		}
		if patch.Title != nil {
			f.items[i].Title = *patch.Title
		}
		if patch.Completed != nil {
			f.items[i].Completed = *patch.Completed
		}
		if patch.Order != nil {
			f.items[i].Order = *patch.Order
		}
		if patch.Priority != nil {
			f.items[i].Priority = *patch.Priority
		}
		if patch.Tags != nil {
			f.items[i].Tags = *patch.Tags
		}
		return f.items[i], nil
	}
	return api.Item{}, api.NewError(api.KindRemoteRejected, "update-item", "Todo not found", nil)
}

// DeleteItem implements api.Gateway.
func (f *FakeGateway) DeleteItem(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteItemErr != nil {
		return f.DeleteItemErr
	}
	if !f.authorized() {
		return api.NewError(api.KindUnauthorized, "delete-item", "credential rejected", nil)
	}
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return api.NewError(api.KindRemoteRejected, "delete-item", "Todo not found", nil)
}

// ReorderItems implements api.Gateway.
func (f *FakeGateway) ReorderItems(ctx context.Context, updates []api.OrderUpdate) error {
	f.mu.Lock()
	gate := f.ReorderItemsGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReorderItemsErr != nil {
		return f.ReorderItemsErr
	}
	if !f.authorized() {
		return api.NewError(api.KindUnauthorized, "reorder-items", "credential rejected", nil)
	}
	orders := make(map[int64]int, len(updates))
	for _, update := range updates {
		orders[update.ID] = update.Order
	}
	for i := range f.items {
		if order, ok := orders[f.items[i].ID]; ok {
			f.items[i].Order = order
		}
	}
	for i := 0; i < len(f.items); i++ {
		for j := i + 1; j < len(f.items); j++ {
			if f.items[j].Order < f.items[i].Order {
				f.items[i], f.items[j] = f.items[j], f.items[i]
			}
		}
	}
	return nil
}
