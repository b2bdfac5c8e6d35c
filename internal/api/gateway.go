package api

import "context"

// Gateway is the remote store boundary. It is the only component permitted
// to perform network I/O on behalf of the core. Components other than the
// session manager treat the credential as read-only; implementations pick it
// up from a credential source at call time.
type Gateway interface {
	// Authenticate exchanges a username and password for a bearer credential.
	// A rejected login fails with KindUnauthorized.
	Authenticate(ctx context.Context, username, password string) (string, error)

	// Register creates a new user. A refused registration (e.g. duplicate
	// username) fails with KindRemoteRejected carrying the server's reason.
	Register(ctx context.Context, username, password string) (Profile, error)

	// FetchProfile returns the authenticated user's profile.
	FetchProfile(ctx context.Context) (Profile, error)

	// UpdateProfile applies a partial profile update and returns the remote
	// store's merged result.
	UpdateProfile(ctx context.Context, patch ProfilePatch) (Profile, error)

	// ListItems returns the user's task items. All failures, including
	// credential rejection, are absorbed into an empty slice with a nil
	// error: reading the list must never fail the caller.
	ListItems(ctx context.Context) ([]Item, error)

	// CreateItem creates a new, not-completed item and returns the remote
	// store's representation with its assigned id and order.
	CreateItem(ctx context.Context, title string, priority Priority, tags []Tag) (Item, error)

	// UpdateItem applies a partial update and returns the remote store's
	// merged representation.
	UpdateItem(ctx context.Context, id int64, patch ItemPatch) (Item, error)

	// DeleteItem deletes an item.
	DeleteItem(ctx context.Context, id int64) error

	// ReorderItems assigns new order values to the full list.
	ReorderItems(ctx context.Context, updates []OrderUpdate) error
}

// CredentialSetter is implemented by gateways that read the current
// credential from a callback at call time.
type CredentialSetter interface {
	SetCredentialSource(source func() string)
}
