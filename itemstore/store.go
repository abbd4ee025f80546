package itemstore

import "context"

// Store is the persistence contract the handler relies on. Implementations
// must be safe to share across invocations.
type Store interface {
	// ScanAll returns every item projected to {id, name}.
	ScanAll(ctx context.Context) ([]Item, error)

	// Get returns the item stored under id or an ErrMissingKey error.
	Get(ctx context.Context, id string) (Item, error)

	// Put writes item, replacing any item with the same id.
	Put(ctx context.Context, item Item) error

	// Update sets exactly the given fields on the item stored under id and
	// returns the updated attributes. The primary key is never written.
	Update(ctx context.Context, id string, fields Fields) (Fields, error)

	// Delete removes the item stored under id. Deleting a missing item is
	// not an error.
	Delete(ctx context.Context, id string) error
}
