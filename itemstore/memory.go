package itemstore

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// MemoryStore keeps documents in process memory. It follows the same
// semantics as DynamoStore, including upsert on Update.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Fields
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: map[string]Fields{}}
}

// ScanAll returns all items ordered by id.
func (store *MemoryStore) ScanAll(ctx context.Context) ([]Item, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	items := make([]Item, 0, len(store.items))
	for _, doc := range store.items {
		item, err := doc.Project()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	return items, nil
}

// Get returns the item stored under id.
func (store *MemoryStore) Get(ctx context.Context, id string) (Item, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	doc, ok := store.items[id]
	if !ok {
		return Item{}, errors.Wrapf(ErrMissingKey, "item %v not found", id)
	}

	return doc.Project()
}

// Put replaces the whole document stored under item.ID.
func (store *MemoryStore) Put(ctx context.Context, item Item) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.items[item.ID] = Fields{
		KeyAttribute:  item.ID,
		NameAttribute: item.Name,
	}

	return nil
}

// Update sets the given fields, creating the document when it is absent.
func (store *MemoryStore) Update(ctx context.Context, id string, fields Fields) (Fields, error) {
	updates, err := fields.Updates()
	if err != nil {
		return nil, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	doc, ok := store.items[id]
	if !ok {
		doc = Fields{KeyAttribute: id}
		store.items[id] = doc
	}

	updated := Fields{}
	for name, value := range updates {
		doc[name] = value
		updated[name] = value
	}

	return updated, nil
}

// Delete removes the document stored under id, if any.
func (store *MemoryStore) Delete(ctx context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.items, id)

	return nil
}

// Document returns a copy of the raw document stored under id.
func (store *MemoryStore) Document(id string) (Fields, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	doc, ok := store.items[id]
	if !ok {
		return nil, false
	}

	cp := make(Fields, len(doc))
	for k, v := range doc {
		cp[k] = v
	}

	return cp, true
}
