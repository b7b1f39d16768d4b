// Package repository defines the keyed item store contract and its
// implementations.
//
// All of one tournament's items live under a single partition key
// ("TOURNAMENT#<id>"); the sort key disambiguates the item within it
// ("CONFIG", "PLAYER#<id>", "MATCH#<id>"). Updates use a small
// DynamoDB-style expression language so counter increments (ADD) are
// applied by the store rather than read-modify-written by callers.
package repository

import "context"

// Item is one stored record. Values are plain Go scalars, with numbers
// normalized to float64 or int depending on the backend.
type Item map[string]any

// Key addresses one item: partition key plus sort key.
type Key struct {
	PK string
	SK string
}

// Attribute names for the composite key.
const (
	AttrPK = "PK"
	AttrSK = "SK"
)

// KeyOf extracts the composite key from an item.
func KeyOf(it Item) Key {
	k := Key{}
	if pk, ok := it[AttrPK].(string); ok {
		k.PK = pk
	}
	if sk, ok := it[AttrSK].(string); ok {
		k.SK = sk
	}
	return k
}

// Store provides read/write access to tournament items.
type Store interface {
	// Get fetches one item. Returns ErrNotFound when absent.
	Get(ctx context.Context, key Key) (Item, error)

	// Put fully upserts an item, replacing any existing one with the same key.
	Put(ctx context.Context, it Item) error

	// Update applies a partial mutation described by a SET/ADD expression,
	// e.g. "SET #st = :s" or "ADD wins :w, losses :l". Placeholder names
	// ("#st") resolve through names, values (":s") through values. The item
	// is created if it does not exist.
	Update(ctx context.Context, key Key, expr string, names map[string]string, values map[string]any) error

	// Delete removes an item by key. Deleting an absent item is not an error.
	Delete(ctx context.Context, key Key) error

	// QueryByTypePrefix returns all items under pk whose sort key starts
	// with "<prefix>#", ordered by sort key.
	QueryByTypePrefix(ctx context.Context, pk, prefix string) ([]Item, error)

	// QueryAll returns every item under pk, ordered by sort key.
	QueryAll(ctx context.Context, pk string) ([]Item, error)
}
