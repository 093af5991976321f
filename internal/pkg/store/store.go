// Package store defines the document-store contract the sync engines are
// written against: collection CRUD plus a push subscription that re-delivers
// the full matching document set on any server-side change.
package store

import (
	"context"
	"errors"
)

// ErrNotFound reports a lookup for a document id that is not in the store.
var ErrNotFound = errors.New("store: document not found")

// Document is one stored record with its collection-unique id.
type Document struct {
	ID   string
	Data map[string]any
}

// Query selects documents with Field == Value, optionally ordered by a field.
type Query struct {
	Field   string
	Value   any
	OrderBy string
	Desc    bool
}

// Subscription is a live view over one query. Snapshots delivers the full
// current matching set on every change, starting with the set at subscribe
// time. Stop deregisters the upstream listener and closes the channel;
// stopping one subscription never affects another.
type Subscription interface {
	Snapshots() <-chan []Document
	Stop()
}

// Store is the persistence contract consumed by the sync engines.
type Store interface {
	Create(ctx context.Context, collection, id string, data map[string]any) error
	Get(ctx context.Context, collection, id string) (Document, error)
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	Delete(ctx context.Context, collection, id string) error
	Subscribe(ctx context.Context, collection string, q Query) (Subscription, error)
}
