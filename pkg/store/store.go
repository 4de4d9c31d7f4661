// Package store is the persistence boundary for Near2Door.
//
// It exposes collection-scoped find/insert/update operations over
// bson documents keyed by primitive.ObjectID. Two implementations exist:
//
//   - Mongo: the production adapter on go.mongodb.org/mongo-driver.
//   - Memory: an in-process fake with the same semantics, used by tests
//     and by `near2door serve --memory` for local demos.
//
// Filters are equality matches on (optionally dotted) field paths, e.g.
// bson.M{"subscription.status": "active"}. Updates are field-set only.
package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names.
const (
	Users    = "users"
	Shops    = "shops"
	Products = "products"
	Orders   = "orders"
	Finances = "finances"
	Logs     = "logs"
)

var (
	// ErrNotFound is returned by FindOne when nothing matches.
	ErrNotFound = errors.New("store: document not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("store: duplicate key")
)

// Collection is a single named set of documents.
type Collection interface {
	// InsertOne stores doc and returns its identifier. A zero or missing
	// _id is replaced by a freshly generated one.
	InsertOne(ctx context.Context, doc any) (primitive.ObjectID, error)

	// FindOne decodes the first document matching filter into dest.
	FindOne(ctx context.Context, filter bson.M, dest any) error

	// Find decodes every matching document into dest, which must be a
	// pointer to a slice. Results are in insertion order.
	Find(ctx context.Context, filter bson.M, dest any) error

	// UpdateOne applies a field-set to the first document matching filter
	// and reports how many documents matched (0 or 1).
	UpdateOne(ctx context.Context, filter bson.M, set bson.M) (int64, error)

	// Count returns the number of documents matching filter.
	Count(ctx context.Context, filter bson.M) (int64, error)
}

// Store hands out collections and owns the underlying connection.
type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Index describes a secondary index on one collection.
type Index struct {
	Collection string
	Keys       []string
	Unique     bool
}

// Indexes is the index set both implementations honour. Only Unique
// matters to Memory.
var Indexes = []Index{
	{Collection: Users, Keys: []string{"email"}, Unique: true},
	{Collection: Users, Keys: []string{"shop_id"}},
	{Collection: Users, Keys: []string{"role", "status"}},
	{Collection: Shops, Keys: []string{"status"}},
	{Collection: Products, Keys: []string{"shop_id"}},
	{Collection: Orders, Keys: []string{"shop_id"}},
	{Collection: Orders, Keys: []string{"customer_id"}},
	{Collection: Orders, Keys: []string{"agent_id"}},
	{Collection: Finances, Keys: []string{"agent_id"}},
}

// ByID is shorthand for the identifier filter.
func ByID(id primitive.ObjectID) bson.M {
	return bson.M{"_id": id}
}
