// Package repositories gives each entity a constructed, injectable handle on
// its store collection. Repositories speak models and ObjectIDs; they return
// store.ErrNotFound and store.ErrDuplicate unchanged so services can
// classify them.
package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vancyferns/near2door/pkg/store"
)

// Set is a field-set update keyed by (optionally dotted) bson field names.
type Set = bson.M

// Repositories bundles one repository per entity.
type Repositories struct {
	Accounts *AccountRepository
	Shops    *ShopRepository
	Products *ProductRepository
	Orders   *OrderRepository
	Finances *FinanceRepository
}

// New builds every repository over s.
func New(s store.Store) *Repositories {
	return &Repositories{
		Accounts: NewAccountRepository(s.Collection(store.Users)),
		Shops:    NewShopRepository(s.Collection(store.Shops)),
		Products: NewProductRepository(s.Collection(store.Products)),
		Orders:   NewOrderRepository(s.Collection(store.Orders)),
		Finances: NewFinanceRepository(s.Collection(store.Finances)),
	}
}

// base carries the typed helpers shared by every repository.
type base[T any] struct {
	col store.Collection
}

func (b base[T]) findOne(ctx context.Context, filter bson.M) (*T, error) {
	var out T
	if err := b.col.FindOne(ctx, filter, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b base[T]) find(ctx context.Context, filter bson.M) ([]T, error) {
	out := []T{}
	if err := b.col.Find(ctx, filter, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// update applies set to the document matching filter, stamps updated_at
// and reports whether a document matched.
func (b base[T]) update(ctx context.Context, filter bson.M, set Set, now time.Time) (bool, error) {
	fields := make(bson.M, len(set)+1)
	for k, v := range set {
		fields[k] = v
	}
	fields["updated_at"] = now

	matched, err := b.col.UpdateOne(ctx, filter, fields)
	if err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (b base[T]) insert(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	return b.col.InsertOne(ctx, doc)
}

// optional adds key=value to filter when value is non-empty.
func optional(filter bson.M, key, value string) bson.M {
	if value != "" {
		filter[key] = value
	}
	return filter
}
