// Package services implements the marketplace operations. Every exported
// method validates its input, applies the workflow rules, talks to the
// repositories and returns either models or an *apperr.Error, so the HTTP
// layer only has to decode, call and render.
package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vancyferns/near2door/app/repositories"
	"github.com/vancyferns/near2door/pkg/apperr"
	"github.com/vancyferns/near2door/pkg/event"
	"github.com/vancyferns/near2door/pkg/objectid"
	"github.com/vancyferns/near2door/pkg/storage"
	"github.com/vancyferns/near2door/pkg/store"
	"github.com/vancyferns/near2door/pkg/validate"
)

// Clock returns the current time. Tests inject a fixed one.
type Clock func() time.Time

// Cache is the read-through cache used for aggregate views. A nil
// *cache.Redis satisfies it and always misses.
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Options carries the collaborators shared by every service.
type Options struct {
	Events           *event.Bus
	Clock            Clock
	Disk             storage.Disk
	Cache            Cache
	ReconcileWorkers int
}

// Services bundles every domain service.
type Services struct {
	Accounts  *AccountService
	Shops     *ShopService
	Products  *ProductService
	Orders    *OrderService
	Agents    *AgentService
	Finance   *FinanceService
	Uploads   *UploadService
	Reconcile *ReconcileService
}

// New wires every service over repos.
func New(repos *repositories.Repositories, opts Options) *Services {
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC() }
	}
	if opts.Cache == nil {
		opts.Cache = noCache{}
	}
	if opts.ReconcileWorkers <= 0 {
		opts.ReconcileWorkers = 4
	}

	return &Services{
		Accounts:  NewAccountService(repos.Accounts, repos.Shops, opts.Events, opts.Clock),
		Shops:     NewShopService(repos.Shops, repos.Products, repos.Accounts, opts.Events, opts.Clock),
		Products:  NewProductService(repos.Products, repos.Shops, opts.Clock),
		Orders:    NewOrderService(repos.Orders, repos.Shops, repos.Finances, opts.Events, opts.Cache, opts.Clock),
		Agents:    NewAgentService(repos.Accounts, repos.Finances),
		Finance:   NewFinanceService(repos.Orders, repos.Finances, opts.Cache),
		Uploads:   NewUploadService(opts.Disk),
		Reconcile: NewReconcileService(repos.Accounts, repos.Shops, opts.Events, opts.Clock, opts.ReconcileWorkers),
	}
}

// parseID decodes an external identifier for entity.
func parseID(entity, s string) (primitive.ObjectID, error) {
	id, ok := objectid.Parse(s)
	if !ok {
		return primitive.NilObjectID, apperr.InvalidID(entity)
	}
	return id, nil
}

// parseOptionalID is parseID for fields that may be left empty.
func parseOptionalID(entity, s string) (*primitive.ObjectID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := parseID(entity, s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// check runs struct validation and converts failures into an apperr.
func check(v any) error {
	if errs := validate.Struct(v); validate.HasErrors(errs) {
		return apperr.Validation(errs)
	}
	return nil
}

// classify maps store failures onto the error taxonomy.
func classify(entity, op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(entity)
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Conflict("%s already exists", entity)
	default:
		return apperr.Internal("failed to "+op+" "+entity, err)
	}
}

type noCache struct{}

func (noCache) Get(context.Context, string, any) bool { return false }

func (noCache) Set(context.Context, string, any, time.Duration) error { return nil }

func (noCache) Del(context.Context, ...string) error { return nil }
