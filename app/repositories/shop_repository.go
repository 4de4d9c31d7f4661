package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vancyferns/near2door/app/models"
	"github.com/vancyferns/near2door/app/workflow"
	"github.com/vancyferns/near2door/pkg/store"
)

// ShopFilter narrows shop listings. Empty fields do not filter.
type ShopFilter struct {
	Status       workflow.ShopStatus
	Subscription string
}

// ShopRepository handles the shops collection.
type ShopRepository struct {
	base[models.Shop]
}

func NewShopRepository(col store.Collection) *ShopRepository {
	return &ShopRepository{base[models.Shop]{col: col}}
}

func (r *ShopRepository) Create(ctx context.Context, s *models.Shop) error {
	id, err := r.insert(ctx, s)
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

func (r *ShopRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Shop, error) {
	return r.findOne(ctx, store.ByID(id))
}

func (r *ShopRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := r.col.Count(ctx, store.ByID(id))
	return n > 0, err
}

func (r *ShopRepository) List(ctx context.Context, f ShopFilter) ([]models.Shop, error) {
	filter := optional(bson.M{}, "status", string(f.Status))
	return r.find(ctx, optional(filter, "subscription.status", f.Subscription))
}

// Update applies set to shop id. Reports false when the shop is missing.
func (r *ShopRepository) Update(ctx context.Context, id primitive.ObjectID, set Set, now time.Time) (bool, error) {
	return r.update(ctx, store.ByID(id), set, now)
}

// SetOwner links the shop to its owner account.
func (r *ShopRepository) SetOwner(ctx context.Context, id, owner primitive.ObjectID, now time.Time) error {
	_, err := r.update(ctx, store.ByID(id), Set{"owner_id": owner}, now)
	return err
}

// ListWithoutOwner lists shops in status with no owner_id.
func (r *ShopRepository) ListWithoutOwner(ctx context.Context, status workflow.ShopStatus) ([]models.Shop, error) {
	return r.find(ctx, bson.M{"status": string(status), "owner_id": nil})
}
