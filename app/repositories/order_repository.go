package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vancyferns/near2door/app/models"
	"github.com/vancyferns/near2door/pkg/store"
)

// OrderRepository handles the orders collection.
type OrderRepository struct {
	base[models.Order]
}

func NewOrderRepository(col store.Collection) *OrderRepository {
	return &OrderRepository{base[models.Order]{col: col}}
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	id, err := r.insert(ctx, o)
	if err != nil {
		return err
	}
	o.ID = id
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return r.findOne(ctx, store.ByID(id))
}

// ListBy lists orders whose field (customer_id, shop_id or agent_id)
// equals id.
func (r *OrderRepository) ListBy(ctx context.Context, field string, id primitive.ObjectID) ([]models.Order, error) {
	return r.find(ctx, bson.M{field: id})
}

func (r *OrderRepository) All(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, nil)
}

// SetStatus writes status on order id, scoped to shopID when it is non-nil.
// Reports false when nothing matched.
func (r *OrderRepository) SetStatus(ctx context.Context, id primitive.ObjectID, shopID *primitive.ObjectID, status string, now time.Time) (bool, error) {
	filter := store.ByID(id)
	if shopID != nil {
		filter["shop_id"] = *shopID
	}
	return r.update(ctx, filter, Set{"status": status}, now)
}
