package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vancyferns/near2door/app/models"
	"github.com/vancyferns/near2door/pkg/store"
)

// ProductRepository handles the products collection. Reads and writes of a
// single product are always scoped by its owning shop.
type ProductRepository struct {
	base[models.Product]
}

func NewProductRepository(col store.Collection) *ProductRepository {
	return &ProductRepository{base[models.Product]{col: col}}
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	id, err := r.insert(ctx, p)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *ProductRepository) ListByShop(ctx context.Context, shopID primitive.ObjectID) ([]models.Product, error) {
	return r.find(ctx, bson.M{"shop_id": shopID})
}

// FindInShop returns product id only when it belongs to shopID.
func (r *ProductRepository) FindInShop(ctx context.Context, id, shopID primitive.ObjectID) (*models.Product, error) {
	return r.findOne(ctx, scoped(id, shopID))
}

// UpdateInShop reports false when product id does not exist in shopID.
func (r *ProductRepository) UpdateInShop(ctx context.Context, id, shopID primitive.ObjectID, set Set, now time.Time) (bool, error) {
	return r.update(ctx, scoped(id, shopID), set, now)
}

func scoped(id, shopID primitive.ObjectID) bson.M {
	return bson.M{"_id": id, "shop_id": shopID}
}
