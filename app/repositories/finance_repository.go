package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vancyferns/near2door/app/models"
	"github.com/vancyferns/near2door/pkg/store"
)

// FinanceRepository handles the finances collection. Records are
// append-only.
type FinanceRepository struct {
	base[models.FinanceRecord]
}

func NewFinanceRepository(col store.Collection) *FinanceRepository {
	return &FinanceRepository{base[models.FinanceRecord]{col: col}}
}

func (r *FinanceRepository) Create(ctx context.Context, rec *models.FinanceRecord) error {
	id, err := r.insert(ctx, rec)
	if err != nil {
		return err
	}
	rec.ID = id
	return nil
}

func (r *FinanceRepository) CountByAgent(ctx context.Context, agentID primitive.ObjectID) (int64, error) {
	return r.col.Count(ctx, bson.M{"agent_id": agentID})
}

// ExistsForOrder reports whether a payout was already booked for orderID.
func (r *FinanceRepository) ExistsForOrder(ctx context.Context, orderID primitive.ObjectID) (bool, error) {
	n, err := r.col.Count(ctx, bson.M{"order_id": orderID})
	return n > 0, err
}

func (r *FinanceRepository) All(ctx context.Context) ([]models.FinanceRecord, error) {
	return r.find(ctx, nil)
}
