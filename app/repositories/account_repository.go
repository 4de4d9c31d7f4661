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

// AccountRepository handles the users collection.
type AccountRepository struct {
	base[models.Account]
}

func NewAccountRepository(col store.Collection) *AccountRepository {
	return &AccountRepository{base[models.Account]{col: col}}
}

// Create inserts a and sets its ID.
func (r *AccountRepository) Create(ctx context.Context, a *models.Account) error {
	id, err := r.insert(ctx, a)
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error) {
	return r.findOne(ctx, store.ByID(id))
}

// FindByEmail is an exact, case-sensitive match.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByShop returns the account linked to shopID.
func (r *AccountRepository) FindByShop(ctx context.Context, shopID primitive.ObjectID) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"shop_id": shopID})
}

// ListByRole lists accounts of role, optionally narrowed to status.
func (r *AccountRepository) ListByRole(ctx context.Context, role workflow.Role, status workflow.AccountStatus) ([]models.Account, error) {
	return r.find(ctx, optional(bson.M{"role": string(role)}, "status", string(status)))
}

// ListPendingShopOwners lists shop accounts still waiting for approval.
func (r *AccountRepository) ListPendingShopOwners(ctx context.Context) ([]models.Account, error) {
	return r.find(ctx, bson.M{"role": string(workflow.RoleShop), "status": string(workflow.AccountPending)})
}

func (r *AccountRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status workflow.AccountStatus, now time.Time) (bool, error) {
	return r.update(ctx, store.ByID(id), Set{"status": string(status)}, now)
}

// SetStatusByShop updates the account linked to shopID. Reports false when
// no account references the shop.
func (r *AccountRepository) SetStatusByShop(ctx context.Context, shopID primitive.ObjectID, status workflow.AccountStatus, now time.Time) (bool, error) {
	return r.update(ctx, bson.M{"shop_id": shopID}, Set{"status": string(status)}, now)
}
