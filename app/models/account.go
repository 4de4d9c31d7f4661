// Package models holds the stored shape of every Near2Door entity.
// Field names follow the bson documents in MongoDB; the HTTP layer renders
// them through pkg/projector, so json tags are not needed.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vancyferns/near2door/app/workflow"
)

// Account is a registered customer, shop owner or delivery agent.
// Agents are accounts with Role == workflow.RoleAgent.
type Account struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty"`
	Name      string                 `bson:"name"`
	Email     string                 `bson:"email"`
	Password  string                 `bson:"password"`
	Role      workflow.Role          `bson:"role"`
	Status    workflow.AccountStatus `bson:"status,omitempty"`
	ShopID    *primitive.ObjectID    `bson:"shop_id,omitempty"`
	Meta      bson.M                 `bson:"meta,omitempty"`
	CreatedAt time.Time              `bson:"created_at"`
	UpdatedAt *time.Time             `bson:"updated_at,omitempty"`
}
