package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vancyferns/near2door/app/workflow"
)

type Subscription struct {
	Active bool   `bson:"active"`
	Status string `bson:"status,omitempty"`
	Plan   string `bson:"plan,omitempty"`
}

type Shop struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty"`
	Name         string              `bson:"name"`
	OwnerID      *primitive.ObjectID `bson:"owner_id,omitempty"`
	Type         string              `bson:"type,omitempty"`
	Location     string              `bson:"location,omitempty"`
	Status       workflow.ShopStatus `bson:"status"`
	Subscription Subscription        `bson:"subscription"`
	ProfileImage string              `bson:"profile_image,omitempty"`
	Meta         bson.M              `bson:"meta,omitempty"`
	CreatedAt    time.Time           `bson:"created_at"`
	UpdatedAt    *time.Time          `bson:"updated_at,omitempty"`
}
