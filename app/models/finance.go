package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FinanceRecord is one payout line for an agent, written when an order the
// agent carried is delivered.
type FinanceRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	AgentID   primitive.ObjectID `bson:"agent_id"`
	OrderID   primitive.ObjectID `bson:"order_id"`
	Amount    float64            `bson:"amount"`
	Meta      bson.M             `bson:"meta,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}
