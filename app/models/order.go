package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderItem is a line of an order. Price is the unit price the customer saw.
type OrderItem struct {
	ProductID *primitive.ObjectID `bson:"product_id,omitempty"`
	Name      string              `bson:"name,omitempty"`
	Price     float64             `bson:"price"`
	Quantity  int                 `bson:"quantity"`
}

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `bson:"lat"`
	Lng float64 `bson:"lng"`
}

// Order statuses are free text; see workflow.OrderPending and friends for
// the values the server itself writes.
type Order struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty"`
	CustomerID       primitive.ObjectID  `bson:"customer_id"`
	ShopID           primitive.ObjectID  `bson:"shop_id"`
	AgentID          *primitive.ObjectID `bson:"agent_id,omitempty"`
	Items            []OrderItem         `bson:"items"`
	DeliveryFee      float64             `bson:"delivery_fee"`
	TotalPrice       float64             `bson:"total_price"`
	Status           string              `bson:"status"`
	CustomerLocation *GeoPoint           `bson:"customer_location,omitempty"`
	CreatedAt        time.Time           `bson:"created_at"`
	UpdatedAt        *time.Time          `bson:"updated_at,omitempty"`
}
