package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vancyferns/near2door/app/models"
	"github.com/vancyferns/near2door/app/repositories"
	"github.com/vancyferns/near2door/app/workflow"
	"github.com/vancyferns/near2door/pkg/apperr"
	"github.com/vancyferns/near2door/pkg/event"
	"github.com/vancyferns/near2door/pkg/logger"
)

// OrderItemInput is one requested line. ID is accepted as an alias for
// ProductID. Quantity defaults to 1.
type OrderItemInput struct {
	ProductID string   `json:"product_id"`
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Price     *float64 `json:"price" validate:"required,gte=0"`
	Quantity  *int     `json:"quantity" validate:"omitnil,gte=1"`
}

// CreateOrderInput is the body of POST /orders. Every order names its
// delivery agent. Any total the caller sends is ignored; the server
// computes it.
type CreateOrderInput struct {
	CustomerID       string           `json:"customer_id" validate:"required"`
	ShopID           string           `json:"shop_id" validate:"required"`
	AgentID          string           `json:"agent_id" validate:"required"`
	Items            []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	DeliveryFee      *float64         `json:"delivery_fee" validate:"omitnil,gte=0"`
	CustomerLocation json.RawMessage  `json:"customer_location"`
}

type geoPointInput struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lng *float64 `json:"lng" validate:"required,longitude"`
}

// StatusInput is the body of the order status endpoints. DeliveryStatus is
// the legacy field name.
type StatusInput struct {
	Status         string `json:"status"`
	DeliveryStatus string `json:"delivery_status"`
}

// Value returns the requested status, preferring Status.
func (in StatusInput) Value() string {
	if in.Status != "" {
		return in.Status
	}
	return in.DeliveryStatus
}

// OrderOwner selects whose orders ListFor returns.
type OrderOwner string

const (
	OwnerCustomer OrderOwner = "customer"
	OwnerShop     OrderOwner = "shop"
	OwnerAgent    OrderOwner = "agent"
)

func (o OrderOwner) field() (string, bool) {
	switch o {
	case OwnerCustomer:
		return "customer_id", true
	case OwnerShop:
		return "shop_id", true
	case OwnerAgent:
		return "agent_id", true
	}
	return "", false
}

// financeSummaryKey caches FinanceService.Summary; order writes drop it.
const financeSummaryKey = "finance:summary"

type OrderService struct {
	orders   *repositories.OrderRepository
	shops    *repositories.ShopRepository
	finances *repositories.FinanceRepository
	events   *event.Bus
	cache    Cache
	now      Clock
}

func NewOrderService(orders *repositories.OrderRepository, shops *repositories.ShopRepository, finances *repositories.FinanceRepository, events *event.Bus, cache Cache, now Clock) *OrderService {
	return &OrderService{orders: orders, shops: shops, finances: finances, events: events, cache: cache, now: now}
}

// Create places a pending order for an existing shop.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if err := check(in); err != nil {
		return nil, err
	}

	customerID, err := parseID("customer", in.CustomerID)
	if err != nil {
		return nil, err
	}
	shopID, err := parseID("shop", in.ShopID)
	if err != nil {
		return nil, err
	}
	agentID, err := parseID("agent", in.AgentID)
	if err != nil {
		return nil, err
	}
	location, err := parseLocation(in.CustomerLocation)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		ref := it.ProductID
		if ref == "" {
			ref = it.ID
		}
		productID, err := parseOptionalID("product", ref)
		if err != nil {
			return nil, err
		}
		qty := 1
		if it.Quantity != nil {
			qty = *it.Quantity
		}
		items = append(items, models.OrderItem{
			ProductID: productID,
			Name:      it.Name,
			Price:     *it.Price,
			Quantity:  qty,
		})
	}

	exists, err := s.shops.Exists(ctx, shopID)
	if err != nil {
		return nil, classify("shop", "load", err)
	}
	if !exists {
		return nil, apperr.NotFound("shop")
	}

	var fee float64
	if in.DeliveryFee != nil {
		fee = *in.DeliveryFee
	}

	order := &models.Order{
		CustomerID:       customerID,
		ShopID:           shopID,
		AgentID:          &agentID,
		Items:            items,
		DeliveryFee:      fee,
		TotalPrice:       OrderTotal(items, fee),
		Status:           workflow.OrderPending,
		CustomerLocation: location,
		CreatedAt:        s.now(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, classify("order", "create", err)
	}

	s.dropSummary(ctx)
	logger.WithCtx(ctx).Info("order placed", "order_id", order.ID.Hex(), "shop_id", shopID.Hex(), "total", order.TotalPrice)
	s.events.Fire(ctx, event.OrderCreated, order)
	return order, nil
}

// OrderTotal is delivery fee + Σ price × quantity, rounded to cents.
func OrderTotal(items []models.OrderItem, deliveryFee float64) float64 {
	total := decimal.NewFromFloat(deliveryFee)
	for _, it := range items {
		line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(line)
	}
	f, _ := total.Round(2).Float64()
	return f
}

// Confirm sets status confirmed whatever the current status is.
func (s *OrderService) Confirm(ctx context.Context, orderID string) (*models.Order, error) {
	return s.SetStatus(ctx, orderID, "", workflow.OrderConfirmed)
}

// SetStatus overwrites the status of an order. When shopID is non-empty the
// order must belong to that shop. Writing "delivered" on an order with an
// agent books the agent's payout once.
func (s *OrderService) SetStatus(ctx context.Context, orderID, shopID, status string) (*models.Order, error) {
	oid, err := parseID("order", orderID)
	if err != nil {
		return nil, err
	}
	var scope *primitive.ObjectID
	if shopID != "" {
		sid, err := parseID("shop", shopID)
		if err != nil {
			return nil, err
		}
		scope = &sid
	}
	status, err = workflow.NormalizeOrderStatus(status)
	if err != nil {
		return nil, apperr.Validation(map[string]string{"status": "The status field is required."})
	}

	matched, err := s.orders.SetStatus(ctx, oid, scope, status, s.now())
	if err != nil {
		return nil, classify("order", "update", err)
	}
	if !matched {
		return nil, apperr.NotFound("order")
	}

	order, err := s.orders.FindByID(ctx, oid)
	if err != nil {
		return nil, classify("order", "load", err)
	}

	if workflow.IsDelivered(status) && order.AgentID != nil {
		if err := s.bookPayout(ctx, order); err != nil {
			return nil, err
		}
	}

	s.dropSummary(ctx)
	logger.WithCtx(ctx).Info("order status changed", "order_id", oid.Hex(), "status", status)
	s.events.Fire(ctx, event.OrderStatusChanged, order)
	return order, nil
}

// dropSummary invalidates the cached finance summary.
func (s *OrderService) dropSummary(ctx context.Context) {
	if err := s.cache.Del(ctx, financeSummaryKey); err != nil {
		logger.WithCtx(ctx).Warn("finance summary invalidation failed", "key", financeSummaryKey, "error", err)
	}
}

func (s *OrderService) bookPayout(ctx context.Context, order *models.Order) error {
	booked, err := s.finances.ExistsForOrder(ctx, order.ID)
	if err != nil {
		return classify("finance record", "look up", err)
	}
	if booked {
		return nil
	}
	rec := &models.FinanceRecord{
		AgentID:   *order.AgentID,
		OrderID:   order.ID,
		Amount:    order.DeliveryFee,
		CreatedAt: s.now(),
	}
	if err := s.finances.Create(ctx, rec); err != nil {
		return classify("finance record", "create", err)
	}
	return nil
}

// ListFor lists the orders of one customer, shop or agent.
func (s *OrderService) ListFor(ctx context.Context, owner OrderOwner, id string) ([]models.Order, error) {
	field, ok := owner.field()
	if !ok {
		return nil, apperr.InvalidInput("cannot list orders for %q", owner)
	}
	oid, err := parseID(string(owner), id)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListBy(ctx, field, oid)
	if err != nil {
		return nil, classify("order", "list", err)
	}
	return orders, nil
}

// ListAll is the admin view of every order.
func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.All(ctx)
	if err != nil {
		return nil, classify("order", "list", err)
	}
	return orders, nil
}

var errLocationShape = apperr.InvalidInput("customer_location must be an object with lat and lng")

// parseLocation accepts an absent or null location, or an object with
// numeric lat and lng.
func parseLocation(raw json.RawMessage) (*models.GeoPoint, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '{' {
		return nil, errLocationShape
	}

	var in geoPointInput
	if err := json.Unmarshal(trimmed, &in); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, errLocationShape
		}
		return nil, apperr.InvalidInput("invalid customer_location: %v", err)
	}
	if err := check(in); err != nil {
		return nil, errLocationShape
	}
	return &models.GeoPoint{Lat: *in.Lat, Lng: *in.Lng}, nil
}
