package seeders

import (
	"context"
	"errors"

	"github.com/vancyferns/near2door/app/services"
	"github.com/vancyferns/near2door/pkg/apperr"
)

// Demo credentials created by the marketplace seeder.
const (
	DemoPassword      = "near2door"
	DemoCustomerEmail = "customer@near2door.test"
	DemoShopEmail     = "shop@near2door.test"
	DemoAgentEmail    = "agent@near2door.test"
)

func init() {
	Register("marketplace", seedMarketplace)
}

// seedMarketplace creates one approved shop with a small catalogue, one
// approved agent, one customer and a delivered order. Running it twice is
// a no-op.
func seedMarketplace(ctx context.Context, svc *services.Services) error {
	customer, err := svc.Accounts.Register(ctx, services.RegisterInput{
		Name: "Demo Customer", Email: DemoCustomerEmail, Password: DemoPassword, Role: "customer",
	})
	if errors.Is(err, apperr.ErrConflict) {
		return nil
	}
	if err != nil {
		return err
	}

	owner, err := svc.Accounts.Register(ctx, services.RegisterInput{
		Name: "Demo Shopkeeper", Email: DemoShopEmail, Password: DemoPassword, Role: "shop",
		Meta: map[string]any{"shop_name": "Corner Kirana"},
	})
	if err != nil {
		return err
	}
	shopID := owner.ShopID.Hex()
	if _, err := svc.Shops.Approve(ctx, shopID); err != nil {
		return err
	}
	if _, err := svc.Shops.Update(ctx, shopID, services.UpdateShopInput{
		Type:     ptr("grocery"),
		Location: ptr("12 Market Road"),
	}); err != nil {
		return err
	}

	agent, err := svc.Accounts.Register(ctx, services.RegisterInput{
		Name: "Demo Rider", Email: DemoAgentEmail, Password: DemoPassword, Role: "agent",
	})
	if err != nil {
		return err
	}
	if _, err := svc.Accounts.Approve(ctx, agent.ID.Hex()); err != nil {
		return err
	}

	catalogue := []services.CreateProductInput{
		{Name: "Rice 5kg", Price: ptr(7.5), Stock: ptr(40)},
		{Name: "Milk 1L", Price: ptr(1.2), Stock: ptr(100)},
		{Name: "Eggs (12)", Price: ptr(2.9), Stock: ptr(60)},
	}
	items := make([]services.OrderItemInput, 0, len(catalogue))
	for _, in := range catalogue {
		p, err := svc.Products.Create(ctx, shopID, in)
		if err != nil {
			return err
		}
		items = append(items, services.OrderItemInput{ProductID: p.ID.Hex(), Name: p.Name, Price: ptr(p.Price), Quantity: ptr(2)})
	}

	order, err := svc.Orders.Create(ctx, services.CreateOrderInput{
		CustomerID:  customer.ID.Hex(),
		ShopID:      shopID,
		AgentID:     agent.ID.Hex(),
		Items:       items,
		DeliveryFee: ptr(1.5),
	})
	if err != nil {
		return err
	}
	_, err = svc.Orders.SetStatus(ctx, order.ID.Hex(), "", "delivered")
	return err
}

func ptr[T any](v T) *T { return &v }
