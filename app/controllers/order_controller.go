package controllers

import (
	"github.com/vancyferns/near2door/app/services"
	"github.com/vancyferns/near2door/pkg/ctx"
)

type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// Store handles POST /api/orders.
func (o *OrderController) Store(c *ctx.Context) {
	var in services.CreateOrderInput
	if !c.BindJSON(&in) {
		return
	}
	order, err := o.orders.Create(c.Context(), in)
	created(c, order, err)
}

// Confirm handles PUT /api/orders/{id}/confirm.
func (o *OrderController) Confirm(c *ctx.Context) {
	order, err := o.orders.Confirm(c.Context(), c.Param("id"))
	one(c, order, err)
}

// DeliveryStatus handles PUT /api/orders/{id}/delivery-status.
func (o *OrderController) DeliveryStatus(c *ctx.Context) {
	var in services.StatusInput
	if !c.BindJSON(&in) {
		return
	}
	order, err := o.orders.SetStatus(c.Context(), c.Param("id"), "", in.Value())
	one(c, order, err)
}

// ForCustomer handles GET /api/customers/{id}/orders and its
// /api/users/{id}/orders alias.
func (o *OrderController) ForCustomer(c *ctx.Context) {
	orders, err := o.orders.ListFor(c.Context(), services.OwnerCustomer, c.Param("id"))
	list(c, orders, err)
}
