package controllers

import (
	"github.com/vancyferns/near2door/app/services"
	"github.com/vancyferns/near2door/pkg/ctx"
)

type ShopController struct {
	shops    *services.ShopService
	products *services.ProductService
	orders   *services.OrderService
}

func NewShopController(svc *services.Services) *ShopController {
	return &ShopController{shops: svc.Shops, products: svc.Products, orders: svc.Orders}
}

// Index handles GET /api/shops?status=.
func (s *ShopController) Index(c *ctx.Context) {
	shops, err := s.shops.List(c.Context(), c.Query("status"))
	list(c, shops, err)
}

// Store handles POST /api/shops.
func (s *ShopController) Store(c *ctx.Context) {
	var in services.CreateShopInput
	if !c.BindJSON(&in) {
		return
	}
	shop, err := s.shops.Create(c.Context(), in)
	created(c, shop, err)
}

// Show handles GET /api/shops/{id}.
func (s *ShopController) Show(c *ctx.Context) {
	shop, err := s.shops.Get(c.Context(), c.Param("id"))
	one(c, shop, err)
}

// Update handles PUT /api/shops/{id}.
func (s *ShopController) Update(c *ctx.Context) {
	var in services.UpdateShopInput
	if !c.BindJSON(&in) {
		return
	}
	shop, err := s.shops.Update(c.Context(), c.Param("id"), in)
	one(c, shop, err)
}

// Products handles GET /api/shops/{id}/products.
func (s *ShopController) Products(c *ctx.Context) {
	products, err := s.products.ListForShop(c.Context(), c.Param("id"))
	list(c, products, err)
}

// StoreProduct handles POST /api/shops/{id}/products.
func (s *ShopController) StoreProduct(c *ctx.Context) {
	var in services.CreateProductInput
	if !c.BindJSON(&in) {
		return
	}
	product, err := s.products.Create(c.Context(), c.Param("id"), in)
	created(c, product, err)
}

// UpdateProduct handles PUT /api/shops/{id}/products/{pid}.
func (s *ShopController) UpdateProduct(c *ctx.Context) {
	var in services.UpdateProductInput
	if !c.BindJSON(&in) {
		return
	}
	product, err := s.products.Update(c.Context(), c.Param("id"), c.Param("pid"), in)
	one(c, product, err)
}

// Orders handles GET /api/shops/{id}/orders.
func (s *ShopController) Orders(c *ctx.Context) {
	orders, err := s.orders.ListFor(c.Context(), services.OwnerShop, c.Param("id"))
	list(c, orders, err)
}

// OrderStatus handles PUT /api/shops/{id}/orders/{oid}/status.
func (s *ShopController) OrderStatus(c *ctx.Context) {
	var in services.StatusInput
	if !c.BindJSON(&in) {
		return
	}
	order, err := s.orders.SetStatus(c.Context(), c.Param("oid"), c.Param("id"), in.Value())
	one(c, order, err)
}
