package controllers

import (
	"github.com/vancyferns/near2door/app/services"
	"github.com/vancyferns/near2door/pkg/ctx"
	"github.com/vancyferns/near2door/pkg/projector"
)

// AdminController serves the back-office views. Routes are not
// authenticated.
type AdminController struct {
	svc *services.Services
}

func NewAdminController(svc *services.Services) *AdminController {
	return &AdminController{svc: svc}
}

// Agents handles GET /api/admin/agents?status=.
func (a *AdminController) Agents(c *ctx.Context) {
	agents, err := a.svc.Agents.AdminList(c.Context(), c.Query("status"))
	accounts(c, agents, err)
}

// Shops handles GET /api/admin/shops?status=&subscription=.
func (a *AdminController) Shops(c *ctx.Context) {
	shops, err := a.svc.Shops.AdminList(c.Context(), c.Query("status"), c.Query("subscription"))
	list(c, shops, err)
}

// Finances handles GET /api/admin/finances.
func (a *AdminController) Finances(c *ctx.Context) {
	summary, err := a.svc.Finance.Summary(c.Context())
	one(c, summary, err)
}

// Orders handles GET /api/admin/orders.
func (a *AdminController) Orders(c *ctx.Context) {
	orders, err := a.svc.Orders.ListAll(c.Context())
	list(c, orders, err)
}

// ApproveShop handles PUT /api/admin/shops/{id}/approve.
func (a *AdminController) ApproveShop(c *ctx.Context) {
	shop, err := a.svc.Shops.Approve(c.Context(), c.Param("id"))
	one(c, shop, err)
}

// ApproveUser handles PUT /api/admin/approve-user/{id}.
func (a *AdminController) ApproveUser(c *ctx.Context) {
	account, err := a.svc.Accounts.Approve(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(projector.One(account, hideSecrets))
}
