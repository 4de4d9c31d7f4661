package controllers

import (
	"github.com/vancyferns/near2door/app/services"
	"github.com/vancyferns/near2door/pkg/ctx"
)

type AgentController struct {
	agents *services.AgentService
	orders *services.OrderService
}

func NewAgentController(svc *services.Services) *AgentController {
	return &AgentController{agents: svc.Agents, orders: svc.Orders}
}

// Index handles GET /api/agents?status=.
func (a *AgentController) Index(c *ctx.Context) {
	agents, err := a.agents.List(c.Context(), c.Query("status"))
	accounts(c, agents, err)
}

// Earnings handles GET /api/agents/{id}/earnings.
func (a *AgentController) Earnings(c *ctx.Context) {
	earnings, err := a.agents.Earnings(c.Context(), c.Param("id"))
	one(c, earnings, err)
}

// Orders handles GET /api/agents/{id}/orders.
func (a *AgentController) Orders(c *ctx.Context) {
	orders, err := a.orders.ListFor(c.Context(), services.OwnerAgent, c.Param("id"))
	list(c, orders, err)
}
