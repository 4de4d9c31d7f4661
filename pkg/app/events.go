package app

import (
	"context"

	"github.com/vancyferns/near2door/app/models"
	"github.com/vancyferns/near2door/app/services"
	"github.com/vancyferns/near2door/app/workflow"
	"github.com/vancyferns/near2door/pkg/event"
	"github.com/vancyferns/near2door/pkg/logger"
	"github.com/vancyferns/near2door/pkg/metrics"
)

// registerListeners maps domain events onto the Prometheus counters.
func registerListeners(bus *event.Bus) {
	bus.Listen(event.AccountRegistered, func(_ context.Context, p any) {
		if acc, ok := p.(*models.Account); ok {
			metrics.AccountsRegistered.WithLabelValues(string(acc.Role)).Inc()
		}
	})
	bus.Listen(event.AccountApproved, func(context.Context, any) {
		metrics.Approvals.WithLabelValues("account").Inc()
	})
	bus.Listen(event.ShopApproved, func(context.Context, any) {
		metrics.Approvals.WithLabelValues("shop").Inc()
	})
	bus.Listen(event.ShopCreated, func(ctx context.Context, p any) {
		if shop, ok := p.(*models.Shop); ok {
			logger.WithCtx(ctx).Debug("shop created", "shop_id", shop.ID.Hex(), "status", shop.Status)
		}
	})
	bus.Listen(event.OrderCreated, func(_ context.Context, p any) {
		metrics.OrdersCreated.Inc()
		if o, ok := p.(*models.Order); ok {
			metrics.OrderValue.Observe(o.TotalPrice)
		}
	})
	bus.Listen(event.OrderStatusChanged, func(_ context.Context, p any) {
		if o, ok := p.(*models.Order); ok {
			metrics.OrderStatusChanges.WithLabelValues(statusLabel(o.Status)).Inc()
		}
	})
	bus.Listen(event.ReconcileRepaired, func(_ context.Context, p any) {
		if r, ok := p.(services.Repair); ok {
			metrics.ReconcileRepairs.WithLabelValues(r.Kind).Inc()
		}
	})
}

// statusLabel keeps free-text order statuses from exploding label
// cardinality.
func statusLabel(status string) string {
	switch status {
	case workflow.OrderPending, workflow.OrderConfirmed, workflow.OrderDelivered:
		return status
	}
	if workflow.IsDelivered(status) {
		return workflow.OrderDelivered
	}
	return "other"
}
