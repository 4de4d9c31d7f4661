package routes

import (
	"github.com/vancyferns/near2door/app/controllers"
	"github.com/vancyferns/near2door/app/services"
	"github.com/vancyferns/near2door/pkg/ctx"
	"github.com/vancyferns/near2door/pkg/router"
)

// Options tunes the API surface.
type Options struct {
	MaxUploadBytes int64
}

// RegisterAPI mounts every marketplace endpoint under /api.
func RegisterAPI(r *router.Router, svc *services.Services, opts Options) {
	auth := controllers.NewAuthController(svc.Accounts)
	shops := controllers.NewShopController(svc)
	orders := controllers.NewOrderController(svc.Orders)
	agents := controllers.NewAgentController(svc)
	admin := controllers.NewAdminController(svc)
	uploads := controllers.NewUploadController(svc.Uploads, opts.MaxUploadBytes)

	api := r.Group("/api")

	api.Post("/auth/register", "auth.register", ctx.Wrap(auth.Register))
	api.Post("/auth/login", "auth.login", ctx.Wrap(auth.Login))

	api.Get("/users/{id}", "users.show", ctx.Wrap(auth.Show))
	api.Get("/users/{id}/orders", "users.orders", ctx.Wrap(orders.ForCustomer))
	api.Get("/customers/{id}/orders", "customers.orders", ctx.Wrap(orders.ForCustomer))

	api.Get("/shops", "shops.index", ctx.Wrap(shops.Index))
	api.Post("/shops", "shops.store", ctx.Wrap(shops.Store))
	api.Get("/shops/{id}", "shops.show", ctx.Wrap(shops.Show))
	api.Put("/shops/{id}", "shops.update", ctx.Wrap(shops.Update))
	api.Get("/shops/{id}/products", "shops.products.index", ctx.Wrap(shops.Products))
	api.Post("/shops/{id}/products", "shops.products.store", ctx.Wrap(shops.StoreProduct))
	api.Put("/shops/{id}/products/{pid}", "shops.products.update", ctx.Wrap(shops.UpdateProduct))
	api.Get("/shops/{id}/orders", "shops.orders.index", ctx.Wrap(shops.Orders))
	api.Put("/shops/{id}/orders/{oid}/status", "shops.orders.status", ctx.Wrap(shops.OrderStatus))

	api.Post("/orders", "orders.store", ctx.Wrap(orders.Store))
	api.Put("/orders/{id}/confirm", "orders.confirm", ctx.Wrap(orders.Confirm))
	api.Put("/orders/{id}/delivery-status", "orders.delivery_status", ctx.Wrap(orders.DeliveryStatus))

	api.Get("/agents", "agents.index", ctx.Wrap(agents.Index))
	api.Get("/agents/{id}/earnings", "agents.earnings", ctx.Wrap(agents.Earnings))
	api.Get("/agents/{id}/orders", "agents.orders", ctx.Wrap(agents.Orders))

	adm := api.Group("/admin")
	adm.Get("/agents", "admin.agents", ctx.Wrap(admin.Agents))
	adm.Get("/shops", "admin.shops", ctx.Wrap(admin.Shops))
	adm.Get("/finances", "admin.finances", ctx.Wrap(admin.Finances))
	adm.Get("/orders", "admin.orders", ctx.Wrap(admin.Orders))
	adm.Put("/shops/{id}/approve", "admin.shops.approve", ctx.Wrap(admin.ApproveShop))
	adm.Put("/approve-user/{id}", "admin.users.approve", ctx.Wrap(admin.ApproveUser))

	api.Post("/upload/image", "upload.image", ctx.Wrap(uploads.Image))
}
