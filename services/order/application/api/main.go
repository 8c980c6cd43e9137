package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/shopcore/pkg/app"
	"github.com/ghuser/shopcore/services/order/application/handlers"
	appsvcs "github.com/ghuser/shopcore/services/order/application/services"
)

// OrderRoutes registers order endpoints on the provided chi router.
func OrderRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	r.Group(func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", handlers.NewPostOrderHandler(svcs).Execute)
			r.Get("/", handlers.NewListOrdersHandler(svcs).Execute)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handlers.NewGetOrderHandler(svcs).Execute)
				r.Post("/items", handlers.NewAddOrderItemHandler(svcs).Execute)
				r.Delete("/items/{sku}", handlers.NewRemoveOrderItemHandler(svcs).Execute)
				r.Post("/confirm", handlers.NewConfirmOrderHandler(svcs).Execute)
				r.Post("/ship", handlers.NewShipOrderHandler(svcs).Execute)
				r.Post("/deliver", handlers.NewDeliverOrderHandler(svcs).Execute)
				r.Post("/cancel", handlers.NewCancelOrderHandler(svcs).Execute)
			})
		})
	})
}
