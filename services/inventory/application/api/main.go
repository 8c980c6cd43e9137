package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/shopcore/pkg/app"
	"github.com/ghuser/shopcore/services/inventory/application/handlers"
	appsvcs "github.com/ghuser/shopcore/services/inventory/application/services"
)

// InventoryRoutes registers inventory endpoints on the provided chi router.
func InventoryRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	r.Group(func(r chi.Router) {
		r.Route("/inventory", func(r chi.Router) {
			r.Post("/", handlers.NewPostInventoryHandler(svcs).Execute)
			r.Get("/", handlers.NewListInventoryHandler(svcs).Execute)
			r.Route("/{sku}", func(r chi.Router) {
				r.Get("/", handlers.NewGetInventoryHandler(svcs).Execute)
				r.Get("/stock", handlers.NewGetStockLevelHandler(svcs).Execute)
				r.Post("/increase", handlers.NewIncreaseStockHandler(svcs).Execute)
				r.Post("/decrease", handlers.NewDecreaseStockHandler(svcs).Execute)
				r.Put("/minimum", handlers.NewSetMinimumStockLevelHandler(svcs).Execute)
				r.Route("/reservations", func(r chi.Router) {
					r.Post("/", handlers.NewReserveStockHandler(svcs).Execute)
					r.Post("/purge-expired", handlers.NewPurgeExpiredReservationsHandler(svcs).Execute)
					r.Delete("/{reservationId}", handlers.NewReleaseReservationHandler(svcs).Execute)
					r.Post("/{reservationId}/confirm", handlers.NewConfirmReservationHandler(svcs).Execute)
				})
			})
		})
	})
}
