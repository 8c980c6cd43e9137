package services

import (
	"github.com/ghuser/shopcore/pkg/app"
	inventorypostgres "github.com/ghuser/shopcore/services/inventory/infrastructure/persistence/postgres"
	"github.com/ghuser/shopcore/services/order/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Order        *OrderService
	Confirmation *ConfirmationService
}

// New wires all order application services with infrastructure from the
// Application container. The confirmation coordinator reaches into the
// inventory context through its repository and the shared SKU locks.
func New(a *app.Application) *Services {
	orderRepo := postgres.NewOrderRepository(a.Db)
	inventoryRepo := inventorypostgres.NewInventoryRepository(a.Db)
	return &Services{
		Order:        NewOrderService(orderRepo, a.EventBus, a.Logger),
		Confirmation: NewConfirmationService(orderRepo, inventoryRepo, a.StockLocks, a.EventBus, a.Logger),
	}
}
