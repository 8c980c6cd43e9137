package services

import (
	"github.com/ghuser/shopcore/pkg/app"
	"github.com/ghuser/shopcore/pkg/cache"
	"github.com/ghuser/shopcore/services/inventory/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Inventory *InventoryService
}

// New wires all inventory application services with infrastructure from the
// Application container.
func New(a *app.Application) *Services {
	repo := postgres.NewInventoryRepository(a.Db)
	stockCache := cache.NewStockCache(a.Redis)
	return &Services{
		Inventory: NewInventoryService(repo, stockCache, a.StockLocks, a.EventBus, a.Logger),
	}
}
