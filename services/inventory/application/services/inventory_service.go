package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	pkgcache "github.com/ghuser/shopcore/pkg/cache"
	pkgevents "github.com/ghuser/shopcore/pkg/events"
	"github.com/ghuser/shopcore/pkg/keylock"
	"github.com/ghuser/shopcore/pkg/logger"
	inventorydomain "github.com/ghuser/shopcore/services/inventory/domain"
	"github.com/ghuser/shopcore/services/inventory/domain/models"
	"github.com/ghuser/shopcore/services/inventory/domain/repositories"
)

// EventSink receives domain events after the aggregate state they describe
// has been persisted. *events.EventBus satisfies it.
type EventSink interface {
	PublishDomain(ctx context.Context, event pkgevents.DomainEvent) error
}

// InventoryService orchestrates all stock ledger operations. Writes follow
// lock -> load -> mutate -> persist -> publish: a per-SKU mutex serializes
// in-process writers, the repository's version stamp catches everything
// else. Events are published best-effort after the save succeeds.
type InventoryService struct {
	repo  repositories.InventoryRepository
	cache *pkgcache.StockCache
	locks *keylock.KeyedMutex
	sink  EventSink
	log   logger.Logger
}

// NewInventoryService returns an InventoryService wired with the given
// repository, cache and event sink. cache, sink and log may be nil in
// tests; a nil log is replaced with a no-op logger.
func NewInventoryService(
	repo repositories.InventoryRepository,
	stockCache *pkgcache.StockCache,
	locks *keylock.KeyedMutex,
	sink EventSink,
	log logger.Logger,
) *InventoryService {
	if log == nil {
		log = logger.NewNop()
	}
	return &InventoryService{repo: repo, cache: stockCache, locks: locks, sink: sink, log: log}
}

// Create validates and persists a new inventory item. The repository
// rejects a duplicate SKU with ErrSKUAlreadyExists.
func (s *InventoryService) Create(ctx context.Context, sku string, initialQuantity, minimumStockLevel int) (*models.InventoryItem, error) {
	skuVO, err := models.NewSKU(sku)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", inventorydomain.ErrInvalidSKU, err)
	}

	unlock := s.locks.Lock(skuVO.String())
	defer unlock()

	item, err := models.NewInventoryItem(skuVO, initialQuantity, minimumStockLevel)
	if err != nil {
		return nil, fmt.Errorf("create inventory item: %w", err)
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save inventory item: %w", err)
	}

	s.publish(ctx, item)
	s.invalidate(ctx, skuVO.String())
	return item, nil
}

// GetByID retrieves an item by its aggregate ID.
func (s *InventoryService) GetByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return item, nil
}

// GetBySKU retrieves an item by SKU.
func (s *InventoryService) GetBySKU(ctx context.Context, sku string) (*models.InventoryItem, error) {
	skuVO, err := models.NewSKU(sku)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", inventorydomain.ErrInvalidSKU, err)
	}
	item, err := s.repo.GetBySKU(ctx, skuVO)
	if err != nil {
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return item, nil
}

// GetStockLevel returns the denormalized stock level for a SKU using a
// read-through cache pattern:
//  1. Check Redis cache first.
//  2. On cache miss (or cache error), load the aggregate.
//  3. Asynchronously warm the cache with the computed level.
func (s *InventoryService) GetStockLevel(ctx context.Context, sku string) (*pkgcache.CachedStockLevel, error) {
	skuVO, err := models.NewSKU(sku)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", inventorydomain.ErrInvalidSKU, err)
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, skuVO.String())
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, redis.Nil) {
			// Fall through to the repository on cache errors.
			s.log.WarnContext(ctx, "stock cache read failed", "sku", skuVO.String(), "error", err)
		}
	}

	item, err := s.repo.GetBySKU(ctx, skuVO)
	if err != nil {
		return nil, fmt.Errorf("get inventory item: %w", err)
	}

	level := stockLevelOf(item)
	if s.cache != nil {
		go func() {
			if err := s.cache.Set(context.Background(), level); err != nil {
				s.log.Warn("stock cache warm failed", "sku", level.SKU, "error", err)
			}
		}()
	}
	return level, nil
}

// List returns a paginated slice of items ordered by SKU plus total count.
func (s *InventoryService) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.InventoryItem, int, error) {
	items, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventory items: %w", err)
	}
	return items, total, nil
}

// IncreaseStock adds quantity to the on-hand count of the given SKU.
func (s *InventoryService) IncreaseStock(ctx context.Context, sku string, quantity int, reason string) (*models.InventoryItem, error) {
	return s.mutate(ctx, sku, func(item *models.InventoryItem) error {
		return item.IncreaseStock(quantity, reason)
	})
}

// DecreaseStock subtracts quantity from the on-hand count of the given SKU.
func (s *InventoryService) DecreaseStock(ctx context.Context, sku string, quantity int, reason string) (*models.InventoryItem, error) {
	return s.mutate(ctx, sku, func(item *models.InventoryItem) error {
		return item.DecreaseStock(quantity, reason)
	})
}

// SetMinimumStockLevel replaces the low-stock threshold of the given SKU.
func (s *InventoryService) SetMinimumStockLevel(ctx context.Context, sku string, level int) (*models.InventoryItem, error) {
	return s.mutate(ctx, sku, func(item *models.InventoryItem) error {
		return item.UpdateMinimumStockLevel(level)
	})
}

// Reserve places a hold on available stock under the caller-supplied
// reservation id. A nil expiresAt creates a hold that never expires.
func (s *InventoryService) Reserve(ctx context.Context, sku string, quantity int, reservationID string, expiresAt *time.Time) (*models.InventoryItem, error) {
	return s.mutate(ctx, sku, func(item *models.InventoryItem) error {
		return item.ReserveStock(quantity, reservationID, expiresAt)
	})
}

// Release removes an active reservation without touching on-hand stock.
func (s *InventoryService) Release(ctx context.Context, sku, reservationID string) (*models.InventoryItem, error) {
	return s.mutate(ctx, sku, func(item *models.InventoryItem) error {
		return item.ReleaseReservation(reservationID)
	})
}

// ConfirmReservation converts an active reservation into a permanent
// stock decrement.
func (s *InventoryService) ConfirmReservation(ctx context.Context, sku, reservationID, reason string) (*models.InventoryItem, error) {
	return s.mutate(ctx, sku, func(item *models.InventoryItem) error {
		return item.ConfirmReservation(reservationID, reason)
	})
}

// PurgeExpiredReservations removes every expired reservation from the
// given SKU. A SKU with nothing expired is left untouched and no update
// is written. Returns the number of reservations purged.
func (s *InventoryService) PurgeExpiredReservations(ctx context.Context, sku string) (*models.InventoryItem, int, error) {
	skuVO, err := models.NewSKU(sku)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", inventorydomain.ErrInvalidSKU, err)
	}

	unlock := s.locks.Lock(skuVO.String())
	defer unlock()

	item, err := s.repo.GetBySKU(ctx, skuVO)
	if err != nil {
		return nil, 0, fmt.Errorf("get inventory item: %w", err)
	}

	before := len(item.Reservations())
	item.RemoveExpiredReservations()
	purged := before - len(item.Reservations())
	if purged == 0 {
		return item, 0, nil
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, 0, fmt.Errorf("update inventory item: %w", err)
	}
	s.publish(ctx, item)
	s.invalidate(ctx, skuVO.String())
	return item, purged, nil
}

// PurgeAllExpiredReservations sweeps the whole ledger page by page and
// purges expired reservations from every item. Per-item failures are
// collected so one bad row never stops the sweep. Returns the total
// number of reservations purged.
func (s *InventoryService) PurgeAllExpiredReservations(ctx context.Context) (int, error) {
	const pageSize = 100

	purged := 0
	var errs []error
	for offset := 0; ; offset += pageSize {
		items, total, err := s.repo.List(ctx, repositories.QueryOpts{Limit: pageSize, Offset: offset})
		if err != nil {
			return purged, fmt.Errorf("list inventory items: %w", err)
		}
		for _, item := range items {
			_, n, err := s.PurgeExpiredReservations(ctx, item.SKU.String())
			if err != nil {
				errs = append(errs, fmt.Errorf("purge %s: %w", item.SKU, err))
				continue
			}
			purged += n
		}
		if offset+pageSize >= total || len(items) == 0 {
			break
		}
	}
	return purged, errors.Join(errs...)
}

// mutate runs the canonical write sequence for a single SKU.
func (s *InventoryService) mutate(ctx context.Context, sku string, fn func(*models.InventoryItem) error) (*models.InventoryItem, error) {
	skuVO, err := models.NewSKU(sku)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", inventorydomain.ErrInvalidSKU, err)
	}

	unlock := s.locks.Lock(skuVO.String())
	defer unlock()

	item, err := s.repo.GetBySKU(ctx, skuVO)
	if err != nil {
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	if err := fn(item); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update inventory item: %w", err)
	}

	s.publish(ctx, item)
	s.invalidate(ctx, skuVO.String())
	return item, nil
}

// publish drains the aggregate's event buffer into the sink. Failures are
// logged but never rolled back: the state change is already durable and
// events here are advisory signals, not the system of record.
func (s *InventoryService) publish(ctx context.Context, item *models.InventoryItem) {
	if s.sink == nil {
		item.PullEvents()
		return
	}
	for _, ev := range item.PullEvents() {
		if err := s.sink.PublishDomain(ctx, ev); err != nil {
			s.log.WarnContext(ctx, "event publish failed", "topic", ev.Topic(), "error", err)
		}
	}
}

func (s *InventoryService) invalidate(ctx context.Context, sku string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, sku); err != nil {
		s.log.WarnContext(ctx, "stock cache invalidation failed", "sku", sku, "error", err)
	}
}

func stockLevelOf(item *models.InventoryItem) *pkgcache.CachedStockLevel {
	return &pkgcache.CachedStockLevel{
		SKU:               item.SKU.String(),
		Quantity:          item.Quantity,
		ReservedQuantity:  item.ReservedQuantity(),
		AvailableQuantity: item.AvailableQuantity(),
		MinimumStockLevel: item.MinimumStockLevel,
		UpdatedAt:         time.Now().UTC(),
	}
}
