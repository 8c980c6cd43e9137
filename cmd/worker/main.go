package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/shopcore/pkg/app"
	"github.com/ghuser/shopcore/pkg/cache"
	"github.com/ghuser/shopcore/pkg/config"
	"github.com/ghuser/shopcore/pkg/database"
	"github.com/ghuser/shopcore/pkg/events"
	"github.com/ghuser/shopcore/pkg/keylock"
	"github.com/ghuser/shopcore/pkg/logger"
	"github.com/ghuser/shopcore/pkg/telemetry"
	inventorysvcs "github.com/ghuser/shopcore/services/inventory/application/services"
	inventoryEvents "github.com/ghuser/shopcore/services/inventory/domain/events"
	orderEvents "github.com/ghuser/shopcore/services/order/domain/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx := context.Background()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	//temporalClient, err := workflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, log)
	//if err != nil {
	//	log.Error("failed to initialize temporal client", "error", err)
	//	os.Exit(1) //nolint:gocritic
	//}
	//defer temporalClient.Close()

	appConfig := &app.Application{
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
		//TemporalClient: temporalClient,
		StockLocks: keylock.New(),
	}

	if err := registerSubscribers(ctx, appConfig); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	sweepCtx, cancelSweep := context.WithCancel(ctx)
	go runReservationSweep(sweepCtx, appConfig, cfg.ReservationSweepInterval)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancelSweep()

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// registerSubscribers wires all domain event handlers.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, a *app.Application) error {
	handlers := map[string]func(context.Context, *message.Message) error{
		inventoryEvents.TopicInventoryItemCreated: handleInventoryCreated(a),
		inventoryEvents.TopicLowStockWarning:      handleLowStock(a),
		inventoryEvents.TopicOutOfStock:           handleOutOfStock(a),
		orderEvents.TopicOrderConfirmed:           handleOrderConfirmed(a),
	}

	topics := make([]string, 0, len(handlers))
	for topic, handler := range handlers {
		errCh, err := a.EventBus.Subscribe(ctx, topic, handler)
		if err != nil {
			return err
		}
		topics = append(topics, topic)

		// Drain subscriber errors in background so the channel never blocks.
		go func() {
			for err := range errCh {
				a.Logger.ErrorContext(ctx, "subscriber error",
					"topic", topic,
					"error", err,
				)
			}
		}()
	}

	a.Logger.Info("event subscribers registered", "topics", topics)
	return nil
}

// handleInventoryCreated warms the Redis stock-level cache so early reads
// are served without hitting Postgres. Handlers must be idempotent since
// EventBus retries up to 3 times on failure.
func handleInventoryCreated(a *app.Application) func(context.Context, *message.Message) error {
	stockCache := cache.NewStockCache(a.Redis)
	return func(ctx context.Context, msg *message.Message) error {
		var evt inventoryEvents.InventoryItemCreated
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}

		if err := stockCache.Set(ctx, &cache.CachedStockLevel{
			SKU:               evt.SKU,
			Quantity:          evt.Quantity,
			ReservedQuantity:  0,
			AvailableQuantity: evt.Quantity,
			MinimumStockLevel: evt.MinimumStockLevel,
			UpdatedAt:         evt.OccurredAt,
		}); err != nil {
			// Cache warming is best-effort; log but do not fail the handler.
			a.Logger.WarnContext(ctx, "cache warm failed for inventory.created",
				"sku", evt.SKU, "error", err)
		} else {
			a.Logger.InfoContext(ctx, "stock cache warmed", "sku", evt.SKU)
		}

		return nil
	}
}

// handleLowStock surfaces low-stock warnings in the worker log. A real
// deployment would page procurement here.
func handleLowStock(a *app.Application) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt inventoryEvents.LowStockWarning
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}
		a.Logger.WarnContext(ctx, "low stock warning",
			"sku", evt.SKU,
			"quantity", evt.Quantity,
			"minimum_stock_level", evt.MinimumStockLevel,
		)
		return nil
	}
}

func handleOutOfStock(a *app.Application) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt inventoryEvents.OutOfStock
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}
		a.Logger.ErrorContext(ctx, "item out of stock", "sku", evt.SKU, "item_id", evt.ItemID)
		return nil
	}
}

func handleOrderConfirmed(a *app.Application) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var evt orderEvents.OrderConfirmed
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return err
		}
		a.Logger.InfoContext(ctx, "order confirmed",
			"order_id", evt.OrderID,
			"lines", len(evt.Lines),
			"total_amount", evt.TotalAmount,
		)
		return nil
	}
}

// runReservationSweep periodically purges expired reservations across the
// whole ledger so abandoned holds return to the available pool. Runs until
// ctx is cancelled.
func runReservationSweep(ctx context.Context, a *app.Application, interval time.Duration) {
	svcs := inventorysvcs.New(a)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	a.Logger.Info("reservation sweep started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			a.Logger.Info("reservation sweep shutting down")
			return
		case <-ticker.C:
			purged, err := svcs.Inventory.PurgeAllExpiredReservations(ctx)
			if err != nil {
				a.Logger.ErrorContext(ctx, "reservation sweep failed", "error", err)
			}
			if purged > 0 {
				a.Logger.InfoContext(ctx, "expired reservations purged", "count", purged)
			}
		}
	}
}
