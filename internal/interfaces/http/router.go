package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/application/usecase"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/inventory-ledger/pkg/jwt"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ServiceName  string
	WarehouseUC  *usecase.WarehouseUseCase
	ProductUC    *usecase.ProductUseCase
	AdjustmentUC *inventory.AdjustmentUseCase
	TransferUC   *inventory.TransferUseCase
	StockQueryUC *inventory.StockQueryUseCase
	JWTSecret    string
	Logger       *logger.Logger
	// Opcionales.
	Metrics        *metrics.Metrics
	Idempotency    cache.IdempotencyStore
	IdempotencyTTL time.Duration
	HealthCheck    func(ctx context.Context) error
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}

	app.Use(requestid.New())
	app.Use(RequestLogger(log))
	if deps.Metrics != nil {
		app.Use(MetricsMiddleware(deps.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.HealthCheck != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := deps.HealthCheck(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "service": deps.ServiceName, "error": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	idem := func(c *fiber.Ctx) error { return c.Next() }
	if deps.Idempotency != nil {
		ttl := deps.IdempotencyTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		idem = Idempotency(deps.Idempotency, ttl, log)
	}

	// Rutas protegidas (requieren Bearer Token)
	admin := app.Group("/api/admin", AuthMiddleware(deps.JWTSecret))
	staff := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	adminOnly := RequireRole(jwt.RoleAdmin)

	adjustmentHandler := NewAdjustmentHandler(deps.AdjustmentUC)
	transferHandler := NewTransferHandler(deps.TransferUC)
	inventoryHandler := NewInventoryHandler(deps.StockQueryUC)
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	productHandler := NewProductHandler(deps.ProductUC)

	// Ajustes y consultas de inventario
	inv := admin.Group("/inventory")
	inv.Get("/adjustments", staff, adjustmentHandler.List)
	inv.Post("/adjustments", staff, idem, adjustmentHandler.Create)
	inv.Get("/adjustments/:id", staff, adjustmentHandler.GetByID)
	inv.Patch("/adjustments/:id", adminOnly, idem, adjustmentHandler.Transition)
	inv.Delete("/adjustments/:id", adminOnly, adjustmentHandler.Delete)
	inv.Get("/low-stock", staff, inventoryHandler.LowStock)
	inv.Get("/stats", staff, inventoryHandler.Stats)
	inv.Get("/movements", staff, inventoryHandler.Movements)

	// Traslados: van antes de /warehouses/:id para que "transfers" no se tome como id.
	warehouses := admin.Group("/warehouses")
	warehouses.Get("/transfers", staff, transferHandler.List)
	warehouses.Post("/transfers", staff, idem, transferHandler.Create)
	warehouses.Get("/transfers/:id", staff, transferHandler.GetByID)
	warehouses.Patch("/transfers/:id", adminOnly, idem, transferHandler.Transition)
	warehouses.Delete("/transfers/:id", adminOnly, transferHandler.Delete)

	// Bodegas
	warehouses.Get("/", staff, warehouseHandler.List)
	warehouses.Post("/", adminOnly, warehouseHandler.Create)
	warehouses.Get("/:id", staff, warehouseHandler.GetByID)
	warehouses.Put("/:id", adminOnly, warehouseHandler.Update)
	warehouses.Delete("/:id", adminOnly, warehouseHandler.Delete)
	warehouses.Get("/:id/inventory", staff, inventoryHandler.WarehouseInventory)

	// Productos
	products := admin.Group("/products")
	products.Get("/", staff, productHandler.List)
	products.Post("/", adminOnly, productHandler.Create)
	products.Get("/:id", staff, productHandler.GetByID)
	products.Put("/:id", adminOnly, productHandler.Update)
}
