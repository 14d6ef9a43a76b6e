package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/application/usecase"
	domaininv "github.com/jhoicas/inventory-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/messaging"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventory-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventory-ledger/pkg/config"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// openStore abre el almacenamiento configurado; los tests lo reemplazan para observar el cierre.
var openStore = openStorage

// storage repositorios del driver elegido (postgres o memoria).
type storage struct {
	tx          inventory.TxRunner
	warehouses  repository.WarehouseRepository
	products    repository.ProductRepository
	adjustments repository.AdjustmentRepository
	transfers   repository.TransferRepository
	levels      repository.InventoryLevelRepository
	movements   repository.InventoryMovementRepository
	health      func(ctx context.Context) error
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("aplicación detenida con error")
		os.Exit(1)
	}
	log.Info().Msg("aplicación detenida")
}

// run arma las dependencias y sirve HTTP hasta que ctx se cancela o el servidor falla.
// Los recursos abiertos se cierran siempre antes de volver.
func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("inicializar almacenamiento: %w", err)
	}
	defer store.close()

	m := metrics.New()

	var publisher inventory.EventPublisher
	if cfg.Kafka.Enabled() {
		kp := messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kp.Close()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("eventos hacia Kafka")
	} else {
		publisher = messaging.NewLogPublisher(log)
	}
	publisher = m.InstrumentPublisher(publisher)

	var idem cache.IdempotencyStore
	if cfg.Redis.Enabled() {
		idem, err = cache.NewRedisIdempotencyStore(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("conexión a Redis: %w", err)
		}
	} else {
		idem = cache.NewInMemoryIdempotencyStore()
	}
	defer idem.Close()

	thresholds := domaininv.Thresholds{
		Low:      decimal.NewFromInt(int64(cfg.Inventory.LowStockThreshold)),
		Critical: decimal.NewFromInt(int64(cfg.Inventory.CriticalThreshold)),
	}

	adjustmentUC := inventory.NewAdjustmentUseCase(store.tx, store.adjustments, store.warehouses, store.products, publisher, log)
	transferUC := inventory.NewTransferUseCase(store.tx, store.transfers, store.warehouses, store.products, publisher, log)
	stockQueryUC := inventory.NewStockQueryUseCase(store.levels, store.warehouses, store.adjustments, store.transfers, store.movements, thresholds)
	warehouseUC := usecase.NewWarehouseUseCase(store.warehouses)
	productUC := usecase.NewProductUseCase(store.products)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Inventory Ledger API",
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger deshabilitado: no se encontró el archivo")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		ServiceName:    cfg.App.Name,
		WarehouseUC:    warehouseUC,
		ProductUC:      productUC,
		AdjustmentUC:   adjustmentUC,
		TransferUC:     transferUC,
		StockQueryUC:   stockQueryUC,
		JWTSecret:      cfg.JWT.Secret,
		Logger:         log,
		Metrics:        m,
		Idempotency:    idem,
		IdempotencyTTL: time.Duration(cfg.Redis.IdempotencyTTL) * time.Minute,
		HealthCheck:    store.health,
	})

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(cfg.HTTP.Addr())
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("servidor HTTP: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("apagado del servidor: %w", err)
	}
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.Storage == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		st := memory.NewStore()
		return &storage{
			tx:          st,
			warehouses:  st.Warehouses(),
			products:    st.Products(),
			adjustments: st.Adjustments(),
			transfers:   st.Transfers(),
			levels:      st.Levels(),
			movements:   st.Movements(),
			close:       func() {},
		}, nil
	}

	if cfg.DB.AutoMigrate {
		mig, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
		if err != nil {
			return nil, err
		}
		upErr := mig.Up()
		if err := mig.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
		if upErr != nil {
			return nil, upErr
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		tx:          postgres.NewTxRunner(pool),
		warehouses:  postgres.NewWarehouseRepository(pool),
		products:    postgres.NewProductRepository(pool),
		adjustments: postgres.NewAdjustmentRepository(pool),
		transfers:   postgres.NewTransferRepository(pool),
		levels:      postgres.NewInventoryLevelRepository(pool),
		movements:   postgres.NewInventoryMovementRepository(pool),
		health:      pool.Ping,
		close:       pool.Close,
	}, nil
}
