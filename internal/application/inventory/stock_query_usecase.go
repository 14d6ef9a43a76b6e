package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventory-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

// StockQueryUseCase lecturas de la foto de inventario: alertas de bajo stock, totales y diario.
// No modifica nada.
type StockQueryUseCase struct {
	levelRepo     repository.InventoryLevelRepository
	warehouseRepo repository.WarehouseRepository
	adjustments   repository.AdjustmentRepository
	transfers     repository.TransferRepository
	movements     repository.InventoryMovementRepository
	defaults      domaininv.Thresholds
}

// NewStockQueryUseCase construye el caso de uso. defaults son los umbrales para productos sin umbral propio.
func NewStockQueryUseCase(
	levelRepo repository.InventoryLevelRepository,
	warehouseRepo repository.WarehouseRepository,
	adjustments repository.AdjustmentRepository,
	transfers repository.TransferRepository,
	movements repository.InventoryMovementRepository,
	defaults domaininv.Thresholds,
) *StockQueryUseCase {
	defaults = defaults.WithDefaults(domaininv.Thresholds{
		Low:      domaininv.DefaultLowStockThreshold,
		Critical: domaininv.DefaultCriticalThreshold,
	})
	return &StockQueryUseCase{
		levelRepo:     levelRepo,
		warehouseRepo: warehouseRepo,
		adjustments:   adjustments,
		transfers:     transfers,
		movements:     movements,
		defaults:      defaults,
	}
}

// Snapshot devuelve la foto de inventario de una bodega con las banderas de alerta.
func (uc *StockQueryUseCase) Snapshot(ctx context.Context, warehouseID string) ([]dto.InventoryLevelResponse, error) {
	if err := uc.checkWarehouse(ctx, warehouseID, true); err != nil {
		return nil, err
	}
	levels, err := uc.levelRepo.ListLevels(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InventoryLevelResponse, 0, len(levels))
	for _, l := range levels {
		th, st := uc.classify(l)
		out = append(out, toLevelResponse(l, th, st))
	}
	return out, nil
}

// LowStock devuelve las filas en bajo stock, críticas o agotadas, las más graves primero.
// warehouseID vacío considera todas las bodegas.
func (uc *StockQueryUseCase) LowStock(ctx context.Context, warehouseID string) ([]dto.LowStockItemResponse, error) {
	if err := uc.checkWarehouse(ctx, warehouseID, false); err != nil {
		return nil, err
	}
	levels, err := uc.levelRepo.ListLevels(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	type row struct {
		item     dto.LowStockItemResponse
		severity int
	}
	rows := make([]row, 0)
	for _, l := range levels {
		th, st := uc.classify(l)
		if !st.NeedsAttention() {
			continue
		}
		rows = append(rows, row{
			item: dto.LowStockItemResponse{
				InventoryLevelResponse: toLevelResponse(l, th, st),
				SuggestedOrderQty:      domaininv.SuggestedOrderQty(l.Available(), th),
			},
			severity: st.Severity(),
		})
	}

	// Ordenar: mayor gravedad, luego menor disponible, luego SKU.
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.severity != b.severity {
			return a.severity > b.severity
		}
		if !a.item.Available.Equal(b.item.Available) {
			return a.item.Available.LessThan(b.item.Available)
		}
		return a.item.SKU < b.item.SKU
	})

	out := make([]dto.LowStockItemResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.item)
	}
	return out, nil
}

// Stats totales de inventario y documentos abiertos; warehouseID vacío considera todas las bodegas.
func (uc *StockQueryUseCase) Stats(ctx context.Context, warehouseID string) (*dto.InventoryStatsResponse, error) {
	if err := uc.checkWarehouse(ctx, warehouseID, false); err != nil {
		return nil, err
	}
	levels, err := uc.levelRepo.ListLevels(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	stats := &dto.InventoryStatsResponse{
		WarehouseID:    warehouseID,
		TotalQuantity:  decimal.Zero,
		TotalReserved:  decimal.Zero,
		TotalAvailable: decimal.Zero,
	}
	products := make(map[string]struct{}, len(levels))
	for _, l := range levels {
		products[l.ProductID] = struct{}{}
		stats.TotalQuantity = stats.TotalQuantity.Add(l.Quantity)
		stats.TotalReserved = stats.TotalReserved.Add(l.Reserved)
		stats.TotalAvailable = stats.TotalAvailable.Add(l.Available())

		_, st := uc.classify(l)
		switch st.Level {
		case domaininv.LevelOutOfStock:
			stats.OutOfStockCount++
		case domaininv.LevelCritical:
			stats.CriticalCount++
		case domaininv.LevelLow:
			stats.LowStockCount++
		}
	}
	stats.ProductsTracked = len(products)

	adjCounts, err := uc.adjustments.CountByStatus(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	stats.PendingAdjustments = adjCounts[entity.AdjustmentStatusPending]

	trfCounts, err := uc.transfers.CountByStatus(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	stats.PendingTransfers = trfCounts[entity.TransferStatusPending]
	stats.InTransitTransfers = trfCounts[entity.TransferStatusInTransit]
	return stats, nil
}

// Movements lista el diario por bodega y/o producto, más recientes primero.
func (uc *StockQueryUseCase) Movements(ctx context.Context, q dto.MovementListQuery) (*dto.MovementListResponse, error) {
	if q.WarehouseID == "" && q.ProductID == "" {
		return nil, domain.NewValidationError("warehouse_id", "indique warehouse_id o product_id")
	}
	q.DefaultPage()
	list, err := uc.movements.List(ctx, repository.MovementFilter{
		WarehouseID: q.WarehouseID,
		ProductID:   q.ProductID,
		From:        q.From,
		To:          q.To,
	}, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, toMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}, nil
}

func (uc *StockQueryUseCase) classify(l *entity.InventoryLevel) (domaininv.Thresholds, domaininv.StockStatus) {
	th := domaininv.Thresholds{Low: l.LowStockThreshold, Critical: l.CriticalThreshold}.WithDefaults(uc.defaults)
	return th, domaininv.Classify(l.Available(), th)
}

func (uc *StockQueryUseCase) checkWarehouse(ctx context.Context, warehouseID string, required bool) error {
	if warehouseID == "" {
		if required {
			return domain.NewValidationError("warehouse_id", "es requerido")
		}
		return nil
	}
	w, err := uc.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if w == nil {
		return fmt.Errorf("bodega %s: %w", warehouseID, domain.ErrNotFound)
	}
	return nil
}
