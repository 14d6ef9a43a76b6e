package repository

import (
	"context"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// InventoryLevelRepository lecturas de la foto de inventario (stock + datos de producto y bodega).
type InventoryLevelRepository interface {
	// ListLevels devuelve las filas de stock; warehouseID vacío incluye todas las bodegas.
	ListLevels(ctx context.Context, warehouseID string) ([]*entity.InventoryLevel, error)
}
