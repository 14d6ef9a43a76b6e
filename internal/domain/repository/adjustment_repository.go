package repository

import (
	"context"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// AdjustmentFilter filtros opcionales del listado de ajustes.
type AdjustmentFilter struct {
	WarehouseID string
	Status      entity.AdjustmentStatus
	Type        entity.AdjustmentType
}

// AdjustmentRepository define el puerto de persistencia para ajustes de inventario.
type AdjustmentRepository interface {
	Create(ctx context.Context, adj *entity.InventoryAdjustment) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.InventoryAdjustment, error)
	// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryAdjustment, error)
	// UpdateStatus persiste el nuevo estado solo si el guardado sigue siendo expected;
	// si no, devuelve un error que envuelve domain.ErrInvalidTransition.
	UpdateStatus(ctx context.Context, adj *entity.InventoryAdjustment, expected entity.AdjustmentStatus) error
	List(ctx context.Context, filter AdjustmentFilter, limit, offset int) ([]*entity.InventoryAdjustment, int, error)
	Delete(ctx context.Context, id string) error
	// CountByStatus cuenta por estado; warehouseID vacío cuenta todas las bodegas.
	CountByStatus(ctx context.Context, warehouseID string) (map[entity.AdjustmentStatus]int, error)
}
