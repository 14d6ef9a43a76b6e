package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// MovementFilter filtro del diario; WarehouseID o ProductID (o ambos).
type MovementFilter struct {
	WarehouseID string
	ProductID   string
	From        *time.Time
	To          *time.Time
}

// InventoryMovementRepository define el puerto de persistencia para el diario de movimientos.
type InventoryMovementRepository interface {
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	// List devuelve los movimientos más recientes primero.
	List(ctx context.Context, filter MovementFilter, limit, offset int) ([]*entity.InventoryMovement, error)
}
