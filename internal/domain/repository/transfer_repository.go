package repository

import (
	"context"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// TransferFilter filtros opcionales del listado de traslados.
// WarehouseID coincide con la bodega origen o la destino.
type TransferFilter struct {
	WarehouseID string
	Status      entity.TransferStatus
}

// TransferRepository define el puerto de persistencia para traslados entre bodegas.
type TransferRepository interface {
	Create(ctx context.Context, t *entity.StockTransfer) error
	GetByID(ctx context.Context, id string) (*entity.StockTransfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error)
	UpdateStatus(ctx context.Context, t *entity.StockTransfer, expected entity.TransferStatus) error
	List(ctx context.Context, filter TransferFilter, limit, offset int) ([]*entity.StockTransfer, int, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context, warehouseID string) (map[entity.TransferStatus]int, error)
}
