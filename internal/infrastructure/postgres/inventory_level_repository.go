package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var _ repository.InventoryLevelRepository = (*InventoryLevelRepo)(nil)

// InventoryLevelRepo implementación de InventoryLevelRepository sobre PostgreSQL.
type InventoryLevelRepo struct {
	q Querier
}

// NewInventoryLevelRepository construye el adaptador. Acepta pool o tx (Querier).
func NewInventoryLevelRepository(q Querier) *InventoryLevelRepo {
	return &InventoryLevelRepo{q: q}
}

// ListLevels une stock con producto y bodega. warehouseID vacío incluye todas las bodegas.
func (r *InventoryLevelRepo) ListLevels(ctx context.Context, warehouseID string) ([]*entity.InventoryLevel, error) {
	query := `
		SELECT s.warehouse_id, w.name, s.product_id, p.sku, p.name,
		       s.quantity, s.reserved, p.low_stock_threshold, p.critical_threshold, s.updated_at
		FROM stock s
		JOIN products p ON p.id = s.product_id
		JOIN warehouses w ON w.id = s.warehouse_id
		WHERE ($1 = '' OR s.warehouse_id::text = $1)
		ORDER BY s.warehouse_id, p.sku`
	rows, err := r.q.Query(ctx, query, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list inventory levels: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.InventoryLevel, 0)
	for rows.Next() {
		var l entity.InventoryLevel
		if err := rows.Scan(
			&l.WarehouseID, &l.WarehouseName, &l.ProductID, &l.SKU, &l.ProductName,
			&l.Quantity, &l.Reserved, &l.LowStockThreshold, &l.CriticalThreshold, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan inventory level: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
