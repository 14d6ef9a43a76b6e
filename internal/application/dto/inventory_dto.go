package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryLevelResponse fila de la foto de inventario de una bodega con sus alertas derivadas.
type InventoryLevelResponse struct {
	WarehouseID       string          `json:"warehouse_id"`
	WarehouseName     string          `json:"warehouse_name,omitempty"`
	ProductID         string          `json:"product_id"`
	SKU               string          `json:"sku"`
	ProductName       string          `json:"product_name"`
	Quantity          decimal.Decimal `json:"quantity"`
	Reserved          decimal.Decimal `json:"reserved"`
	Available         decimal.Decimal `json:"available"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
	CriticalThreshold decimal.Decimal `json:"critical_threshold"`
	IsLowStock        bool            `json:"is_low_stock"`
	IsCritical        bool            `json:"is_critical"`
	IsOutOfStock      bool            `json:"is_out_of_stock"`
	AlertLevel        string          `json:"alert_level"` // ok | low | critical | out_of_stock
	UpdatedAt         time.Time       `json:"updated_at"`
}

// LowStockItemResponse fila del reporte de bajo stock con la cantidad sugerida a reponer.
type LowStockItemResponse struct {
	InventoryLevelResponse
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty"` // 1.5 * low_stock_threshold - available
}

// InventoryStatsResponse totales de inventario y documentos abiertos.
type InventoryStatsResponse struct {
	WarehouseID        string          `json:"warehouse_id,omitempty"`
	ProductsTracked    int             `json:"products_tracked"`
	TotalQuantity      decimal.Decimal `json:"total_quantity"`
	TotalReserved      decimal.Decimal `json:"total_reserved"`
	TotalAvailable     decimal.Decimal `json:"total_available"`
	LowStockCount      int             `json:"low_stock_count"`
	CriticalCount      int             `json:"critical_count"`
	OutOfStockCount    int             `json:"out_of_stock_count"`
	PendingAdjustments int             `json:"pending_adjustments"`
	PendingTransfers   int             `json:"pending_transfers"`
	InTransitTransfers int             `json:"in_transit_transfers"`
}

// MovementListQuery filtros de GET /api/admin/inventory/movements.
type MovementListQuery struct {
	WarehouseID string     `query:"warehouse_id"`
	ProductID   string     `query:"product_id"`
	From        *time.Time `query:"-"`
	To          *time.Time `query:"-"`
	PageRequest
}

// MovementResponse línea del diario de inventario.
type MovementResponse struct {
	ID           string          `json:"id"`
	Reference    string          `json:"reference"`
	ReferenceID  string          `json:"reference_id"`
	ProductID    string          `json:"product_id"`
	WarehouseID  string          `json:"warehouse_id"`
	Type         string          `json:"type"`
	Quantity     decimal.Decimal `json:"quantity"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
	CreatedBy    string          `json:"created_by"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
