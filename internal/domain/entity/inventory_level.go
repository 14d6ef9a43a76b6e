package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryLevel es una fila de la foto de inventario: stock de un producto en una bodega
// junto con los datos del producto necesarios para derivar alertas.
type InventoryLevel struct {
	WarehouseID       string
	WarehouseName     string
	ProductID         string
	SKU               string
	ProductName       string
	Quantity          decimal.Decimal
	Reserved          decimal.Decimal
	LowStockThreshold decimal.Decimal
	CriticalThreshold decimal.Decimal
	UpdatedAt         time.Time
}

// Available devuelve Quantity - Reserved.
func (l *InventoryLevel) Available() decimal.Decimal {
	return l.Quantity.Sub(l.Reserved)
}
