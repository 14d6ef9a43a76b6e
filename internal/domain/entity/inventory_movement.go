package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del diario de inventario.
const (
	MovementTypeADJUSTMENT  = "ADJUSTMENT"   // línea de ajuste aprobada
	MovementTypeTransferOUT = "TRANSFER_OUT" // salida de la bodega origen
	MovementTypeTransferIN  = "TRANSFER_IN"  // entrada en la bodega destino
)

// InventoryMovement es una línea inmutable del diario: cada mutación de stock deja una.
type InventoryMovement struct {
	ID           string
	Reference    string // número del ajuste o traslado (ADJ000001, TRF000001)
	ReferenceID  string
	ProductID    string
	WarehouseID  string
	Type         string
	Quantity     decimal.Decimal // positivo entrada, negativo salida
	BalanceAfter decimal.Decimal // cantidad en la bodega después de aplicar el movimiento
	CreatedAt    time.Time
	CreatedBy    string
}
