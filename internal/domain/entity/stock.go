package entity

import (
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Stock representa el stock actual de un producto en una bodega (tabla materializada).
// Reserved es la cantidad comprometida con pedidos pendientes; la mantiene un colaborador externo.
type Stock struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	Reserved    decimal.Decimal
	UpdatedAt   time.Time
}

// Available devuelve Quantity - Reserved.
func (s *Stock) Available() decimal.Decimal {
	return s.Quantity.Sub(s.Reserved)
}

// Apply suma delta (positivo o negativo) a la cantidad. La cantidad resultante no puede ser negativa.
func (s *Stock) Apply(delta decimal.Decimal, now time.Time) error {
	next := s.Quantity.Add(delta)
	if next.IsNegative() {
		return domain.ErrInsufficientStock
	}
	s.Quantity = next
	s.UpdatedAt = now
	return nil
}

// Withdraw descuenta qty exigiendo que haya disponible suficiente (no toca lo reservado).
func (s *Stock) Withdraw(qty decimal.Decimal, now time.Time) error {
	if s.Available().LessThan(qty) {
		return domain.ErrInsufficientStock
	}
	s.Quantity = s.Quantity.Sub(qty)
	s.UpdatedAt = now
	return nil
}

// Deposit suma qty a la cantidad.
func (s *Stock) Deposit(qty decimal.Decimal, now time.Time) {
	s.Quantity = s.Quantity.Add(qty)
	s.UpdatedAt = now
}
