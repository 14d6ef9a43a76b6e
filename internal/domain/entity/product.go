package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario (multi-bodega).
// Los umbrales en cero indican "usar el valor por defecto configurado".
type Product struct {
	ID                string
	SKU               string // código único
	Name              string
	LowStockThreshold decimal.Decimal
	CriticalThreshold decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate comprueba SKU, nombre y la coherencia de los umbrales de alerta.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.SKU) == "" {
		return domain.NewValidationError("sku", "es requerido")
	}
	if strings.TrimSpace(p.Name) == "" {
		return domain.NewValidationError("name", "es requerido")
	}
	if p.LowStockThreshold.IsNegative() {
		return domain.NewValidationError("low_stock_threshold", "no puede ser negativo")
	}
	if p.CriticalThreshold.IsNegative() {
		return domain.NewValidationError("critical_threshold", "no puede ser negativo")
	}
	if !p.LowStockThreshold.IsZero() && p.CriticalThreshold.GreaterThan(p.LowStockThreshold) {
		return domain.NewValidationError("critical_threshold", "no puede superar low_stock_threshold")
	}
	return nil
}
