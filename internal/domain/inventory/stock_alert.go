package inventory

import "github.com/shopspring/decimal"

// Niveles de alerta derivados del disponible.
const (
	LevelOK         = "ok"
	LevelLow        = "low"
	LevelCritical   = "critical"
	LevelOutOfStock = "out_of_stock"
)

// Umbrales por defecto cuando ni el producto ni la configuración definen uno.
var (
	DefaultLowStockThreshold = decimal.NewFromInt(10)
	DefaultCriticalThreshold = decimal.NewFromInt(3)
)

// Thresholds umbrales de alerta de un producto.
type Thresholds struct {
	Low      decimal.Decimal
	Critical decimal.Decimal
}

// WithDefaults reemplaza los umbrales en cero por los de fallback.
// El crítico nunca queda por encima del bajo.
func (t Thresholds) WithDefaults(fallback Thresholds) Thresholds {
	if t.Low.IsZero() {
		t.Low = fallback.Low
	}
	if t.Critical.IsZero() {
		t.Critical = fallback.Critical
	}
	if t.Critical.GreaterThan(t.Low) {
		t.Critical = t.Low
	}
	return t
}

// StockStatus resultado de clasificar un disponible contra sus umbrales.
type StockStatus struct {
	IsLowStock   bool
	IsCritical   bool
	IsOutOfStock bool
	Level        string
}

// Severity ordena los niveles: mayor es más grave.
func (s StockStatus) Severity() int {
	switch s.Level {
	case LevelOutOfStock:
		return 3
	case LevelCritical:
		return 2
	case LevelLow:
		return 1
	}
	return 0
}

// NeedsAttention indica si la fila debe aparecer en el reporte de bajo stock.
func (s StockStatus) NeedsAttention() bool {
	return s.IsLowStock || s.IsCritical || s.IsOutOfStock
}

// Classify deriva las banderas de alerta (servicio de dominio, sin efectos).
//
//	bajo stock:  available < low
//	crítico:     available < critical
//	agotado:     available <= 0
func Classify(available decimal.Decimal, t Thresholds) StockStatus {
	st := StockStatus{
		IsLowStock:   available.LessThan(t.Low),
		IsCritical:   available.LessThan(t.Critical),
		IsOutOfStock: available.LessThanOrEqual(decimal.Zero),
	}
	switch {
	case st.IsOutOfStock:
		st.Level = LevelOutOfStock
	case st.IsCritical:
		st.Level = LevelCritical
	case st.IsLowStock:
		st.Level = LevelLow
	default:
		st.Level = LevelOK
	}
	return st
}

// SuggestedOrderQty cantidad a pedir para volver a 1.5 veces el umbral bajo. Nunca negativa.
func SuggestedOrderQty(available decimal.Decimal, t Thresholds) decimal.Decimal {
	ideal := t.Low.Mul(decimal.NewFromFloat(1.5))
	qty := ideal.Sub(available)
	if qty.IsNegative() {
		return decimal.Zero
	}
	return qty
}
