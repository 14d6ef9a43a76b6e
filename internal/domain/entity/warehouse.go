package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/inventory-ledger/internal/domain"
)

// Warehouse representa una bodega o sucursal donde se almacena inventario (multi-bodega).
type Warehouse struct {
	ID        string
	Code      string // código corto único, ej. "BOG-01"
	Name      string
	Address   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate comprueba los campos obligatorios de la bodega.
func (w *Warehouse) Validate() error {
	if strings.TrimSpace(w.Code) == "" {
		return domain.NewValidationError("code", "es requerido")
	}
	if strings.TrimSpace(w.Name) == "" {
		return domain.NewValidationError("name", "es requerido")
	}
	return nil
}
