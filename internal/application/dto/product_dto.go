package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
// Umbrales en cero (u omitidos) usan los valores por defecto configurados.
type CreateProductRequest struct {
	SKU               string          `json:"sku" validate:"required,min=1,max=100"`
	Name              string          `json:"name" validate:"required,min=1,max=200"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
	CriticalThreshold decimal.Decimal `json:"critical_threshold"`
}

// UpdateProductRequest entrada para actualizar un producto.
type UpdateProductRequest struct {
	Name              *string          `json:"name" validate:"omitempty,min=1,max=200"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold"`
	CriticalThreshold *decimal.Decimal `json:"critical_threshold"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                string          `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	LowStockThreshold decimal.Decimal `json:"low_stock_threshold"`
	CriticalThreshold decimal.Decimal `json:"critical_threshold"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
