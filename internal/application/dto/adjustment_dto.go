package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustmentItemRequest línea de un ajuste. Si PreviousQuantity es nil se toma del stock actual.
type AdjustmentItemRequest struct {
	ProductID        string           `json:"product_id" validate:"required"`
	PreviousQuantity *decimal.Decimal `json:"previous_quantity,omitempty"`
	NewQuantity      decimal.Decimal  `json:"new_quantity"`
}

// CreateAdjustmentRequest body para POST /api/admin/inventory/adjustments.
type CreateAdjustmentRequest struct {
	WarehouseID string                  `json:"warehouse_id" validate:"required"`
	Type        string                  `json:"type" validate:"required,oneof=stock_count damaged lost found correction other"`
	Reason      string                  `json:"reason" validate:"required,max=500"`
	Notes       string                  `json:"notes" validate:"max=2000"`
	Items       []AdjustmentItemRequest `json:"items" validate:"required,min=1,dive"`
}

// AdjustmentListQuery filtros de GET /api/admin/inventory/adjustments.
type AdjustmentListQuery struct {
	WarehouseID string `query:"warehouse_id"`
	Status      string `query:"status" validate:"omitempty,oneof=pending approved rejected"`
	Type        string `query:"type" validate:"omitempty,oneof=stock_count damaged lost found correction other"`
	PageRequest
}

// AdjustmentItemResponse línea de un ajuste en respuestas.
type AdjustmentItemResponse struct {
	ProductID        string          `json:"product_id"`
	PreviousQuantity decimal.Decimal `json:"previous_quantity"`
	NewQuantity      decimal.Decimal `json:"new_quantity"`
	Difference       decimal.Decimal `json:"difference"`
}

// AdjustmentResponse salida de un ajuste.
type AdjustmentResponse struct {
	ID               string                   `json:"id"`
	AdjustmentNumber string                   `json:"adjustment_number"`
	WarehouseID      string                   `json:"warehouse_id"`
	Items            []AdjustmentItemResponse `json:"items"`
	Type             string                   `json:"type"`
	Reason           string                   `json:"reason"`
	Notes            string                   `json:"notes,omitempty"`
	Status           string                   `json:"status"`
	AdjustedBy       string                   `json:"adjusted_by"`
	ApprovedBy       string                   `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time               `json:"approved_at,omitempty"`
	RejectionReason  string                   `json:"rejection_reason,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
}

// AdjustmentListResponse lista paginada de ajustes.
type AdjustmentListResponse struct {
	Items []AdjustmentResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
