package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferItemRequest línea de un traslado.
type TransferItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	Notes     string          `json:"notes" validate:"max=500"`
}

// CreateTransferRequest body para POST /api/admin/warehouses/transfers.
type CreateTransferRequest struct {
	FromWarehouseID string                `json:"from_warehouse_id" validate:"required"`
	ToWarehouseID   string                `json:"to_warehouse_id" validate:"required,nefield=FromWarehouseID"`
	Notes           string                `json:"notes" validate:"max=2000"`
	Items           []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// TransferListQuery filtros de GET /api/admin/warehouses/transfers.
type TransferListQuery struct {
	WarehouseID string `query:"warehouse_id"`
	Status      string `query:"status" validate:"omitempty,oneof=pending in_transit completed cancelled"`
	PageRequest
}

// TransferItemResponse línea de un traslado en respuestas.
type TransferItemResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Notes     string          `json:"notes,omitempty"`
}

// TransferResponse salida de un traslado.
type TransferResponse struct {
	ID                 string                 `json:"id"`
	TransferNumber     string                 `json:"transfer_number"`
	FromWarehouseID    string                 `json:"from_warehouse_id"`
	ToWarehouseID      string                 `json:"to_warehouse_id"`
	Items              []TransferItemResponse `json:"items"`
	Status             string                 `json:"status"`
	Notes              string                 `json:"notes,omitempty"`
	RequestedBy        string                 `json:"requested_by"`
	ApprovedBy         string                 `json:"approved_by,omitempty"`
	CompletedBy        string                 `json:"completed_by,omitempty"`
	CancelledBy        string                 `json:"cancelled_by,omitempty"`
	CancellationReason string                 `json:"cancellation_reason,omitempty"`
	RequestedDate      time.Time              `json:"requested_date"`
	ApprovedDate       *time.Time             `json:"approved_date,omitempty"`
	CompletedDate      *time.Time             `json:"completed_date,omitempty"`
	CancelledDate      *time.Time             `json:"cancelled_date,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
