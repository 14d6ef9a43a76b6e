package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// TransferStatus estado de un traslado entre bodegas.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "pending"
	TransferStatusInTransit TransferStatus = "in_transit"
	TransferStatusCompleted TransferStatus = "completed"
	TransferStatusCancelled TransferStatus = "cancelled"
)

// IsValid indica si el estado pertenece al conjunto cerrado.
func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferStatusPending, TransferStatusInTransit, TransferStatusCompleted, TransferStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo indica si el traslado puede pasar de s a target.
//
//	pending    -> in_transit | cancelled
//	in_transit -> completed  | cancelled
func (s TransferStatus) CanTransitionTo(target TransferStatus) bool {
	switch s {
	case TransferStatusPending:
		return target == TransferStatusInTransit || target == TransferStatusCancelled
	case TransferStatusInTransit:
		return target == TransferStatusCompleted || target == TransferStatusCancelled
	case TransferStatusCompleted, TransferStatusCancelled:
		return false
	}
	return false
}

// TransferItem línea de un traslado.
type TransferItem struct {
	ProductID string
	Quantity  decimal.Decimal
	Notes     string
}

// StockTransfer movimiento de stock de una bodega a otra con ciclo de aprobación.
type StockTransfer struct {
	ID                 string
	TransferNumber     string
	FromWarehouseID    string
	ToWarehouseID      string
	Items              []TransferItem
	Status             TransferStatus
	Notes              string
	RequestedBy        string
	ApprovedBy         string
	CompletedBy        string
	CancelledBy        string
	CancellationReason string
	RequestedDate      time.Time
	ApprovedDate       *time.Time
	CompletedDate      *time.Time
	CancelledDate      *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// FormatTransferNumber arma el número visible a partir del consecutivo: TRF000001.
func FormatTransferNumber(seq int64) string {
	return fmt.Sprintf("TRF%06d", seq)
}

// NewStockTransfer valida la entrada y construye un traslado pendiente.
func NewStockTransfer(number, fromWarehouseID, toWarehouseID, requestedBy, notes string, items []TransferItem, now time.Time) (*StockTransfer, error) {
	if number == "" {
		return nil, domain.NewValidationError("transfer_number", "es requerido")
	}
	if fromWarehouseID == "" {
		return nil, domain.NewValidationError("from_warehouse_id", "es requerido")
	}
	if toWarehouseID == "" {
		return nil, domain.NewValidationError("to_warehouse_id", "es requerido")
	}
	if fromWarehouseID == toWarehouseID {
		return nil, domain.NewValidationError("to_warehouse_id", "la bodega destino debe ser distinta de la de origen")
	}
	if requestedBy == "" {
		return nil, domain.NewValidationError("requested_by", "es requerido")
	}
	if len(items) == 0 {
		return nil, domain.NewValidationError("items", "debe tener al menos un producto")
	}

	seen := make(map[string]struct{}, len(items))
	lines := make([]TransferItem, 0, len(items))
	for i, in := range items {
		field := fmt.Sprintf("items[%d]", i)
		if in.ProductID == "" {
			return nil, domain.NewValidationError(field+".product_id", "es requerido")
		}
		if _, dup := seen[in.ProductID]; dup {
			return nil, domain.NewValidationError(field+".product_id", "producto repetido en el traslado")
		}
		seen[in.ProductID] = struct{}{}
		if !in.Quantity.IsPositive() {
			return nil, domain.NewValidationError(field+".quantity", "debe ser mayor que cero")
		}
		lines = append(lines, TransferItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Notes:     strings.TrimSpace(in.Notes),
		})
	}

	return &StockTransfer{
		ID:              uuid.New().String(),
		TransferNumber:  number,
		FromWarehouseID: fromWarehouseID,
		ToWarehouseID:   toWarehouseID,
		Items:           lines,
		Status:          TransferStatusPending,
		Notes:           strings.TrimSpace(notes),
		RequestedBy:     requestedBy,
		RequestedDate:   now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Approve despacha el traslado: pending -> in_transit.
func (t *StockTransfer) Approve(actor string, now time.Time) error {
	if err := t.transition(TransferStatusInTransit, "approve"); err != nil {
		return err
	}
	t.ApprovedBy = actor
	t.ApprovedDate = &now
	t.UpdatedAt = now
	return nil
}

// Complete recibe el traslado en destino: in_transit -> completed.
// El movimiento de stock lo hace el caso de uso en la misma transacción.
func (t *StockTransfer) Complete(actor string, now time.Time) error {
	if err := t.transition(TransferStatusCompleted, "complete"); err != nil {
		return err
	}
	t.CompletedBy = actor
	t.CompletedDate = &now
	t.UpdatedAt = now
	return nil
}

// Cancel anula el traslado desde pending o in_transit.
func (t *StockTransfer) Cancel(actor, reason string, now time.Time) error {
	if err := t.transition(TransferStatusCancelled, "cancel"); err != nil {
		return err
	}
	t.CancelledBy = actor
	t.CancellationReason = strings.TrimSpace(reason)
	t.CancelledDate = &now
	t.UpdatedAt = now
	return nil
}

// Deletable indica si el traslado puede eliminarse: nunca movió stock.
func (t *StockTransfer) Deletable() bool {
	return t.Status == TransferStatusPending || t.Status == TransferStatusCancelled
}

// CheckDeletable devuelve un TransitionError si el traslado no puede eliminarse.
func (t *StockTransfer) CheckDeletable() error {
	if t.Deletable() {
		return nil
	}
	return &domain.TransitionError{Entity: "transfer", Reference: t.TransferNumber, From: string(t.Status), Action: "delete"}
}

func (t *StockTransfer) transition(target TransferStatus, action string) error {
	if !t.Status.CanTransitionTo(target) {
		return &domain.TransitionError{
			Entity:    "transfer",
			Reference: t.TransferNumber,
			From:      string(t.Status),
			Action:    action,
		}
	}
	t.Status = target
	return nil
}
