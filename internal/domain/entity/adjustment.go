package entity

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// MaxAdjustmentReasonLength longitud máxima (en caracteres) del motivo de un ajuste.
const MaxAdjustmentReasonLength = 500

// AdjustmentStatus estado de un ajuste de inventario.
type AdjustmentStatus string

const (
	AdjustmentStatusPending  AdjustmentStatus = "pending"
	AdjustmentStatusApproved AdjustmentStatus = "approved"
	AdjustmentStatusRejected AdjustmentStatus = "rejected"
)

// IsValid indica si el estado pertenece al conjunto cerrado.
func (s AdjustmentStatus) IsValid() bool {
	switch s {
	case AdjustmentStatusPending, AdjustmentStatusApproved, AdjustmentStatusRejected:
		return true
	}
	return false
}

// CanTransitionTo indica si el ajuste puede pasar de s a target.
func (s AdjustmentStatus) CanTransitionTo(target AdjustmentStatus) bool {
	switch s {
	case AdjustmentStatusPending:
		return target == AdjustmentStatusApproved || target == AdjustmentStatusRejected
	case AdjustmentStatusApproved, AdjustmentStatusRejected:
		return false // estados terminales
	}
	return false
}

// AdjustmentType motivo de negocio del ajuste.
type AdjustmentType string

const (
	AdjustmentTypeStockCount AdjustmentType = "stock_count"
	AdjustmentTypeDamaged    AdjustmentType = "damaged"
	AdjustmentTypeLost       AdjustmentType = "lost"
	AdjustmentTypeFound      AdjustmentType = "found"
	AdjustmentTypeCorrection AdjustmentType = "correction"
	AdjustmentTypeOther      AdjustmentType = "other"
)

// IsValid indica si el tipo pertenece al conjunto cerrado.
func (t AdjustmentType) IsValid() bool {
	switch t {
	case AdjustmentTypeStockCount, AdjustmentTypeDamaged, AdjustmentTypeLost,
		AdjustmentTypeFound, AdjustmentTypeCorrection, AdjustmentTypeOther:
		return true
	}
	return false
}

// AdjustmentItem línea de un ajuste. Difference = NewQuantity - PreviousQuantity.
type AdjustmentItem struct {
	ProductID        string
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
	Difference       decimal.Decimal
}

// AdjustmentItemInput datos de una línea antes de calcular la diferencia.
type AdjustmentItemInput struct {
	ProductID        string
	PreviousQuantity decimal.Decimal
	NewQuantity      decimal.Decimal
}

// InventoryAdjustment corrige la cantidad registrada de uno o varios productos en una bodega.
// Se crea en pending y pasa una sola vez a approved (aplica las diferencias) o rejected.
type InventoryAdjustment struct {
	ID               string
	AdjustmentNumber string
	WarehouseID      string
	Items            []AdjustmentItem
	Type             AdjustmentType
	Reason           string
	Notes            string
	Status           AdjustmentStatus
	AdjustedBy       string
	ApprovedBy       string // quien aprobó o rechazó
	ApprovedAt       *time.Time
	RejectionReason  string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FormatAdjustmentNumber arma el número visible a partir del consecutivo: ADJ000001.
func FormatAdjustmentNumber(seq int64) string {
	return fmt.Sprintf("ADJ%06d", seq)
}

// NewInventoryAdjustment valida la entrada y construye un ajuste pendiente.
func NewInventoryAdjustment(
	number, warehouseID string,
	typ AdjustmentType,
	reason, notes, adjustedBy string,
	items []AdjustmentItemInput,
	now time.Time,
) (*InventoryAdjustment, error) {
	if number == "" {
		return nil, domain.NewValidationError("adjustment_number", "es requerido")
	}
	if warehouseID == "" {
		return nil, domain.NewValidationError("warehouse_id", "es requerido")
	}
	if !typ.IsValid() {
		return nil, domain.NewValidationError("type", fmt.Sprintf("tipo %q no soportado", typ))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.NewValidationError("reason", "es requerido")
	}
	if utf8.RuneCountInString(reason) > MaxAdjustmentReasonLength {
		return nil, domain.NewValidationError("reason", fmt.Sprintf("máximo %d caracteres", MaxAdjustmentReasonLength))
	}
	if adjustedBy == "" {
		return nil, domain.NewValidationError("adjusted_by", "es requerido")
	}
	if len(items) == 0 {
		return nil, domain.NewValidationError("items", "debe tener al menos un producto")
	}

	seen := make(map[string]struct{}, len(items))
	lines := make([]AdjustmentItem, 0, len(items))
	for i, in := range items {
		field := fmt.Sprintf("items[%d]", i)
		if in.ProductID == "" {
			return nil, domain.NewValidationError(field+".product_id", "es requerido")
		}
		if _, dup := seen[in.ProductID]; dup {
			return nil, domain.NewValidationError(field+".product_id", "producto repetido en el ajuste")
		}
		seen[in.ProductID] = struct{}{}
		if in.PreviousQuantity.IsNegative() {
			return nil, domain.NewValidationError(field+".previous_quantity", "no puede ser negativo")
		}
		if in.NewQuantity.IsNegative() {
			return nil, domain.NewValidationError(field+".new_quantity", "no puede ser negativo")
		}
		lines = append(lines, AdjustmentItem{
			ProductID:        in.ProductID,
			PreviousQuantity: in.PreviousQuantity,
			NewQuantity:      in.NewQuantity,
			Difference:       in.NewQuantity.Sub(in.PreviousQuantity),
		})
	}

	return &InventoryAdjustment{
		ID:               uuid.New().String(),
		AdjustmentNumber: number,
		WarehouseID:      warehouseID,
		Items:            lines,
		Type:             typ,
		Reason:           reason,
		Notes:            strings.TrimSpace(notes),
		Status:           AdjustmentStatusPending,
		AdjustedBy:       adjustedBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Approve pasa el ajuste a approved. Aplicar las diferencias al stock es responsabilidad del caso de uso,
// dentro de la misma transacción.
func (a *InventoryAdjustment) Approve(actor string, now time.Time) error {
	if err := a.transition(AdjustmentStatusApproved, "approve"); err != nil {
		return err
	}
	a.ApprovedBy = actor
	a.ApprovedAt = &now
	a.UpdatedAt = now
	return nil
}

// Reject pasa el ajuste a rejected sin efecto en inventario.
func (a *InventoryAdjustment) Reject(actor, reason string, now time.Time) error {
	if err := a.transition(AdjustmentStatusRejected, "reject"); err != nil {
		return err
	}
	a.ApprovedBy = actor
	a.ApprovedAt = &now
	a.RejectionReason = strings.TrimSpace(reason)
	a.UpdatedAt = now
	return nil
}

// Deletable indica si el ajuste puede eliminarse: nunca se aplicó al inventario.
func (a *InventoryAdjustment) Deletable() bool {
	return a.Status == AdjustmentStatusPending || a.Status == AdjustmentStatusRejected
}

// CheckDeletable devuelve un TransitionError si el ajuste ya afectó el inventario.
func (a *InventoryAdjustment) CheckDeletable() error {
	if a.Deletable() {
		return nil
	}
	return &domain.TransitionError{Entity: "adjustment", Reference: a.AdjustmentNumber, From: string(a.Status), Action: "delete"}
}

func (a *InventoryAdjustment) transition(target AdjustmentStatus, action string) error {
	if !a.Status.CanTransitionTo(target) {
		return &domain.TransitionError{
			Entity:    "adjustment",
			Reference: a.AdjustmentNumber,
			From:      string(a.Status),
			Action:    action,
		}
	}
	a.Status = target
	return nil
}
