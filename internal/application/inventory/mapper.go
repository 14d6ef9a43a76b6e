package inventory

import (
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventory-ledger/internal/domain/inventory"
)

func toAdjustmentResponse(a *entity.InventoryAdjustment) *dto.AdjustmentResponse {
	if a == nil {
		return nil
	}
	items := make([]dto.AdjustmentItemResponse, 0, len(a.Items))
	for _, it := range a.Items {
		items = append(items, dto.AdjustmentItemResponse{
			ProductID:        it.ProductID,
			PreviousQuantity: it.PreviousQuantity,
			NewQuantity:      it.NewQuantity,
			Difference:       it.Difference,
		})
	}
	return &dto.AdjustmentResponse{
		ID:               a.ID,
		AdjustmentNumber: a.AdjustmentNumber,
		WarehouseID:      a.WarehouseID,
		Items:            items,
		Type:             string(a.Type),
		Reason:           a.Reason,
		Notes:            a.Notes,
		Status:           string(a.Status),
		AdjustedBy:       a.AdjustedBy,
		ApprovedBy:       a.ApprovedBy,
		ApprovedAt:       a.ApprovedAt,
		RejectionReason:  a.RejectionReason,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func toTransferResponse(t *entity.StockTransfer) *dto.TransferResponse {
	if t == nil {
		return nil
	}
	items := make([]dto.TransferItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, dto.TransferItemResponse{ProductID: it.ProductID, Quantity: it.Quantity, Notes: it.Notes})
	}
	return &dto.TransferResponse{
		ID:                 t.ID,
		TransferNumber:     t.TransferNumber,
		FromWarehouseID:    t.FromWarehouseID,
		ToWarehouseID:      t.ToWarehouseID,
		Items:              items,
		Status:             string(t.Status),
		Notes:              t.Notes,
		RequestedBy:        t.RequestedBy,
		ApprovedBy:         t.ApprovedBy,
		CompletedBy:        t.CompletedBy,
		CancelledBy:        t.CancelledBy,
		CancellationReason: t.CancellationReason,
		RequestedDate:      t.RequestedDate,
		ApprovedDate:       t.ApprovedDate,
		CompletedDate:      t.CompletedDate,
		CancelledDate:      t.CancelledDate,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

func toLevelResponse(l *entity.InventoryLevel, th domaininv.Thresholds, st domaininv.StockStatus) dto.InventoryLevelResponse {
	return dto.InventoryLevelResponse{
		WarehouseID:       l.WarehouseID,
		WarehouseName:     l.WarehouseName,
		ProductID:         l.ProductID,
		SKU:               l.SKU,
		ProductName:       l.ProductName,
		Quantity:          l.Quantity,
		Reserved:          l.Reserved,
		Available:         l.Available(),
		LowStockThreshold: th.Low,
		CriticalThreshold: th.Critical,
		IsLowStock:        st.IsLowStock,
		IsCritical:        st.IsCritical,
		IsOutOfStock:      st.IsOutOfStock,
		AlertLevel:        st.Level,
		UpdatedAt:         l.UpdatedAt,
	}
}

func toMovementResponse(m *entity.InventoryMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:           m.ID,
		Reference:    m.Reference,
		ReferenceID:  m.ReferenceID,
		ProductID:    m.ProductID,
		WarehouseID:  m.WarehouseID,
		Type:         m.Type,
		Quantity:     m.Quantity,
		BalanceAfter: m.BalanceAfter,
		CreatedAt:    m.CreatedAt,
		CreatedBy:    m.CreatedBy,
	}
}
