package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// Tipos de evento publicados tras cada transición confirmada.
const (
	EventAdjustmentCreated  = "inventory.adjustment.created"
	EventAdjustmentApproved = "inventory.adjustment.approved"
	EventAdjustmentRejected = "inventory.adjustment.rejected"
	EventAdjustmentDeleted  = "inventory.adjustment.deleted"
	EventTransferCreated    = "inventory.transfer.created"
	EventTransferApproved   = "inventory.transfer.approved"
	EventTransferCompleted  = "inventory.transfer.completed"
	EventTransferCancelled  = "inventory.transfer.cancelled"
	EventTransferDeleted    = "inventory.transfer.deleted"
)

// Event evento de dominio serializado como JSON hacia el broker.
type Event struct {
	ID            string      `json:"id"`
	Type          string      `json:"type"`
	Reference     string      `json:"reference"`
	AggregateID   string      `json:"aggregate_id"`
	WarehouseID   string      `json:"warehouse_id"`
	ToWarehouseID string      `json:"to_warehouse_id,omitempty"`
	Status        string      `json:"status"`
	Actor         string      `json:"actor"`
	OccurredAt    time.Time   `json:"occurred_at"`
	Items         []EventItem `json:"items,omitempty"`
}

// EventItem cantidad por producto. En ajustes es la diferencia aplicada.
type EventItem struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// NopPublisher descarta los eventos.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func adjustmentEvent(typ string, a *entity.InventoryAdjustment, actor string, at time.Time) Event {
	items := make([]EventItem, 0, len(a.Items))
	for _, it := range a.Items {
		items = append(items, EventItem{ProductID: it.ProductID, Quantity: it.Difference})
	}
	return Event{
		ID:          uuid.New().String(),
		Type:        typ,
		Reference:   a.AdjustmentNumber,
		AggregateID: a.ID,
		WarehouseID: a.WarehouseID,
		Status:      string(a.Status),
		Actor:       actor,
		OccurredAt:  at,
		Items:       items,
	}
}

func transferEvent(typ string, t *entity.StockTransfer, actor string, at time.Time) Event {
	items := make([]EventItem, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, EventItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return Event{
		ID:            uuid.New().String(),
		Type:          typ,
		Reference:     t.TransferNumber,
		AggregateID:   t.ID,
		WarehouseID:   t.FromWarehouseID,
		ToWarehouseID: t.ToWarehouseID,
		Status:        string(t.Status),
		Actor:         actor,
		OccurredAt:    at,
		Items:         items,
	}
}

// publish se llama después del Commit: un fallo del broker se registra y no se propaga.
func publish(ctx context.Context, pub EventPublisher, log *logger.Logger, ev Event) {
	if err := pub.Publish(context.WithoutCancel(ctx), ev); err != nil {
		log.Warn().Err(err).
			Str("event_type", ev.Type).
			Str("reference", ev.Reference).
			Msg("no se pudo publicar el evento de inventario")
	}
}
