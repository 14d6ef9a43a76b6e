package messaging

import (
	"context"

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

var _ inventory.EventPublisher = (*LogPublisher)(nil)

// LogPublisher escribe los eventos en el log; se usa cuando no hay brokers configurados.
type LogPublisher struct {
	log *logger.Logger
}

// NewLogPublisher crea el publicador sobre log.
func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, ev inventory.Event) error {
	p.log.Info().
		Str("event_id", ev.ID).
		Str("event_type", ev.Type).
		Str("reference", ev.Reference).
		Str("warehouse_id", ev.WarehouseID).
		Str("status", ev.Status).
		Str("actor", ev.Actor).
		Int("items", len(ev.Items)).
		Msg("evento de inventario")
	return nil
}
