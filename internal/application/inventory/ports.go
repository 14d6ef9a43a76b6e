package inventory

import (
	"context"

	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

// TxRepos repositorios atados a una misma transacción.
type TxRepos struct {
	Adjustments repository.AdjustmentRepository
	Transfers   repository.TransferRepository
	Stock       repository.StockRepository
	Movements   repository.InventoryMovementRepository
	Sequences   repository.SequenceRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Garantiza atomicidad para el motor de inventario.
// Dentro de fn solo deben usarse los repositorios recibidos.
type TxRunner interface {
	Run(ctx context.Context, fn func(r TxRepos) error) error
}

// EventPublisher publica eventos de dominio ya confirmados (Kafka, log, ...).
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
