package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo consecutivos en la tabla inventory_counters.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Dentro de una tx el contador queda bloqueado hasta el Commit,
// así un Rollback no deja huecos.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa el contador name y devuelve el nuevo valor (el primero es 1).
func (r *SequenceRepo) Next(ctx context.Context, name string) (int64, error) {
	query := `
		INSERT INTO inventory_counters (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = inventory_counters.value + 1
		RETURNING value`
	var next int64
	if err := r.q.QueryRow(ctx, query, name).Scan(&next); err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", name, err)
	}
	return next, nil
}
