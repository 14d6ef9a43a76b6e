package repository

import "context"

// Nombres de los consecutivos.
const (
	SequenceAdjustment = "adjustment"
	SequenceTransfer   = "transfer"
)

// SequenceRepository entrega consecutivos atómicos y persistentes.
type SequenceRepository interface {
	// Next incrementa y devuelve el siguiente valor (el primero es 1).
	Next(ctx context.Context, name string) (int64, error)
}
