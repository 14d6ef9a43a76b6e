// Package cache guarda las respuestas de las peticiones con Idempotency-Key (Redis o memoria).
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrKeyInProgress otra petición con la misma clave todavía no termina.
var ErrKeyInProgress = errors.New("idempotency: petición en curso con la misma clave")

// StoredResponse respuesta guardada para repetirla ante un reintento.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore reserva claves y guarda la respuesta asociada.
type IdempotencyStore interface {
	// Reserve marca la clave como en curso. Devuelve false si ya existía (en curso o terminada).
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Get devuelve la respuesta guardada; nil, nil si no existe. ErrKeyInProgress si está reservada sin respuesta.
	Get(ctx context.Context, key string) (*StoredResponse, error)
	// Save guarda la respuesta final de la clave.
	Save(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error
	// Release libera una reserva (la petición falló y puede reintentarse).
	Release(ctx context.Context, key string) error
	Close() error
}
