package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
)

// ValidationError describe un campo inválido. Envuelve ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError construye un error de validación para el campo indicado.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// TransitionError indica que la acción no es válida desde el estado actual del documento.
// Envuelve ErrInvalidTransition.
type TransitionError struct {
	Entity    string // "adjustment" | "transfer"
	Reference string // número del documento
	From      string
	Action    string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %s: no se puede %s desde el estado %q", e.Entity, e.Reference, e.Action, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
