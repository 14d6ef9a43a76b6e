package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/domain"
)

// Códigos de error del sobre de respuesta.
const (
	CodeValidation        = "VALIDATION"
	CodeInvalidBody       = "INVALID_BODY"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeDuplicate         = "DUPLICATE"
	CodeConflict          = "CONFLICT"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeMissingToken      = "MISSING_TOKEN"
	CodeInvalidToken      = "INVALID_TOKEN"
	CodeMissingRole       = "MISSING_ROLE"
	CodeInternal          = "INTERNAL"
)

// respondOK escribe {success: true, data}.
func respondOK(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(dto.Envelope{Success: true, Data: data})
}

// respondFail escribe {success: false, code, message}.
func respondFail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.Envelope{Success: false, Code: code, Message: message})
}

// respondError traduce errores de dominio a HTTP. Lo no reconocido es 500 y se registra.
func respondError(c *fiber.Ctx, err error) error {
	status, code := classify(err)
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Interface("request_id", c.Locals("requestid")).
			Msg("error interno")
		return respondFail(c, status, code, "error interno del servidor")
	}
	return respondFail(c, status, code, err.Error())
}

func classify(err error) (int, string) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr), errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, CodeValidation
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, CodeNotFound
	case errors.Is(err, domain.ErrInvalidTransition):
		return fiber.StatusConflict, CodeInvalidTransition
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, CodeInsufficientStock
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, CodeDuplicate
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, CodeConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, CodeForbidden
	}
	return fiber.StatusInternalServerError, CodeInternal
}
