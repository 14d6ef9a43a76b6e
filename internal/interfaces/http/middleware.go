package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventory-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// Encabezados de idempotencia.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

// RequestLogger registra cada petición con su request id, estado y latencia.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		var ev *zerolog.Event
		if status >= fiber.StatusInternalServerError {
			ev = log.Error().Err(err)
		} else {
			ev = log.Info()
		}
		ev.Interface("request_id", c.Locals("requestid")).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_id", GetUserID(c)).
			Msg("http")
		return err
	}
}

// MetricsMiddleware cuenta peticiones por la plantilla de ruta (no la ruta concreta) para acotar las etiquetas.
func MetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		m.ObserveRequest(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}

// Idempotency repite la respuesta guardada cuando llega otra vez la misma Idempotency-Key
// del mismo usuario sobre el mismo método y ruta. Solo se guardan respuestas 2xx; en otro caso
// la clave se libera y el cliente puede reintentar. Si el almacén falla la petición sigue sin idempotencia.
func Idempotency(store cache.IdempotencyStore, ttl time.Duration, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" {
			return c.Next()
		}
		if len(key) > 255 {
			return respondFail(c, fiber.StatusBadRequest, CodeValidation, "Idempotency-Key: máximo 255 caracteres")
		}
		scoped := GetUserID(c) + ":" + c.Method() + ":" + c.Path() + ":" + key
		ctx := c.UserContext()

		cached, err := store.Get(ctx, scoped)
		switch {
		case errors.Is(err, cache.ErrKeyInProgress):
			return respondFail(c, fiber.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "otra petición con la misma Idempotency-Key está en curso")
		case err != nil:
			log.Warn().Err(err).Str("path", c.Path()).Msg("idempotency: almacén no disponible")
			return c.Next()
		case cached != nil:
			c.Set(HeaderReplayed, "true")
			if cached.ContentType != "" {
				c.Set(fiber.HeaderContentType, cached.ContentType)
			}
			return c.Status(cached.Status).Send(cached.Body)
		}

		reserved, err := store.Reserve(ctx, scoped, ttl)
		if err != nil {
			log.Warn().Err(err).Str("path", c.Path()).Msg("idempotency: no se pudo reservar la clave")
			return c.Next()
		}
		if !reserved {
			return respondFail(c, fiber.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "otra petición con la misma Idempotency-Key está en curso")
		}

		herr := c.Next()
		status := c.Response().StatusCode()
		if herr == nil && status >= 200 && status < 300 {
			resp := cache.StoredResponse{
				Status:      status,
				ContentType: string(c.Response().Header.ContentType()),
				Body:        append([]byte(nil), c.Response().Body()...),
			}
			if err := store.Save(ctx, scoped, resp, ttl); err != nil {
				log.Warn().Err(err).Str("path", c.Path()).Msg("idempotency: no se pudo guardar la respuesta")
			}
			return nil
		}
		if err := store.Release(ctx, scoped); err != nil {
			log.Warn().Err(err).Str("path", c.Path()).Msg("idempotency: no se pudo liberar la clave")
		}
		return herr
	}
}
