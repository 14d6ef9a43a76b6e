package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
)

// AdjustmentHandler maneja los ajustes de inventario (protegido).
type AdjustmentHandler struct {
	uc *inventory.AdjustmentUseCase
}

// NewAdjustmentHandler construye el handler.
func NewAdjustmentHandler(uc *inventory.AdjustmentUseCase) *AdjustmentHandler {
	return &AdjustmentHandler{uc: uc}
}

// Create godoc
// @Summary      Crear ajuste de inventario
// @Description  Crea el ajuste en estado pending. Si previous_quantity se omite se toma del stock actual.
// @Tags         adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave de idempotencia"
// @Param        body  body  dto.CreateAdjustmentRequest  true  "Bodega, tipo, motivo e items"
// @Success      201   {object}  dto.Envelope{data=dto.AdjustmentResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/admin/inventory/adjustments [post]
func (h *AdjustmentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAdjustmentRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusCreated, out)
}

// GetByID godoc
// @Summary      Obtener ajuste por ID
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ajuste"
// @Success      200  {object}  dto.Envelope{data=dto.AdjustmentResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/admin/inventory/adjustments/{id} [get]
func (h *AdjustmentHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, out)
}

// List godoc
// @Summary      Listar ajustes
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        status        query  string  false  "pending | approved | rejected"
// @Param        type          query  string  false  "stock_count | damaged | lost | found | correction | other"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.Envelope{data=dto.AdjustmentListResponse}
// @Router       /api/admin/inventory/adjustments [get]
func (h *AdjustmentHandler) List(c *fiber.Ctx) error {
	var q dto.AdjustmentListQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	out, err := h.uc.List(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, out)
}

// Transition godoc
// @Summary      Aprobar o rechazar un ajuste
// @Description  approve aplica las diferencias al stock; reject no mueve inventario.
// @Tags         adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del ajuste"
// @Param        body  body  dto.TransitionRequest  true  "action: approve | reject"
// @Success      200   {object}  dto.Envelope{data=dto.AdjustmentResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Failure      409   {object}  dto.Envelope
// @Router       /api/admin/inventory/adjustments/{id} [patch]
func (h *AdjustmentHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Transition(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, out)
}

// Delete godoc
// @Summary      Eliminar ajuste
// @Description  Solo ajustes pending o rejected.
// @Tags         adjustments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ajuste"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Failure      409  {object}  dto.Envelope
// @Router       /api/admin/inventory/adjustments/{id} [delete]
func (h *AdjustmentHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, fiber.Map{"id": c.Params("id"), "deleted": true})
}
