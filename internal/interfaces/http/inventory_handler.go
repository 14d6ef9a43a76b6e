package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain"
)

// InventoryHandler consultas de existencias, alertas y diario de movimientos (protegido).
type InventoryHandler struct {
	uc *inventory.StockQueryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.StockQueryUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// LowStock godoc
// @Summary      Productos en bajo stock
// @Description  Filas con available <= low_stock_threshold, con la cantidad sugerida a pedir.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega (todas si se omite)"
// @Success      200  {object}  dto.Envelope{data=[]dto.LowStockItemResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/admin/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.LowStock(c.UserContext(), c.Query("warehouse_id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, out)
}

// Stats godoc
// @Summary      Estadísticas de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega (todas si se omite)"
// @Success      200  {object}  dto.Envelope{data=dto.InventoryStatsResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/admin/inventory/stats [get]
func (h *InventoryHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext(), c.Query("warehouse_id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, out)
}

// Movements godoc
// @Summary      Diario de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        product_id    query  string  false  "Producto"
// @Param        from          query  string  false  "Desde (RFC3339)"
// @Param        to            query  string  false  "Hasta (RFC3339)"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.Envelope{data=dto.MovementListResponse}
// @Failure      400  {object}  dto.Envelope
// @Router       /api/admin/inventory/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	var q dto.MovementListQuery
	if ok, err := parseQuery(c, &q); !ok {
		return err
	}
	var err error
	if q.From, err = queryTime(c, "from"); err != nil {
		return respondError(c, err)
	}
	if q.To, err = queryTime(c, "to"); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Movements(c.UserContext(), q)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, out)
}

// WarehouseInventory godoc
// @Summary      Inventario de una bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la bodega"
// @Success      200  {object}  dto.Envelope{data=[]dto.InventoryLevelResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/admin/warehouses/{id}/inventory [get]
func (h *InventoryHandler) WarehouseInventory(c *fiber.Ctx) error {
	out, err := h.uc.Snapshot(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, out)
}

func queryTime(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.NewValidationError(name, "fecha inválida, formato RFC3339")
	}
	return &t, nil
}
