package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Brokewala/gestion-stock-aldin/internal/application/dto"
	"github.com/Brokewala/gestion-stock-aldin/internal/application/inventory"
)

// StockHandler expone las vistas de agregación de solo lectura.
type StockHandler struct {
	queries *inventory.StockQueryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(queries *inventory.StockQueryUseCase) *StockHandler {
	return &StockHandler{queries: queries}
}

// ByWarehouse GET /api/stock/products/:id/warehouses
func (h *StockHandler) ByWarehouse(c *fiber.Ctx) error {
	list, err := h.queries.StockByWarehouse(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	out := make([]dto.WarehouseStockResponse, 0, len(list))
	for _, ws := range list {
		out = append(out, dto.WarehouseStockResponse{
			WarehouseID:   ws.WarehouseID,
			WarehouseName: ws.WarehouseName,
			TotalQty:      ws.TotalQty,
		})
	}
	return c.JSON(fiber.Map{"warehouses": out})
}

// LowStock GET /api/stock/low
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	products, err := h.queries.LowStock(c.Context())
	if err != nil {
		return fail(c, err)
	}
	out := make([]fiber.Map, 0, len(products))
	for _, p := range products {
		out = append(out, fiber.Map{
			"product_id":      p.ID,
			"sku":             p.SKU,
			"name":            p.Name,
			"remaining_stock": p.RemainingStock,
			"reorder_level":   p.ReorderLevel,
			"reorder_qty":     p.ReorderQty,
		})
	}
	return c.JSON(fiber.Map{"products": out})
}

// NearExpiry GET /api/stock/near-expiry?days=30
func (h *StockHandler) NearExpiry(c *fiber.Ctx) error {
	batches, err := h.queries.NearExpiry(c.Context(), c.QueryInt("days"))
	if err != nil {
		return fail(c, err)
	}
	out := make([]dto.BatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, toBatchResponse(b))
	}
	return c.JSON(fiber.Map{"batches": out})
}

// Movements GET /api/stock/products/:id/movements?limit=100
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	movements, err := h.queries.Movements(c.Context(), c.Params("id"), c.QueryInt("limit"))
	if err != nil {
		return fail(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, dto.MovementResponse{
			ID:              m.ID,
			ProductID:       m.ProductID,
			BatchID:         m.BatchID,
			Type:            m.Type,
			Quantity:        m.Quantity,
			FromWarehouseID: m.FromWarehouseID,
			ToWarehouseID:   m.ToWarehouseID,
			Reason:          m.Reason,
			CreatedBy:       m.CreatedBy,
			CreatedAt:       m.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"movements": out})
}
