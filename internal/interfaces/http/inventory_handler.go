package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Brokewala/gestion-stock-aldin/internal/application/dto"
	"github.com/Brokewala/gestion-stock-aldin/internal/application/inventory"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP de movimientos de stock:
// recepciones de compra, transferencias entre bodegas y ajustes.
type InventoryHandler struct {
	movements *inventory.MovementUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(movements *inventory.MovementUseCase) *InventoryHandler {
	return &InventoryHandler{movements: movements}
}

// Receive POST /api/inventory/receipts
func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	items := make([]inventory.ReceiveItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, inventory.ReceiveItemInput{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			BatchCode:  it.BatchCode,
			ExpiryDate: it.ExpiryDate,
		})
	}
	batches, err := h.movements.ReceivePurchase(c.Context(), inventory.ReceivePurchaseInput{
		SupplierName: in.SupplierName,
		WarehouseID:  in.WarehouseID,
		Items:        items,
		Actor:        in.CreatedBy,
	})
	if err != nil {
		return fail(c, err)
	}
	out := make([]dto.BatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, toBatchResponse(b))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"batches": out})
}

// Transfer POST /api/inventory/transfers
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	err := h.movements.TransferStock(c.Context(), inventory.TransferInput{
		ProductID:       in.ProductID,
		Quantity:        in.Quantity,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		BatchID:         in.BatchID,
		Actor:           in.CreatedBy,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "transferencia registrada"})
}

// Adjust POST /api/inventory/adjustments
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	batch, err := h.movements.AdjustStock(c.Context(), inventory.AdjustInput{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		BatchID:     in.BatchID,
		Actor:       in.CreatedBy,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toBatchResponse(batch))
}

func toBatchResponse(b *entity.Batch) dto.BatchResponse {
	return dto.BatchResponse{
		ID:           b.ID,
		ProductID:    b.ProductID,
		WarehouseID:  b.WarehouseID,
		BatchCode:    b.BatchCode,
		ExpiryDate:   b.ExpiryDate,
		InitialQty:   b.InitialQty,
		RemainingQty: b.RemainingQty,
		ReceivedAt:   b.ReceivedAt,
	}
}
