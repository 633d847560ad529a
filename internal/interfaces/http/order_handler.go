package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Brokewala/gestion-stock-aldin/internal/application/dto"
	"github.com/Brokewala/gestion-stock-aldin/internal/application/sales"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
)

// OrderHandler maneja el ciclo de vida del pedido: creación, edición de líneas
// en borrador, confirmación, pago, expedición y cancelación.
type OrderHandler struct {
	uc *sales.OrderUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *sales.OrderUseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create POST /api/orders
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	items := make([]sales.OrderItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, sales.OrderItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	order, err := h.uc.CreateOrder(c.Context(), sales.CreateOrderInput{
		CustomerID:  in.CustomerID,
		WarehouseID: in.WarehouseID,
		Items:       items,
		Notes:       in.Notes,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
}

// List GET /api/orders
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	page.DefaultPage()
	orders, err := h.uc.ListOrders(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return fail(c, err)
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderResponse(o))
	}
	return c.JSON(fiber.Map{"items": items, "page": dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// GetByID GET /api/orders/:id
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	order, err := h.uc.GetOrder(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// AddItem POST /api/orders/:id/items
func (h *OrderHandler) AddItem(c *fiber.Ctx) error {
	var in dto.OrderItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	order, err := h.uc.AddItem(c.Context(), c.Params("id"), sales.OrderItemInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		UnitPrice: in.UnitPrice,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
}

// RemoveItem DELETE /api/orders/:id/items/:itemId
func (h *OrderHandler) RemoveItem(c *fiber.Ctx) error {
	order, err := h.uc.RemoveItem(c.Context(), c.Params("id"), c.Params("itemId"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// Confirm POST /api/orders/:id/confirm
func (h *OrderHandler) Confirm(c *fiber.Ctx) error {
	order, err := h.uc.ConfirmOrder(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// Ship POST /api/orders/:id/ship
func (h *OrderHandler) Ship(c *fiber.Ctx) error {
	order, err := h.uc.ShipOrder(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// Cancel POST /api/orders/:id/cancel
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	order, err := h.uc.CancelOrder(c.Context(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// RegisterPayment POST /api/orders/:id/payments
func (h *OrderHandler) RegisterPayment(c *fiber.Ctx) error {
	var in dto.PaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	order, err := h.uc.RegisterPayment(c.Context(), c.Params("id"), in.Amount, in.Method)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
}

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			BatchID:   it.BatchID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}
	return dto.OrderResponse{
		ID:          o.ID,
		Code:        o.Code,
		CustomerID:  o.CustomerID,
		WarehouseID: o.WarehouseID,
		Status:      o.Status,
		TotalAmount: o.TotalAmount,
		Notes:       o.Notes,
		Items:       items,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}
