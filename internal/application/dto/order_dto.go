package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemRequest línea de un pedido.
type OrderItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	CustomerID  string             `json:"customer_id"`
	WarehouseID string             `json:"warehouse_id"`
	Items       []OrderItemRequest `json:"items"`
	Notes       string             `json:"notes,omitempty"`
}

// PaymentRequest body para POST /api/orders/:id/payments.
type PaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"` // CASH, MOBILE_MONEY, CARD, BANK
}

// OrderItemResponse línea de pedido en respuestas.
type OrderItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	BatchID   *string         `json:"batch_id,omitempty"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// OrderResponse representación HTTP de un pedido con sus líneas.
type OrderResponse struct {
	ID          string              `json:"id"`
	Code        string              `json:"code"`
	CustomerID  string              `json:"customer_id"`
	WarehouseID string              `json:"warehouse_id"`
	Status      string              `json:"status"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Notes       string              `json:"notes,omitempty"`
	Items       []OrderItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}
