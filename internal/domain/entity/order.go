package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Brokewala/gestion-stock-aldin/internal/domain"
)

// Estados del pedido. DRAFT → CONFIRMED → PAID → SHIPPED; cualquiera de
// DRAFT/CONFIRMED/PAID → CANCELLED. SHIPPED y CANCELLED son terminales.
const (
	OrderStatusDraft     = "DRAFT"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusPaid      = "PAID"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusCancelled = "CANCELLED"
)

// Order es una venta a un cliente, servida desde una bodega.
// TotalAmount es derivado: suma de los line_total de sus líneas.
type Order struct {
	ID          string
	Code        string // único, ORD-YYYYMMDD-NNNN
	CustomerID  string
	WarehouseID string
	Status      string
	TotalAmount decimal.Decimal
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Items se carga aparte; no es una columna.
	Items []*OrderItem
}

// IsEditable indica si se pueden agregar o quitar líneas (solo en borrador).
func (o *Order) IsEditable() bool {
	return o.Status == OrderStatusDraft
}

// CanShip indica si el pedido puede expedirse desde su estado actual.
func (o *Order) CanShip() bool {
	return o.Status == OrderStatusConfirmed || o.Status == OrderStatusPaid
}

// OrderItem es una línea de pedido. BatchID queda nil hasta la confirmación:
// la reserva es una asociación por referencia, sin descontar cantidad del lote.
// Única por (pedido, producto, lote).
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	BatchID   *string // nil hasta reservar
	Quantity  int64
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal // derivado = Quantity * UnitPrice
}

// Validate verifica cantidad positiva y precio no negativo.
func (i *OrderItem) Validate() error {
	if i.Quantity <= 0 {
		return domain.ErrValidation
	}
	if i.UnitPrice.IsNegative() {
		return domain.ErrValidation
	}
	return nil
}

// ComputeLineTotal recalcula y asigna el total de la línea.
func (i *OrderItem) ComputeLineTotal() decimal.Decimal {
	i.LineTotal = decimal.NewFromInt(i.Quantity).Mul(i.UnitPrice)
	return i.LineTotal
}
