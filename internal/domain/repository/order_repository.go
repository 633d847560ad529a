package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
)

// OrderRepository define el puerto de persistencia para pedidos y sus líneas.
// Las líneas pertenecen en exclusiva al pedido (ciclo de vida en cascada).
type OrderRepository interface {
	Create(order *entity.Order) error
	GetByID(id string) (*entity.Order, error)
	// GetForUpdate bloquea la fila del pedido para serializar las transiciones de estado.
	GetForUpdate(id string) (*entity.Order, error)
	SetStatus(id, status string, at time.Time) error
	SetTotal(id string, total decimal.Decimal, at time.Time) error
	List(limit, offset int) ([]*entity.Order, error)

	CreateItem(item *entity.OrderItem) error
	ListItems(orderID string) ([]*entity.OrderItem, error)
	UpdateItemBatch(itemID string, batchID *string) error
	DeleteItem(itemID string) error
	// ClearItemBatches suelta la reserva de todas las líneas del pedido.
	ClearItemBatches(orderID string) error
}
