package repository

import (
	"github.com/shopspring/decimal"

	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
)

// PaymentRepository define el puerto del registro de pagos (append-only).
type PaymentRepository interface {
	Create(payment *entity.Payment) error
	ListByOrder(orderID string) ([]*entity.Payment, error)
	SumByOrder(orderID string) (decimal.Decimal, error)
}
