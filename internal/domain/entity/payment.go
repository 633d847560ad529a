package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Brokewala/gestion-stock-aldin/internal/domain"
)

// Métodos de pago aceptados.
const (
	PaymentMethodCash        = "CASH"
	PaymentMethodMobileMoney = "MOBILE_MONEY"
	PaymentMethodCard        = "CARD"
	PaymentMethodBank        = "BANK"
)

// Payment es un abono a un pedido. Solo se insertan; el acumulado dispara la
// transición a PAID cuando alcanza el total del pedido.
type Payment struct {
	ID      string
	OrderID string
	Amount  decimal.Decimal
	Method  string
	PaidAt  time.Time
}

// Validate verifica monto positivo y método conocido.
func (p *Payment) Validate() error {
	if !p.Amount.IsPositive() {
		return domain.ErrValidation
	}
	switch p.Method {
	case PaymentMethodCash, PaymentMethodMobileMoney, PaymentMethodCard, PaymentMethodBank:
		return nil
	}
	return domain.ErrValidation
}
