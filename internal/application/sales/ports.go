package sales

import (
	"context"

	"github.com/Brokewala/gestion-stock-aldin/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios de ventas e inventario atados a esa tx. La expedición compone el
// motor de movimientos dentro de la misma transacción del pedido.
type TxRunner interface {
	RunSales(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		paymentRepo repository.PaymentRepository,
		movRepo repository.StockMovementRepository,
		batchRepo repository.BatchRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// Sequencer entrega valores consecutivos de un contador atómico por clave
// (clave = día para códigos de pedido). Serializa la generación de códigos
// frente a creaciones concurrentes.
type Sequencer interface {
	Next(ctx context.Context, key string) (int64, error)
}
