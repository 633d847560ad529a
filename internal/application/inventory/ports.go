package inventory

import (
	"context"

	"github.com/Brokewala/gestion-stock-aldin/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de
// movimientos: o se aplican todos los cambios de la operación o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		batchRepo repository.BatchRepository,
		productRepo repository.ProductRepository,
	) error) error
}
