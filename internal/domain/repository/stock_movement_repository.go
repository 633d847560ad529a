package repository

import "github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"

// StockMovementRepository define el puerto del libro de movimientos (append-only).
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	ListByProduct(productID string, limit int) ([]*entity.StockMovement, error)
}
