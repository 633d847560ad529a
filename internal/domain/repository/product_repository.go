package repository

import "github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (DIP).
// UpdateRemainingStock es de uso exclusivo del motor de movimientos.
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetBySKU(sku string) (*entity.Product, error)
	List(limit, offset int) ([]*entity.Product, error)
	Update(product *entity.Product) error
	UpdateRemainingStock(productID string, qty int64) error
	// ListBelowReorder retorna productos activos con stock agregado en o bajo su umbral.
	ListBelowReorder() ([]*entity.Product, error)
}
