package inventory

import (
	"context"
	"time"

	"github.com/Brokewala/gestion-stock-aldin/internal/domain"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/repository"
)

// Ventana por defecto de la vista de lotes próximos a vencer.
const defaultNearExpiryDays = 30

// StockQueryUseCase agrupa las vistas de agregación de solo lectura:
// stock por bodega, productos bajo umbral y lotes próximos a vencer.
type StockQueryUseCase struct {
	productRepo repository.ProductRepository
	batchRepo   repository.BatchRepository
	movRepo     repository.StockMovementRepository
}

// NewStockQueryUseCase construye las vistas de stock.
func NewStockQueryUseCase(
	productRepo repository.ProductRepository,
	batchRepo repository.BatchRepository,
	movRepo repository.StockMovementRepository,
) *StockQueryUseCase {
	return &StockQueryUseCase{
		productRepo: productRepo,
		batchRepo:   batchRepo,
		movRepo:     movRepo,
	}
}

// StockByWarehouse retorna la ventilación del stock de un producto por bodega.
func (uc *StockQueryUseCase) StockByWarehouse(ctx context.Context, productID string) ([]repository.WarehouseStock, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return uc.batchRepo.StockByWarehouse(productID)
}

// LowStock retorna los productos activos con stock agregado en o bajo su umbral.
func (uc *StockQueryUseCase) LowStock(ctx context.Context) ([]*entity.Product, error) {
	return uc.productRepo.ListBelowReorder()
}

// NearExpiry retorna los lotes con existencias que vencen dentro de la ventana.
// days <= 0 usa la ventana por defecto de 30 días.
func (uc *StockQueryUseCase) NearExpiry(ctx context.Context, days int) ([]*entity.Batch, error) {
	if days <= 0 {
		days = defaultNearExpiryDays
	}
	return uc.batchRepo.ListNearExpiry(time.Now(), days)
}

// Movements retorna los últimos movimientos del libro para un producto.
func (uc *StockQueryUseCase) Movements(ctx context.Context, productID string, limit int) ([]*entity.StockMovement, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return uc.movRepo.ListByProduct(productID, limit)
}
