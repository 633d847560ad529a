package repository

import (
	"time"

	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
)

// WarehouseStock es una fila de la vista stock-por-bodega de un producto.
type WarehouseStock struct {
	WarehouseID   string
	WarehouseName string
	TotalQty      int64
}

// BatchRepository define el puerto de persistencia para lotes. Los métodos
// *ForUpdate bloquean la fila (SELECT FOR UPDATE) para serializar la secuencia
// seleccionar-luego-mutar dentro de la transacción.
type BatchRepository interface {
	Create(batch *entity.Batch) error
	GetByID(id string) (*entity.Batch, error)
	GetForUpdate(id string) (*entity.Batch, error)
	Update(batch *entity.Batch) error
	// GetOrCreate busca el lote (producto, código, bodega) y lo crea vacío si no
	// existe, copiando vencimiento y fecha de recepción de la plantilla.
	GetOrCreate(productID, batchCode, warehouseID string, template *entity.Batch) (*entity.Batch, error)
	// PickForUpdate selecciona y bloquea el lote FIFO-por-vencimiento con
	// remaining_qty >= qty. warehouseID vacío = cualquier bodega. nil si no hay.
	PickForUpdate(productID, warehouseID string, qty int64) (*entity.Batch, error)
	// PickAvailableForUpdate es la variante de confirmación: descuenta las
	// reservas activas (líneas de pedidos CONFIRMED/PAID) antes de comparar y
	// salta los lotes en exclude, ya asignados a otra línea del mismo pedido.
	PickAvailableForUpdate(productID, warehouseID string, qty int64, exclude []string) (*entity.Batch, error)
	SumRemainingByProduct(productID string) (int64, error)
	ListByProduct(productID string) ([]*entity.Batch, error)
	StockByWarehouse(productID string) ([]WarehouseStock, error)
	// ListNearExpiry retorna lotes con existencias que vencen dentro de la ventana.
	ListNearExpiry(now time.Time, days int) ([]*entity.Batch, error)
}
