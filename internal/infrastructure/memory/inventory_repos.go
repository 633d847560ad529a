package memory

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Brokewala/gestion-stock-aldin/internal/domain"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
	dominv "github.com/Brokewala/gestion-stock-aldin/internal/domain/inventory"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/repository"
)

var _ repository.BatchRepository = (*batchRepo)(nil)
var _ repository.StockMovementRepository = (*movementRepo)(nil)

type batchRepo struct {
	s  *Store
	tx bool
}

// NewBatchRepository retorna el adaptador de lotes fuera de transacción.
func NewBatchRepository(s *Store) repository.BatchRepository {
	return &batchRepo{s: s}
}

func (r *batchRepo) Create(batch *entity.Batch) error {
	defer r.s.lock(r.tx)()
	for _, b := range r.s.batches {
		if b.ProductID == batch.ProductID && b.BatchCode == batch.BatchCode && b.WarehouseID == batch.WarehouseID {
			return domain.ErrDuplicate
		}
	}
	r.s.batches[batch.ID] = cloneBatch(batch)
	return nil
}

func (r *batchRepo) GetByID(id string) (*entity.Batch, error) {
	defer r.s.lock(r.tx)()
	b, ok := r.s.batches[id]
	if !ok {
		return nil, nil
	}
	return cloneBatch(b), nil
}

// GetForUpdate equivale a GetByID: el mutex global del Store ya serializa.
func (r *batchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	return r.GetByID(id)
}

func (r *batchRepo) Update(batch *entity.Batch) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.batches[batch.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.batches[batch.ID] = cloneBatch(batch)
	return nil
}

func (r *batchRepo) GetOrCreate(productID, batchCode, warehouseID string, template *entity.Batch) (*entity.Batch, error) {
	defer r.s.lock(r.tx)()
	for _, b := range r.s.batches {
		if b.ProductID == productID && b.BatchCode == batchCode && b.WarehouseID == warehouseID {
			return cloneBatch(b), nil
		}
	}
	batch := &entity.Batch{
		ID:          uuid.New().String(),
		ProductID:   productID,
		WarehouseID: warehouseID,
		BatchCode:   batchCode,
		ExpiryDate:  template.ExpiryDate,
		ReceivedAt:  template.ReceivedAt,
	}
	r.s.batches[batch.ID] = cloneBatch(batch)
	return batch, nil
}

func (r *batchRepo) PickForUpdate(productID, warehouseID string, qty int64) (*entity.Batch, error) {
	defer r.s.lock(r.tx)()
	picked := dominv.PickBatch(r.candidates(productID, warehouseID), qty)
	if picked == nil {
		return nil, nil
	}
	return cloneBatch(picked), nil
}

func (r *batchRepo) PickAvailableForUpdate(productID, warehouseID string, qty int64, exclude []string) (*entity.Batch, error) {
	defer r.s.lock(r.tx)()
	// Cantidad retenida por línea de pedidos activos, por lote.
	reserved := make(map[string]int64)
	for _, item := range r.s.items {
		if item.BatchID == nil {
			continue
		}
		order, ok := r.s.orders[item.OrderID]
		if !ok {
			continue
		}
		if order.Status == entity.OrderStatusConfirmed || order.Status == entity.OrderStatusPaid {
			reserved[*item.BatchID] += item.Quantity
		}
	}
	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}
	var candidates []*entity.Batch
	for _, b := range r.candidates(productID, warehouseID) {
		if !excluded[b.ID] {
			candidates = append(candidates, b)
		}
	}
	picked := dominv.PickAvailable(candidates, reserved, qty)
	if picked == nil {
		return nil, nil
	}
	return cloneBatch(picked), nil
}

func (r *batchRepo) SumRemainingByProduct(productID string) (int64, error) {
	defer r.s.lock(r.tx)()
	var total int64
	for _, b := range r.s.batches {
		if b.ProductID == productID {
			total += b.RemainingQty
		}
	}
	return total, nil
}

func (r *batchRepo) ListByProduct(productID string) ([]*entity.Batch, error) {
	defer r.s.lock(r.tx)()
	list := r.candidates(productID, "")
	out := make([]*entity.Batch, len(list))
	for i, b := range list {
		out[i] = cloneBatch(b)
	}
	return out, nil
}

func (r *batchRepo) StockByWarehouse(productID string) ([]repository.WarehouseStock, error) {
	defer r.s.lock(r.tx)()
	totals := make(map[string]int64)
	for _, b := range r.s.batches {
		if b.ProductID == productID {
			totals[b.WarehouseID] += b.RemainingQty
		}
	}
	var list []repository.WarehouseStock
	for whID, qty := range totals {
		name := whID
		if wh, ok := r.s.warehouses[whID]; ok {
			name = wh.Name
		}
		list = append(list, repository.WarehouseStock{WarehouseID: whID, WarehouseName: name, TotalQty: qty})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].WarehouseName < list[j].WarehouseName })
	return list, nil
}

func (r *batchRepo) ListNearExpiry(now time.Time, days int) ([]*entity.Batch, error) {
	defer r.s.lock(r.tx)()
	var list []*entity.Batch
	for _, b := range r.s.batches {
		if b.RemainingQty > 0 && b.IsNearExpiry(now, days) {
			list = append(list, cloneBatch(b))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ExpiryDate.Before(*list[j].ExpiryDate) })
	return list, nil
}

// candidates reúne los lotes del producto, opcionalmente filtrados por bodega,
// en orden estable (el picker del dominio aplica el orden FIFO-por-vencimiento).
func (r *batchRepo) candidates(productID, warehouseID string) []*entity.Batch {
	var list []*entity.Batch
	for _, b := range r.s.batches {
		if b.ProductID != productID {
			continue
		}
		if warehouseID != "" && b.WarehouseID != warehouseID {
			continue
		}
		list = append(list, b)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

type movementRepo struct {
	s  *Store
	tx bool
}

// NewStockMovementRepository retorna el adaptador del libro fuera de transacción.
func NewStockMovementRepository(s *Store) repository.StockMovementRepository {
	return &movementRepo{s: s}
}

func (r *movementRepo) Create(movement *entity.StockMovement) error {
	defer r.s.lock(r.tx)()
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	clone := *movement
	r.s.movements = append(r.s.movements, &clone)
	return nil
}

func (r *movementRepo) ListByProduct(productID string, limit int) ([]*entity.StockMovement, error) {
	defer r.s.lock(r.tx)()
	var list []*entity.StockMovement
	for i := len(r.s.movements) - 1; i >= 0 && len(list) < limit; i-- {
		if r.s.movements[i].ProductID == productID {
			clone := *r.s.movements[i]
			list = append(list, &clone)
		}
	}
	return list, nil
}
