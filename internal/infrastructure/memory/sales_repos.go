package memory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Brokewala/gestion-stock-aldin/internal/domain"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/repository"
)

var _ repository.OrderRepository = (*orderRepo)(nil)
var _ repository.PaymentRepository = (*paymentRepo)(nil)

type orderRepo struct {
	s  *Store
	tx bool
}

// NewOrderRepository retorna el adaptador de pedidos fuera de transacción.
func NewOrderRepository(s *Store) repository.OrderRepository {
	return &orderRepo{s: s}
}

func (r *orderRepo) Create(order *entity.Order) error {
	defer r.s.lock(r.tx)()
	for _, o := range r.s.orders {
		if o.Code == order.Code {
			return domain.ErrDuplicate
		}
	}
	r.s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *orderRepo) GetByID(id string) (*entity.Order, error) {
	defer r.s.lock(r.tx)()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

// GetForUpdate equivale a GetByID: el mutex global del Store ya serializa.
func (r *orderRepo) GetForUpdate(id string) (*entity.Order, error) {
	return r.GetByID(id)
}

func (r *orderRepo) SetStatus(id, status string, at time.Time) error {
	defer r.s.lock(r.tx)()
	o, ok := r.s.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = at
	return nil
}

func (r *orderRepo) SetTotal(id string, total decimal.Decimal, at time.Time) error {
	defer r.s.lock(r.tx)()
	o, ok := r.s.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.TotalAmount = total
	o.UpdatedAt = at
	return nil
}

func (r *orderRepo) List(limit, offset int) ([]*entity.Order, error) {
	defer r.s.lock(r.tx)()
	var list []*entity.Order
	for _, o := range r.s.orders {
		list = append(list, cloneOrder(o))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return paginate(list, limit, offset), nil
}

func (r *orderRepo) CreateItem(item *entity.OrderItem) error {
	defer r.s.lock(r.tx)()
	for _, it := range r.s.items {
		if it.OrderID == item.OrderID && it.ProductID == item.ProductID && sameAssignedBatch(it.BatchID, item.BatchID) {
			return domain.ErrDuplicate
		}
	}
	r.s.items[item.ID] = cloneItem(item)
	return nil
}

func (r *orderRepo) ListItems(orderID string) ([]*entity.OrderItem, error) {
	defer r.s.lock(r.tx)()
	var list []*entity.OrderItem
	for _, it := range r.s.items {
		if it.OrderID == orderID {
			list = append(list, cloneItem(it))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *orderRepo) UpdateItemBatch(itemID string, batchID *string) error {
	defer r.s.lock(r.tx)()
	it, ok := r.s.items[itemID]
	if !ok {
		return domain.ErrNotFound
	}
	if batchID == nil {
		it.BatchID = nil
		return nil
	}
	id := *batchID
	it.BatchID = &id
	return nil
}

func (r *orderRepo) DeleteItem(itemID string) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.items[itemID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.items, itemID)
	return nil
}

func (r *orderRepo) ClearItemBatches(orderID string) error {
	defer r.s.lock(r.tx)()
	for _, it := range r.s.items {
		if it.OrderID == orderID {
			it.BatchID = nil
		}
	}
	return nil
}

// sameAssignedBatch compara referencias de lote como lo hace la clave única en
// SQL: dos NULL son distintos, así que líneas en borrador del mismo producto
// sin lote asignado no chocan entre sí.
func sameAssignedBatch(a, b *string) bool {
	return a != nil && b != nil && *a == *b
}

type paymentRepo struct {
	s  *Store
	tx bool
}

// NewPaymentRepository retorna el adaptador de pagos fuera de transacción.
func NewPaymentRepository(s *Store) repository.PaymentRepository {
	return &paymentRepo{s: s}
}

func (r *paymentRepo) Create(payment *entity.Payment) error {
	defer r.s.lock(r.tx)()
	clone := *payment
	r.s.payments = append(r.s.payments, &clone)
	return nil
}

func (r *paymentRepo) ListByOrder(orderID string) ([]*entity.Payment, error) {
	defer r.s.lock(r.tx)()
	var list []*entity.Payment
	for _, p := range r.s.payments {
		if p.OrderID == orderID {
			clone := *p
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].PaidAt.After(list[j].PaidAt) })
	return list, nil
}

func (r *paymentRepo) SumByOrder(orderID string) (decimal.Decimal, error) {
	defer r.s.lock(r.tx)()
	total := decimal.Zero
	for _, p := range r.s.payments {
		if p.OrderID == orderID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}
