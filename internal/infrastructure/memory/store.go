// Package memory implementa los puertos de persistencia sobre mapas en memoria.
// Se usa en los tests de casos de uso: una "transacción" serializa con un mutex
// global y restaura un snapshot completo si la función falla, reproduciendo la
// semántica todo-o-nada de la base de datos real.
package memory

import (
	"context"
	"sync"

	"github.com/Brokewala/gestion-stock-aldin/internal/application/inventory"
	"github.com/Brokewala/gestion-stock-aldin/internal/application/sales"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)
var _ sales.TxRunner = (*Store)(nil)
var _ sales.Sequencer = (*Store)(nil)

// Store contiene todas las tablas en memoria bajo un mutex global.
type Store struct {
	mu sync.Mutex

	products   map[string]*entity.Product
	warehouses map[string]*entity.Warehouse
	customers  map[string]*entity.Customer
	batches    map[string]*entity.Batch
	movements  []*entity.StockMovement
	orders     map[string]*entity.Order
	items      map[string]*entity.OrderItem
	payments   []*entity.Payment
	sequences  map[string]int64
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{
		products:   make(map[string]*entity.Product),
		warehouses: make(map[string]*entity.Warehouse),
		customers:  make(map[string]*entity.Customer),
		batches:    make(map[string]*entity.Batch),
		orders:     make(map[string]*entity.Order),
		items:      make(map[string]*entity.OrderItem),
		sequences:  make(map[string]int64),
	}
}

// Run ejecuta fn como transacción de inventario: mutex global + snapshot.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	err := fn(
		&movementRepo{s: s, tx: true},
		&batchRepo{s: s, tx: true},
		&productRepo{s: s, tx: true},
	)
	if err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// RunSales ejecuta fn como transacción de ventas+inventario.
func (s *Store) RunSales(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	movRepo repository.StockMovementRepository,
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	err := fn(
		&orderRepo{s: s, tx: true},
		&paymentRepo{s: s, tx: true},
		&movementRepo{s: s, tx: true},
		&batchRepo{s: s, tx: true},
		&productRepo{s: s, tx: true},
	)
	if err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// Next implementa sales.Sequencer con un contador por clave.
func (s *Store) Next(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequences[key]++
	return s.sequences[key], nil
}

type storeSnapshot struct {
	products   map[string]*entity.Product
	warehouses map[string]*entity.Warehouse
	customers  map[string]*entity.Customer
	batches    map[string]*entity.Batch
	movements  []*entity.StockMovement
	orders     map[string]*entity.Order
	items      map[string]*entity.OrderItem
	payments   []*entity.Payment
}

func (s *Store) snapshot() storeSnapshot {
	return storeSnapshot{
		products:   cloneMap(s.products, cloneProduct),
		warehouses: cloneMap(s.warehouses, cloneWarehouse),
		customers:  cloneMap(s.customers, cloneCustomer),
		batches:    cloneMap(s.batches, cloneBatch),
		movements:  append([]*entity.StockMovement(nil), s.movements...),
		orders:     cloneMap(s.orders, cloneOrder),
		items:      cloneMap(s.items, cloneItem),
		payments:   append([]*entity.Payment(nil), s.payments...),
	}
}

func (s *Store) restore(snap storeSnapshot) {
	s.products = snap.products
	s.warehouses = snap.warehouses
	s.customers = snap.customers
	s.batches = snap.batches
	s.movements = snap.movements
	s.orders = snap.orders
	s.items = snap.items
	s.payments = snap.payments
}

func cloneMap[T any](src map[string]*T, clone func(*T) *T) map[string]*T {
	dst := make(map[string]*T, len(src))
	for k, v := range src {
		dst[k] = clone(v)
	}
	return dst
}

func cloneProduct(p *entity.Product) *entity.Product       { c := *p; return &c }
func cloneWarehouse(w *entity.Warehouse) *entity.Warehouse { c := *w; return &c }
func cloneCustomer(c *entity.Customer) *entity.Customer    { cc := *c; return &cc }
func cloneBatch(b *entity.Batch) *entity.Batch             { c := *b; return &c }
func cloneOrder(o *entity.Order) *entity.Order             { c := *o; c.Items = nil; return &c }

func cloneItem(i *entity.OrderItem) *entity.OrderItem {
	c := *i
	if i.BatchID != nil {
		id := *i.BatchID
		c.BatchID = &id
	}
	return &c
}

// lock toma el mutex global solo para repos fuera de transacción.
func (s *Store) lock(tx bool) func() {
	if tx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}
