package memory

import (
	"sort"

	"github.com/Brokewala/gestion-stock-aldin/internal/domain"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/repository"
)

var _ repository.ProductRepository = (*productRepo)(nil)
var _ repository.WarehouseRepository = (*warehouseRepo)(nil)
var _ repository.CustomerRepository = (*customerRepo)(nil)

type productRepo struct {
	s  *Store
	tx bool
}

// NewProductRepository retorna el adaptador de productos fuera de transacción.
func NewProductRepository(s *Store) repository.ProductRepository {
	return &productRepo{s: s}
}

func (r *productRepo) Create(product *entity.Product) error {
	defer r.s.lock(r.tx)()
	for _, p := range r.s.products {
		if p.SKU == product.SKU {
			return domain.ErrDuplicate
		}
	}
	r.s.products[product.ID] = cloneProduct(product)
	return nil
}

func (r *productRepo) GetByID(id string) (*entity.Product, error) {
	defer r.s.lock(r.tx)()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}

func (r *productRepo) GetBySKU(sku string) (*entity.Product, error) {
	defer r.s.lock(r.tx)()
	for _, p := range r.s.products {
		if p.SKU == sku {
			return cloneProduct(p), nil
		}
	}
	return nil, nil
}

func (r *productRepo) List(limit, offset int) ([]*entity.Product, error) {
	defer r.s.lock(r.tx)()
	var list []*entity.Product
	for _, p := range r.s.products {
		list = append(list, cloneProduct(p))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return paginate(list, limit, offset), nil
}

func (r *productRepo) Update(product *entity.Product) error {
	defer r.s.lock(r.tx)()
	if _, ok := r.s.products[product.ID]; !ok {
		return domain.ErrNotFound
	}
	// Preserva el agregado materializado: solo lo escribe UpdateRemainingStock.
	product0 := r.s.products[product.ID]
	clone := cloneProduct(product)
	clone.RemainingStock = product0.RemainingStock
	r.s.products[product.ID] = clone
	return nil
}

func (r *productRepo) UpdateRemainingStock(productID string, qty int64) error {
	defer r.s.lock(r.tx)()
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.RemainingStock = qty
	return nil
}

func (r *productRepo) ListBelowReorder() ([]*entity.Product, error) {
	defer r.s.lock(r.tx)()
	var list []*entity.Product
	for _, p := range r.s.products {
		if p.IsActive && p.IsBelowReorder() {
			list = append(list, cloneProduct(p))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].SKU < list[j].SKU })
	return list, nil
}

type warehouseRepo struct {
	s  *Store
	tx bool
}

// NewWarehouseRepository retorna el adaptador de bodegas fuera de transacción.
func NewWarehouseRepository(s *Store) repository.WarehouseRepository {
	return &warehouseRepo{s: s}
}

func (r *warehouseRepo) Create(warehouse *entity.Warehouse) error {
	defer r.s.lock(r.tx)()
	for _, w := range r.s.warehouses {
		if w.Name == warehouse.Name {
			return domain.ErrDuplicate
		}
	}
	r.s.warehouses[warehouse.ID] = cloneWarehouse(warehouse)
	return nil
}

func (r *warehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	defer r.s.lock(r.tx)()
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	return cloneWarehouse(w), nil
}

func (r *warehouseRepo) List(limit, offset int) ([]*entity.Warehouse, error) {
	defer r.s.lock(r.tx)()
	var list []*entity.Warehouse
	for _, w := range r.s.warehouses {
		list = append(list, cloneWarehouse(w))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return paginate(list, limit, offset), nil
}

type customerRepo struct {
	s  *Store
	tx bool
}

// NewCustomerRepository retorna el adaptador de clientes fuera de transacción.
func NewCustomerRepository(s *Store) repository.CustomerRepository {
	return &customerRepo{s: s}
}

func (r *customerRepo) Create(customer *entity.Customer) error {
	defer r.s.lock(r.tx)()
	r.s.customers[customer.ID] = cloneCustomer(customer)
	return nil
}

func (r *customerRepo) GetByID(id string) (*entity.Customer, error) {
	defer r.s.lock(r.tx)()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, nil
	}
	return cloneCustomer(c), nil
}

func (r *customerRepo) List(limit, offset int) ([]*entity.Customer, error) {
	defer r.s.lock(r.tx)()
	var list []*entity.Customer
	for _, c := range r.s.customers {
		list = append(list, cloneCustomer(c))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return paginate(list, limit, offset), nil
}

func paginate[T any](list []*T, limit, offset int) []*T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
