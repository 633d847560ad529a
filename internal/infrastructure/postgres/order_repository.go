package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Brokewala/gestion-stock-aldin/internal/domain"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

const orderColumns = `id, code, customer_id, warehouse_id, status, total_amount, notes, created_at, updated_at`

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
// Las líneas viven en order_items con borrado en cascada desde orders.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de pedidos. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste un pedido nuevo (sin líneas).
func (r *OrderRepo) Create(order *entity.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.Code, order.CustomerID, order.WarehouseID, order.Status,
		order.TotalAmount, order.Notes, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// GetByID obtiene un pedido por ID.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	return r.one(`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

// GetForUpdate obtiene un pedido y bloquea la fila (SELECT FOR UPDATE).
func (r *OrderRepo) GetForUpdate(id string) (*entity.Order, error) {
	return r.one(`SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

// SetStatus persiste una transición de estado.
func (r *OrderRepo) SetStatus(id, status string, at time.Time) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, at,
	)
	if err != nil {
		return fmt.Errorf("set order status: %w", err)
	}
	return nil
}

// SetTotal persiste el total recalculado.
func (r *OrderRepo) SetTotal(id string, total decimal.Decimal, at time.Time) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE orders SET total_amount = $2, updated_at = $3 WHERE id = $1`,
		id, total, at,
	)
	if err != nil {
		return fmt.Errorf("set order total: %w", err)
	}
	return nil
}

// List lista pedidos recientes con paginación.
func (r *OrderRepo) List(limit, offset int) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	var list []*entity.Order
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(
			&o.ID, &o.Code, &o.CustomerID, &o.WarehouseID, &o.Status,
			&o.TotalAmount, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}

// CreateItem persiste una línea. Única por (pedido, producto, lote).
func (r *OrderRepo) CreateItem(item *entity.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, product_id, batch_id, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.OrderID, item.ProductID, item.BatchID,
		item.Quantity, item.UnitPrice, item.LineTotal,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

// ListItems lista las líneas de un pedido.
func (r *OrderRepo) ListItems(orderID string) ([]*entity.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, batch_id, quantity, unit_price, line_total
		FROM order_items WHERE order_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	var list []*entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.BatchID,
			&it.Quantity, &it.UnitPrice, &it.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// UpdateItemBatch asigna (o suelta, con nil) el lote reservado de una línea.
func (r *OrderRepo) UpdateItemBatch(itemID string, batchID *string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE order_items SET batch_id = $2 WHERE id = $1`,
		itemID, batchID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update order item batch: %w", err)
	}
	return nil
}

// DeleteItem elimina una línea.
func (r *OrderRepo) DeleteItem(itemID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM order_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete order item: %w", err)
	}
	return nil
}

// ClearItemBatches suelta la reserva de todas las líneas del pedido.
func (r *OrderRepo) ClearItemBatches(orderID string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE order_items SET batch_id = NULL WHERE order_id = $1`,
		orderID,
	)
	if err != nil {
		return fmt.Errorf("clear order item batches: %w", err)
	}
	return nil
}

func (r *OrderRepo) one(query string, args ...any) (*entity.Order, error) {
	var o entity.Order
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&o.ID, &o.Code, &o.CustomerID, &o.WarehouseID, &o.Status,
		&o.TotalAmount, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}
