package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Brokewala/gestion-stock-aldin/internal/domain"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

const batchColumns = `id, product_id, warehouse_id, batch_code, expiry_date, initial_qty, remaining_qty, received_at`

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Create persiste un lote nuevo. Único por (producto, código, bodega).
func (r *BatchRepo) Create(batch *entity.Batch) error {
	query := `
		INSERT INTO batches (` + batchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.ProductID, batch.WarehouseID, batch.BatchCode,
		batch.ExpiryDate, batch.InitialQty, batch.RemainingQty, batch.ReceivedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *BatchRepo) GetByID(id string) (*entity.Batch, error) {
	return r.one(`SELECT `+batchColumns+` FROM batches WHERE id = $1`, id)
}

// GetForUpdate obtiene un lote por ID y bloquea la fila (SELECT FOR UPDATE).
func (r *BatchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	return r.one(`SELECT `+batchColumns+` FROM batches WHERE id = $1 FOR UPDATE`, id)
}

// Update persiste las cantidades del lote.
func (r *BatchRepo) Update(batch *entity.Batch) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE batches SET initial_qty = $2, remaining_qty = $3 WHERE id = $1`,
		batch.ID, batch.InitialQty, batch.RemainingQty,
	)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	return nil
}

// GetOrCreate busca el lote (producto, código, bodega) bloqueándolo; si no
// existe lo crea vacío copiando vencimiento y recepción de la plantilla.
func (r *BatchRepo) GetOrCreate(productID, batchCode, warehouseID string, template *entity.Batch) (*entity.Batch, error) {
	batch, err := r.one(
		`SELECT `+batchColumns+` FROM batches
		 WHERE product_id = $1 AND batch_code = $2 AND warehouse_id = $3 FOR UPDATE`,
		productID, batchCode, warehouseID,
	)
	if err != nil {
		return nil, err
	}
	if batch != nil {
		return batch, nil
	}
	batch = &entity.Batch{
		ID:          newID(),
		ProductID:   productID,
		WarehouseID: warehouseID,
		BatchCode:   batchCode,
		ExpiryDate:  template.ExpiryDate,
		ReceivedAt:  template.ReceivedAt,
	}
	if err := r.Create(batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// PickForUpdate selecciona y bloquea el lote FIFO-por-vencimiento con
// remaining_qty >= qty: vencimiento ascendente con nulos al final y luego
// recepción más antigua. warehouseID vacío considera todas las bodegas.
func (r *BatchRepo) PickForUpdate(productID, warehouseID string, qty int64) (*entity.Batch, error) {
	query := `
		SELECT ` + batchColumns + ` FROM batches
		WHERE product_id = $1
		  AND ($2 = '' OR warehouse_id = $2)
		  AND remaining_qty >= $3
		ORDER BY expiry_date ASC NULLS LAST, received_at ASC, id
		LIMIT 1
		FOR UPDATE`
	return r.one(query, productID, warehouseID, qty)
}

// PickAvailableForUpdate es la variante de confirmación de pedidos: recorre
// los candidatos en orden FIFO-por-vencimiento, bloquea cada uno y recién
// entonces suma la cantidad retenida por líneas de pedidos activos
// (CONFIRMED/PAID). El bloqueo va primero y la suma en una sentencia aparte:
// una reserva confirmada mientras se esperaba el bloqueo queda visible al
// re-chequear, y dos pedidos no pueden reservar juntos más de lo que el lote
// cubre, sin tocar remaining_qty. Los lotes en exclude se saltan.
func (r *BatchRepo) PickAvailableForUpdate(productID, warehouseID string, qty int64, exclude []string) (*entity.Batch, error) {
	if exclude == nil {
		exclude = []string{}
	}
	// remaining_qty >= qty es condición necesaria; el filtro por reservas llega
	// después del bloqueo, fila por fila.
	rows, err := r.q.Query(context.Background(), `
		SELECT id FROM batches
		WHERE product_id = $1
		  AND ($2 = '' OR warehouse_id = $2)
		  AND remaining_qty >= $3
		  AND NOT (id = ANY($4))
		ORDER BY expiry_date ASC NULLS LAST, received_at ASC, id`,
		productID, warehouseID, qty, exclude,
	)
	if err != nil {
		return nil, fmt.Errorf("pick available candidates: %w", err)
	}
	var candidates []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan candidate batch: %w", err)
		}
		candidates = append(candidates, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pick available candidates: %w", err)
	}

	for _, id := range candidates {
		batch, err := r.GetForUpdate(id)
		if err != nil {
			return nil, err
		}
		if batch == nil || batch.RemainingQty < qty {
			continue
		}
		reserved, err := r.reservedQty(id)
		if err != nil {
			return nil, err
		}
		if batch.RemainingQty-reserved >= qty {
			return batch, nil
		}
	}
	return nil, nil
}

// reservedQty suma las cantidades retenidas sobre el lote por líneas de
// pedidos CONFIRMED/PAID.
func (r *BatchRepo) reservedQty(batchID string) (int64, error) {
	var total int64
	err := r.q.QueryRow(context.Background(), `
		SELECT COALESCE(SUM(oi.quantity), 0)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE oi.batch_id = $1 AND o.status IN ('CONFIRMED', 'PAID')`,
		batchID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum reserved qty: %w", err)
	}
	return total, nil
}

// SumRemainingByProduct suma remaining_qty de todos los lotes del producto.
func (r *BatchRepo) SumRemainingByProduct(productID string) (int64, error) {
	var total int64
	err := r.q.QueryRow(context.Background(),
		`SELECT COALESCE(SUM(remaining_qty), 0) FROM batches WHERE product_id = $1`,
		productID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum remaining by product: %w", err)
	}
	return total, nil
}

// ListByProduct lista los lotes de un producto.
func (r *BatchRepo) ListByProduct(productID string) ([]*entity.Batch, error) {
	return r.list(
		`SELECT `+batchColumns+` FROM batches WHERE product_id = $1
		 ORDER BY expiry_date ASC NULLS LAST, received_at ASC`,
		productID,
	)
}

// StockByWarehouse retorna la ventilación del stock de un producto por bodega.
func (r *BatchRepo) StockByWarehouse(productID string) ([]repository.WarehouseStock, error) {
	query := `
		SELECT w.id, w.name, COALESCE(SUM(b.remaining_qty), 0)
		FROM batches b
		JOIN warehouses w ON w.id = b.warehouse_id
		WHERE b.product_id = $1
		GROUP BY w.id, w.name
		ORDER BY w.name`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("stock by warehouse: %w", err)
	}
	defer rows.Close()
	var list []repository.WarehouseStock
	for rows.Next() {
		var ws repository.WarehouseStock
		if err := rows.Scan(&ws.WarehouseID, &ws.WarehouseName, &ws.TotalQty); err != nil {
			return nil, fmt.Errorf("scan warehouse stock: %w", err)
		}
		list = append(list, ws)
	}
	return list, rows.Err()
}

// ListNearExpiry retorna lotes con existencias cuyo vencimiento cae dentro de la ventana.
func (r *BatchRepo) ListNearExpiry(now time.Time, days int) ([]*entity.Batch, error) {
	limit := now.AddDate(0, 0, days)
	return r.list(
		`SELECT `+batchColumns+` FROM batches
		 WHERE remaining_qty > 0 AND expiry_date IS NOT NULL AND expiry_date <= $1
		 ORDER BY expiry_date ASC, received_at ASC`,
		limit,
	)
}

func (r *BatchRepo) one(query string, args ...any) (*entity.Batch, error) {
	var b entity.Batch
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&b.ID, &b.ProductID, &b.WarehouseID, &b.BatchCode,
		&b.ExpiryDate, &b.InitialQty, &b.RemainingQty, &b.ReceivedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return &b, nil
}

func (r *BatchRepo) list(query string, args ...any) ([]*entity.Batch, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var list []*entity.Batch
	for rows.Next() {
		var b entity.Batch
		if err := rows.Scan(
			&b.ID, &b.ProductID, &b.WarehouseID, &b.BatchCode,
			&b.ExpiryDate, &b.InitialQty, &b.RemainingQty, &b.ReceivedAt,
		); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
