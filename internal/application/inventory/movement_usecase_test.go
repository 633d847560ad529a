package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brokewala/gestion-stock-aldin/internal/application/inventory"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/repository"
	"github.com/Brokewala/gestion-stock-aldin/internal/infrastructure/memory"
	"github.com/Brokewala/gestion-stock-aldin/pkg/logger"
)

// testEnv arma el motor de movimientos sobre el almacén en memoria.
type testEnv struct {
	store      *memory.Store
	products   repository.ProductRepository
	warehouses repository.WarehouseRepository
	batches    repository.BatchRepository
	movements  *inventory.MovementUseCase
	queries    *inventory.StockQueryUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	productRepo := memory.NewProductRepository(store)
	warehouseRepo := memory.NewWarehouseRepository(store)
	batchRepo := memory.NewBatchRepository(store)
	movRepo := memory.NewStockMovementRepository(store)
	return &testEnv{
		store:      store,
		products:   productRepo,
		warehouses: warehouseRepo,
		batches:    batchRepo,
		movements:  inventory.NewMovementUseCase(store, productRepo, warehouseRepo, logger.Nop()),
		queries:    inventory.NewStockQueryUseCase(productRepo, batchRepo, movRepo),
	}
}

func (e *testEnv) seedWarehouse(t *testing.T, name string) string {
	t.Helper()
	wh := &entity.Warehouse{ID: uuid.New().String(), Name: name, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, e.warehouses.Create(wh))
	return wh.ID
}

func (e *testEnv) seedProduct(t *testing.T, sku string, reorderLevel int64) string {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		ID:           uuid.New().String(),
		SKU:          sku,
		Name:         "Producto " + sku,
		Price:        decimal.NewFromInt(1500),
		IsActive:     true,
		ReorderLevel: reorderLevel,
		ReorderQty:   reorderLevel * 2,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.products.Create(p))
	return p.ID
}

// receive registra una recepción de un solo artículo. El código de lote va
// explícito: el generado por defecto usa resolución de segundos y chocaría al
// recibir el mismo SKU dos veces dentro del mismo test.
func (e *testEnv) receive(t *testing.T, productID, warehouseID, code string, qty int64, expiry *time.Time) *entity.Batch {
	t.Helper()
	batches, err := e.movements.ReceivePurchase(context.Background(), inventory.ReceivePurchaseInput{
		SupplierName: "Distribuidora Norte",
		WarehouseID:  warehouseID,
		Items: []inventory.ReceiveItemInput{
			{ProductID: productID, Quantity: qty, BatchCode: code, ExpiryDate: expiry},
		},
	})
	require.NoError(t, err)
	require.Len(t, batches, 1)
	return batches[0]
}

func (e *testEnv) productStock(t *testing.T, productID string) int64 {
	t.Helper()
	p, err := e.products.GetByID(productID)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.RemainingStock
}

func expiryIn(days int) *time.Time {
	d := time.Now().AddDate(0, 0, days)
	return &d
}

// ── Recepciones ───────────────────────────────────────────────────────────────

func TestReceivePurchase_CreaLoteYActualizaStock(t *testing.T) {
	env := newTestEnv(t)
	whID := env.seedWarehouse(t, "Central")
	productID := env.seedProduct(t, "COCA-33CL", 10)

	batch := env.receive(t, productID, whID, "", 100, expiryIn(90))

	assert.Equal(t, int64(100), batch.InitialQty)
	assert.Equal(t, int64(100), batch.RemainingQty)
	assert.Equal(t, whID, batch.WarehouseID)
	assert.NotEmpty(t, batch.BatchCode, "sin código explícito se genera uno")
	assert.Equal(t, int64(100), env.productStock(t, productID),
		"el agregado del producto se recalcula tras aplicar el movimiento")

	movements, err := env.queries.Movements(context.Background(), productID, 10)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, entity.MovementTypeIN, movements[0].Type)
	assert.Equal(t, "Recepción Distribuidora Norte", movements[0].Reason)
}

func TestReceivePurchase_VariosArticulosUnaTransaccion(t *testing.T) {
	env := newTestEnv(t)
	whID := env.seedWarehouse(t, "Central")
	p1 := env.seedProduct(t, "SKU-1", 0)
	p2 := env.seedProduct(t, "SKU-2", 0)

	batches, err := env.movements.ReceivePurchase(context.Background(), inventory.ReceivePurchaseInput{
		SupplierName: "Proveedor",
		WarehouseID:  whID,
		Items: []inventory.ReceiveItemInput{
			{ProductID: p1, Quantity: 40},
			{ProductID: p2, Quantity: 60, BatchCode: "LOTE-EXPL"},
		},
	})
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "LOTE-EXPL", batches[1].BatchCode, "el código explícito se respeta")
	assert.Equal(t, int64(40), env.productStock(t, p1))
	assert.Equal(t, int64(60), env.productStock(t, p2))
}

func TestReceivePurchase_ProductoInexistenteRevierteTodo(t *testing.T) {
	env := newTestEnv(t)
	whID := env.seedWarehouse(t, "Central")
	p1 := env.seedProduct(t, "SKU-1", 0)

	_, err := env.movements.ReceivePurchase(context.Background(), inventory.ReceivePurchaseInput{
		SupplierName: "Proveedor",
		WarehouseID:  whID,
		Items: []inventory.ReceiveItemInput{
			{ProductID: p1, Quantity: 40},
			{ProductID: uuid.New().String(), Quantity: 10},
		},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, int64(0), env.productStock(t, p1),
		"la recepción es todo-o-nada: el primer artículo también se revierte")
}

func TestReceivePurchase_Validaciones(t *testing.T) {
	env := newTestEnv(t)
	whID := env.seedWarehouse(t, "Central")
	productID := env.seedProduct(t, "SKU-1", 0)

	_, err := env.movements.ReceivePurchase(context.Background(), inventory.ReceivePurchaseInput{
		SupplierName: "Proveedor", WarehouseID: whID,
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "sin artículos")

	_, err = env.movements.ReceivePurchase(context.Background(), inventory.ReceivePurchaseInput{
		SupplierName: "Proveedor", WarehouseID: whID,
		Items: []inventory.ReceiveItemInput{{ProductID: productID, Quantity: 0}},
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "cantidad cero")

	_, err = env.movements.ReceivePurchase(context.Background(), inventory.ReceivePurchaseInput{
		SupplierName: "Proveedor", WarehouseID: uuid.New().String(),
		Items: []inventory.ReceiveItemInput{{ProductID: productID, Quantity: 5}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "bodega inexistente")
}

// ── Transferencias ────────────────────────────────────────────────────────────

func TestTransferStock_MueveEntreBodegas(t *testing.T) {
	env := newTestEnv(t)
	origen := env.seedWarehouse(t, "Central")
	destino := env.seedWarehouse(t, "Sucursal Sur")
	productID := env.seedProduct(t, "COCA-33CL", 0)
	source := env.receive(t, productID, origen, "L1", 100, expiryIn(90))

	err := env.movements.TransferStock(context.Background(), inventory.TransferInput{
		ProductID:       productID,
		Quantity:        30,
		FromWarehouseID: origen,
		ToWarehouseID:   destino,
	})
	require.NoError(t, err)

	refreshed, err := env.batches.GetByID(source.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(70), refreshed.RemainingQty, "el origen descuenta")

	stock, err := env.queries.StockByWarehouse(context.Background(), productID)
	require.NoError(t, err)
	totals := map[string]int64{}
	for _, ws := range stock {
		totals[ws.WarehouseID] = ws.TotalQty
	}
	assert.Equal(t, int64(70), totals[origen])
	assert.Equal(t, int64(30), totals[destino], "el destino acredita en un lote espejo")
	assert.Equal(t, int64(100), env.productStock(t, productID),
		"una transferencia no altera el stock global del producto")
}

func TestTransferStock_InsuficienteRevierte(t *testing.T) {
	env := newTestEnv(t)
	origen := env.seedWarehouse(t, "Central")
	destino := env.seedWarehouse(t, "Sucursal Sur")
	productID := env.seedProduct(t, "SKU-1", 0)
	source := env.receive(t, productID, origen, "L1", 20, nil)

	err := env.movements.TransferStock(context.Background(), inventory.TransferInput{
		ProductID:       productID,
		Quantity:        50,
		FromWarehouseID: origen,
		ToWarehouseID:   destino,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	refreshed, err := env.batches.GetByID(source.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), refreshed.RemainingQty, "nada cambió tras el rollback")

	movements, err := env.queries.Movements(context.Background(), productID, 10)
	require.NoError(t, err)
	assert.Len(t, movements, 1, "solo queda la recepción en el libro")
}

func TestTransferStock_MismaBodegaEsInvalida(t *testing.T) {
	env := newTestEnv(t)
	whID := env.seedWarehouse(t, "Central")
	productID := env.seedProduct(t, "SKU-1", 0)

	err := env.movements.TransferStock(context.Background(), inventory.TransferInput{
		ProductID:       productID,
		Quantity:        5,
		FromWarehouseID: whID,
		ToWarehouseID:   whID,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// TestTransferStock_LoteExplicitoDeOtraBodega un lote pasado a mano debe estar
// en la bodega origen declarada; si no, el movimiento mentiría sobre de dónde
// salió el stock.
func TestTransferStock_LoteExplicitoDeOtraBodega(t *testing.T) {
	env := newTestEnv(t)
	origen := env.seedWarehouse(t, "Central")
	destino := env.seedWarehouse(t, "Sucursal Sur")
	productID := env.seedProduct(t, "SKU-1", 0)
	ajeno := env.receive(t, productID, destino, "L1", 50, nil)

	err := env.movements.TransferStock(context.Background(), inventory.TransferInput{
		ProductID:       productID,
		Quantity:        10,
		FromWarehouseID: origen,
		ToWarehouseID:   destino,
		BatchID:         ajeno.ID,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	refreshed, err := env.batches.GetByID(ajeno.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), refreshed.RemainingQty, "el lote ajeno queda intacto")
}

func TestTransferStock_LoteExplicitoDeOtroProducto(t *testing.T) {
	env := newTestEnv(t)
	origen := env.seedWarehouse(t, "Central")
	destino := env.seedWarehouse(t, "Sucursal Sur")
	cocaID := env.seedProduct(t, "COCA-33CL", 0)
	fantaID := env.seedProduct(t, "FANTA-33CL", 0)
	batch := env.receive(t, fantaID, origen, "L1", 50, nil)

	err := env.movements.TransferStock(context.Background(), inventory.TransferInput{
		ProductID:       cocaID,
		Quantity:        10,
		FromWarehouseID: origen,
		ToWarehouseID:   destino,
		BatchID:         batch.ID,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTransferStock_SeleccionaLoteQueVencePrimero(t *testing.T) {
	env := newTestEnv(t)
	origen := env.seedWarehouse(t, "Central")
	destino := env.seedWarehouse(t, "Sucursal Sur")
	productID := env.seedProduct(t, "SKU-1", 0)

	tarde := env.receive(t, productID, origen, "L-TARDE", 50, expiryIn(180))
	pronto := env.receive(t, productID, origen, "L-PRONTO", 50, expiryIn(15))

	err := env.movements.TransferStock(context.Background(), inventory.TransferInput{
		ProductID:       productID,
		Quantity:        10,
		FromWarehouseID: origen,
		ToWarehouseID:   destino,
	})
	require.NoError(t, err)

	refreshedPronto, err := env.batches.GetByID(pronto.ID)
	require.NoError(t, err)
	refreshedTarde, err := env.batches.GetByID(tarde.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), refreshedPronto.RemainingQty, "sale del lote que vence primero")
	assert.Equal(t, int64(50), refreshedTarde.RemainingQty)
}

// ── Ajustes ───────────────────────────────────────────────────────────────────

func TestAdjustStock_PositivoSumaComoEntrada(t *testing.T) {
	env := newTestEnv(t)
	whID := env.seedWarehouse(t, "Central")
	productID := env.seedProduct(t, "SKU-1", 0)
	source := env.receive(t, productID, whID, "L1", 10, nil)

	adjusted, err := env.movements.AdjustStock(context.Background(), inventory.AdjustInput{
		ProductID:   productID,
		WarehouseID: whID,
		Quantity:    5,
		Reason:      "Conteo físico: sobrante",
	})
	require.NoError(t, err)
	assert.Equal(t, source.ID, adjusted.ID)
	assert.Equal(t, int64(15), adjusted.InitialQty, "el positivo suma a initial y remaining")
	assert.Equal(t, int64(15), adjusted.RemainingQty)
	assert.Equal(t, int64(15), env.productStock(t, productID))
}

func TestAdjustStock_NegativoSoloDescuentaRemaining(t *testing.T) {
	env := newTestEnv(t)
	whID := env.seedWarehouse(t, "Central")
	productID := env.seedProduct(t, "SKU-1", 0)
	env.receive(t, productID, whID, "L1", 10, nil)

	adjusted, err := env.movements.AdjustStock(context.Background(), inventory.AdjustInput{
		ProductID:   productID,
		WarehouseID: whID,
		Quantity:    -4,
		Reason:      "Merma por rotura",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), adjusted.InitialQty, "el negativo no toca initial")
	assert.Equal(t, int64(6), adjusted.RemainingQty)
	assert.Equal(t, int64(6), env.productStock(t, productID))
}

func TestAdjustStock_NegativoInsuficiente(t *testing.T) {
	env := newTestEnv(t)
	whID := env.seedWarehouse(t, "Central")
	productID := env.seedProduct(t, "SKU-1", 0)
	env.receive(t, productID, whID, "L1", 10, nil)

	_, err := env.movements.AdjustStock(context.Background(), inventory.AdjustInput{
		ProductID:   productID,
		WarehouseID: whID,
		Quantity:    -11,
		Reason:      "Merma",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, int64(10), env.productStock(t, productID))
}

func TestAdjustStock_CreaLoteSiLaBodegaEstaVacia(t *testing.T) {
	env := newTestEnv(t)
	whID := env.seedWarehouse(t, "Central")
	productID := env.seedProduct(t, "SKU-1", 0)

	adjusted, err := env.movements.AdjustStock(context.Background(), inventory.AdjustInput{
		ProductID:   productID,
		WarehouseID: whID,
		Quantity:    7,
		Reason:      "Inventario inicial",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), adjusted.RemainingQty)
	assert.Equal(t, int64(7), env.productStock(t, productID))
}

func TestAdjustStock_LoteExplicitoDeOtraBodega(t *testing.T) {
	env := newTestEnv(t)
	central := env.seedWarehouse(t, "Central")
	sur := env.seedWarehouse(t, "Sucursal Sur")
	productID := env.seedProduct(t, "SKU-1", 0)
	ajeno := env.receive(t, productID, sur, "L1", 10, nil)

	_, err := env.movements.AdjustStock(context.Background(), inventory.AdjustInput{
		ProductID:   productID,
		WarehouseID: central,
		Quantity:    -2,
		Reason:      "Merma",
		BatchID:     ajeno.ID,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, int64(10), env.productStock(t, productID))
}

func TestAdjustStock_CantidadCeroEsInvalida(t *testing.T) {
	env := newTestEnv(t)
	whID := env.seedWarehouse(t, "Central")
	productID := env.seedProduct(t, "SKU-1", 0)

	_, err := env.movements.AdjustStock(context.Background(), inventory.AdjustInput{
		ProductID:   productID,
		WarehouseID: whID,
		Quantity:    0,
		Reason:      "Nada",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ── Vistas ────────────────────────────────────────────────────────────────────

func TestLowStock_ListaProductosBajoUmbral(t *testing.T) {
	env := newTestEnv(t)
	whID := env.seedWarehouse(t, "Central")
	bajo := env.seedProduct(t, "BAJO", 20)
	sano := env.seedProduct(t, "SANO", 5)
	env.receive(t, bajo, whID, "L1", 10, nil)
	env.receive(t, sano, whID, "L2", 50, nil)

	list, err := env.queries.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "BAJO", list[0].SKU)
}

func TestNearExpiry_SoloLotesConExistenciasEnVentana(t *testing.T) {
	env := newTestEnv(t)
	whID := env.seedWarehouse(t, "Central")
	productID := env.seedProduct(t, "SKU-1", 0)

	pronto := env.receive(t, productID, whID, "L-PRONTO", 10, expiryIn(10))
	env.receive(t, productID, whID, "L-TARDE", 10, expiryIn(120))
	vacio := env.receive(t, productID, whID, "L-VACIO", 3, expiryIn(5))

	// Vaciar el tercero: no debe aparecer aunque venza dentro de la ventana.
	_, err := env.movements.AdjustStock(context.Background(), inventory.AdjustInput{
		ProductID:   productID,
		WarehouseID: whID,
		Quantity:    -3,
		Reason:      "Merma",
		BatchID:     vacio.ID,
	})
	require.NoError(t, err)

	list, err := env.queries.NearExpiry(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pronto.ID, list[0].ID)
}
