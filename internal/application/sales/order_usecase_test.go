package sales_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brokewala/gestion-stock-aldin/internal/application/inventory"
	"github.com/Brokewala/gestion-stock-aldin/internal/application/sales"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/repository"
	"github.com/Brokewala/gestion-stock-aldin/internal/infrastructure/memory"
	"github.com/Brokewala/gestion-stock-aldin/pkg/logger"
)

// testEnv arma la máquina de estados de pedidos sobre el almacén en memoria,
// con el Store haciendo también de secuenciador de códigos.
type testEnv struct {
	store     *memory.Store
	products  repository.ProductRepository
	batches   repository.BatchRepository
	orders    *sales.OrderUseCase
	movements *inventory.MovementUseCase

	warehouseID string
	customerID  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	productRepo := memory.NewProductRepository(store)
	warehouseRepo := memory.NewWarehouseRepository(store)
	customerRepo := memory.NewCustomerRepository(store)
	batchRepo := memory.NewBatchRepository(store)

	movementUC := inventory.NewMovementUseCase(store, productRepo, warehouseRepo, logger.Nop())
	orderUC := sales.NewOrderUseCase(store, store, movementUC, customerRepo, warehouseRepo, productRepo, logger.Nop())

	wh := &entity.Warehouse{ID: uuid.New().String(), Name: "Central", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, warehouseRepo.Create(wh))
	customer := &entity.Customer{ID: uuid.New().String(), Name: "Bar La Esquina", CreatedAt: time.Now()}
	require.NoError(t, customerRepo.Create(customer))

	return &testEnv{
		store:       store,
		products:    productRepo,
		batches:     batchRepo,
		orders:      orderUC,
		movements:   movementUC,
		warehouseID: wh.ID,
		customerID:  customer.ID,
	}
}

func (e *testEnv) seedProduct(t *testing.T, sku string) string {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		ID:        uuid.New().String(),
		SKU:       sku,
		Name:      "Producto " + sku,
		Price:     decimal.NewFromInt(1200),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, e.products.Create(p))
	return p.ID
}

// seedStock recibe qty unidades del producto en la bodega del entorno.
func (e *testEnv) seedStock(t *testing.T, productID, code string, qty int64) *entity.Batch {
	t.Helper()
	batches, err := e.movements.ReceivePurchase(context.Background(), inventory.ReceivePurchaseInput{
		SupplierName: "Proveedor",
		WarehouseID:  e.warehouseID,
		Items: []inventory.ReceiveItemInput{
			{ProductID: productID, Quantity: qty, BatchCode: code},
		},
	})
	require.NoError(t, err)
	return batches[0]
}

func (e *testEnv) createOrder(t *testing.T, items ...sales.OrderItemInput) *entity.Order {
	t.Helper()
	order, err := e.orders.CreateOrder(context.Background(), sales.CreateOrderInput{
		CustomerID:  e.customerID,
		WarehouseID: e.warehouseID,
		Items:       items,
	})
	require.NoError(t, err)
	return order
}

func item(productID string, qty int64, price int64) sales.OrderItemInput {
	return sales.OrderItemInput{ProductID: productID, Quantity: qty, UnitPrice: decimal.NewFromInt(price)}
}

func (e *testEnv) remaining(t *testing.T, batchID string) int64 {
	t.Helper()
	b, err := e.batches.GetByID(batchID)
	require.NoError(t, err)
	require.NotNil(t, b)
	return b.RemainingQty
}

// ── Creación ──────────────────────────────────────────────────────────────────

func TestCreateOrder_BorradorConCodigoYTotal(t *testing.T) {
	env := newTestEnv(t)
	cocaID := env.seedProduct(t, "COCA-33CL")
	fantaID := env.seedProduct(t, "FANTA-33CL")

	order := env.createOrder(t, item(cocaID, 10, 1200), item(fantaID, 5, 800))

	assert.Equal(t, entity.OrderStatusDraft, order.Status)
	wantCode := fmt.Sprintf("ORD-%s-0001", time.Now().Format("20060102"))
	assert.Equal(t, wantCode, order.Code)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(16000)),
		"total = 10*1200 + 5*800, derivado de las líneas")
	require.Len(t, order.Items, 2)
	for _, it := range order.Items {
		assert.Nil(t, it.BatchID, "en borrador ninguna línea tiene lote")
	}
}

func TestCreateOrder_CodigosConsecutivosDelDia(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SKU-1")

	first := env.createOrder(t, item(productID, 1, 100))
	second := env.createOrder(t, item(productID, 2, 100))

	day := time.Now().Format("20060102")
	assert.Equal(t, "ORD-"+day+"-0001", first.Code)
	assert.Equal(t, "ORD-"+day+"-0002", second.Code)
}

// TestCreateOrder_DosLineasMismoProducto en borrador el mismo producto puede
// aparecer en varias líneas: sin lote asignado no hay choque de clave única.
func TestCreateOrder_DosLineasMismoProducto(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "COCA-33CL")

	order := env.createOrder(t, item(productID, 10, 1200), item(productID, 5, 1200))

	require.Len(t, order.Items, 2)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(18000)), "10*1200 + 5*1200")
}

func TestCreateOrder_Validaciones(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SKU-1")

	_, err := env.orders.CreateOrder(context.Background(), sales.CreateOrderInput{
		CustomerID:  env.customerID,
		WarehouseID: env.warehouseID,
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "sin líneas")

	_, err = env.orders.CreateOrder(context.Background(), sales.CreateOrderInput{
		CustomerID:  uuid.New().String(),
		WarehouseID: env.warehouseID,
		Items:       []sales.OrderItemInput{item(productID, 1, 100)},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "cliente inexistente")

	_, err = env.orders.CreateOrder(context.Background(), sales.CreateOrderInput{
		CustomerID:  env.customerID,
		WarehouseID: env.warehouseID,
		Items:       []sales.OrderItemInput{item(productID, 0, 100)},
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "cantidad cero")
}

// ── Edición en borrador ───────────────────────────────────────────────────────

func TestAddItem_RecalculaTotal(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SKU-1")
	order := env.createOrder(t, item(productID, 2, 500))

	otherID := env.seedProduct(t, "SKU-2")
	updated, err := env.orders.AddItem(context.Background(), order.ID, item(otherID, 3, 1000))
	require.NoError(t, err)
	assert.True(t, updated.TotalAmount.Equal(decimal.NewFromInt(4000)), "1000 + 3000")
}

func TestRemoveItem_RecalculaTotal(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SKU-1")
	order := env.createOrder(t, item(productID, 2, 500))

	otherID := env.seedProduct(t, "SKU-2")
	updated, err := env.orders.AddItem(context.Background(), order.ID, item(otherID, 3, 1000))
	require.NoError(t, err)

	var removeID string
	items, err := env.orders.GetOrder(context.Background(), updated.ID)
	require.NoError(t, err)
	for _, it := range items.Items {
		if it.ProductID == otherID {
			removeID = it.ID
		}
	}
	require.NotEmpty(t, removeID)

	final, err := env.orders.RemoveItem(context.Background(), order.ID, removeID)
	require.NoError(t, err)
	assert.True(t, final.TotalAmount.Equal(decimal.NewFromInt(1000)))
}

func TestAddItem_SoloEnBorrador(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SKU-1")
	env.seedStock(t, productID, "L1", 50)
	order := env.createOrder(t, item(productID, 5, 500))

	_, err := env.orders.ConfirmOrder(context.Background(), order.ID)
	require.NoError(t, err)

	_, err = env.orders.AddItem(context.Background(), order.ID, item(productID, 1, 500))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// ── Confirmación ──────────────────────────────────────────────────────────────

func TestConfirmOrder_ReservaSinDescontar(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SKU-1")
	batch := env.seedStock(t, productID, "L1", 50)
	order := env.createOrder(t, item(productID, 20, 1200))

	confirmed, err := env.orders.ConfirmOrder(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusConfirmed, confirmed.Status)
	require.Len(t, confirmed.Items, 1)
	require.NotNil(t, confirmed.Items[0].BatchID)
	assert.Equal(t, batch.ID, *confirmed.Items[0].BatchID)
	assert.Equal(t, int64(50), env.remaining(t, batch.ID),
		"la reserva es por referencia: remaining_qty no cambia al confirmar")
}

func TestConfirmOrder_InsuficienteRevierteTodasLasLineas(t *testing.T) {
	env := newTestEnv(t)
	conStock := env.seedProduct(t, "SKU-1")
	sinStock := env.seedProduct(t, "SKU-2")
	env.seedStock(t, conStock, "L1", 50)
	order := env.createOrder(t, item(conStock, 10, 500), item(sinStock, 10, 500))

	_, err := env.orders.ConfirmOrder(context.Background(), order.ID)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	refreshed, err := env.orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDraft, refreshed.Status, "el pedido sigue en borrador")
	for _, it := range refreshed.Items {
		assert.Nil(t, it.BatchID, "ninguna línea queda con lote tras el rollback")
	}
}

// TestConfirmOrder_DosPedidosNoSobreReservan dos pedidos que piden lo mismo
// sobre un lote que solo cubre uno: el primero confirma, el segundo falla.
func TestConfirmOrder_DosPedidosNoSobreReservan(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SKU-1")
	env.seedStock(t, productID, "L1", 10)

	first := env.createOrder(t, item(productID, 10, 500))
	second := env.createOrder(t, item(productID, 10, 500))

	_, err := env.orders.ConfirmOrder(context.Background(), first.ID)
	require.NoError(t, err)

	_, err = env.orders.ConfirmOrder(context.Background(), second.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock,
		"la disponibilidad descuenta lo retenido por el primer pedido")
}

// TestConfirmOrder_MismoProductoLotesDistintos dos líneas del mismo producto no
// pueden compartir lote: cada una reserva el siguiente candidato FIFO.
func TestConfirmOrder_MismoProductoLotesDistintos(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SKU-1")
	first := env.seedStock(t, productID, "L1", 30)
	second := env.seedStock(t, productID, "L2", 30)

	order := env.createOrder(t, item(productID, 20, 500), item(productID, 20, 500))

	confirmed, err := env.orders.ConfirmOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, confirmed.Items, 2)
	require.NotNil(t, confirmed.Items[0].BatchID)
	require.NotNil(t, confirmed.Items[1].BatchID)
	assert.NotEqual(t, *confirmed.Items[0].BatchID, *confirmed.Items[1].BatchID)
	assert.ElementsMatch(t,
		[]string{first.ID, second.ID},
		[]string{*confirmed.Items[0].BatchID, *confirmed.Items[1].BatchID})
}

func TestConfirmOrder_MismoProductoSinLoteAlterno(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SKU-1")
	env.seedStock(t, productID, "L1", 50)

	order := env.createOrder(t, item(productID, 10, 500), item(productID, 10, 500))

	_, err := env.orders.ConfirmOrder(context.Background(), order.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock,
		"la segunda línea necesita otro lote aunque al primero le sobre")

	refreshed, err := env.orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDraft, refreshed.Status)
}

func TestConfirmOrder_SoloDesdeBorrador(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SKU-1")
	env.seedStock(t, productID, "L1", 50)
	order := env.createOrder(t, item(productID, 5, 500))

	_, err := env.orders.ConfirmOrder(context.Background(), order.ID)
	require.NoError(t, err)

	_, err = env.orders.ConfirmOrder(context.Background(), order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// ── Pago ──────────────────────────────────────────────────────────────────────

func TestRegisterPayment_AcumuladoDisparaPAID(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SKU-1")
	env.seedStock(t, productID, "L1", 50)
	order := env.createOrder(t, item(productID, 10, 1000)) // total 10000

	_, err := env.orders.ConfirmOrder(context.Background(), order.ID)
	require.NoError(t, err)

	partial, err := env.orders.RegisterPayment(context.Background(), order.ID,
		decimal.NewFromInt(4000), entity.PaymentMethodCash)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusConfirmed, partial.Status, "abono parcial no transiciona")

	paid, err := env.orders.RegisterPayment(context.Background(), order.ID,
		decimal.NewFromInt(6000), entity.PaymentMethodMobileMoney)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPaid, paid.Status, "el acumulado alcanza el total")
}

func TestRegisterPayment_EnBorradorNoTransiciona(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SKU-1")
	order := env.createOrder(t, item(productID, 1, 1000))

	updated, err := env.orders.RegisterPayment(context.Background(), order.ID,
		decimal.NewFromInt(1000), entity.PaymentMethodCash)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusDraft, updated.Status,
		"el pago se registra pero PAID exige estar confirmado")
}

func TestRegisterPayment_Validaciones(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SKU-1")
	order := env.createOrder(t, item(productID, 1, 1000))

	_, err := env.orders.RegisterPayment(context.Background(), order.ID,
		decimal.Zero, entity.PaymentMethodCash)
	assert.ErrorIs(t, err, domain.ErrValidation, "monto no positivo")

	_, err = env.orders.RegisterPayment(context.Background(), order.ID,
		decimal.NewFromInt(100), "CHEQUE")
	assert.ErrorIs(t, err, domain.ErrValidation, "método desconocido")
}

// ── Expedición ────────────────────────────────────────────────────────────────

func TestShipOrder_DescuentaStockYRegistraSalida(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SKU-1")
	batch := env.seedStock(t, productID, "L1", 50)
	order := env.createOrder(t, item(productID, 20, 1200))

	_, err := env.orders.ConfirmOrder(context.Background(), order.ID)
	require.NoError(t, err)

	shipped, err := env.orders.ShipOrder(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusShipped, shipped.Status)
	assert.Equal(t, int64(30), env.remaining(t, batch.ID),
		"el descuento real ocurre al expedir")

	p, err := env.products.GetByID(productID)
	require.NoError(t, err)
	assert.Equal(t, int64(30), p.RemainingStock)
}

func TestShipOrder_PagadoTambienExpide(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SKU-1")
	env.seedStock(t, productID, "L1", 50)
	order := env.createOrder(t, item(productID, 10, 1000))

	_, err := env.orders.ConfirmOrder(context.Background(), order.ID)
	require.NoError(t, err)
	_, err = env.orders.RegisterPayment(context.Background(), order.ID,
		decimal.NewFromInt(10000), entity.PaymentMethodCard)
	require.NoError(t, err)

	shipped, err := env.orders.ShipOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusShipped, shipped.Status)
}

func TestShipOrder_BorradorNoSePuedeExpedir(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SKU-1")
	env.seedStock(t, productID, "L1", 50)
	order := env.createOrder(t, item(productID, 5, 500))

	_, err := env.orders.ShipOrder(context.Background(), order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// ── Cancelación ───────────────────────────────────────────────────────────────

// TestCancelOrder_SueltaReservasSinReponer cancelar tras confirmar libera las
// referencias de lote; como confirmar nunca descontó, no hay nada que reponer.
func TestCancelOrder_SueltaReservasSinReponer(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SKU-1")
	batch := env.seedStock(t, productID, "L1", 50)
	order := env.createOrder(t, item(productID, 20, 1200))

	_, err := env.orders.ConfirmOrder(context.Background(), order.ID)
	require.NoError(t, err)

	cancelled, err := env.orders.CancelOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, int64(50), env.remaining(t, batch.ID))

	refreshed, err := env.orders.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	for _, it := range refreshed.Items {
		assert.Nil(t, it.BatchID, "las líneas quedan sin lote")
	}

	// El lote vuelve a estar disponible para otros pedidos.
	other := env.createOrder(t, item(productID, 50, 1200))
	_, err = env.orders.ConfirmOrder(context.Background(), other.ID)
	assert.NoError(t, err)
}

func TestCancelOrder_Idempotente(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SKU-1")
	order := env.createOrder(t, item(productID, 1, 100))

	_, err := env.orders.CancelOrder(context.Background(), order.ID)
	require.NoError(t, err)
	again, err := env.orders.CancelOrder(context.Background(), order.ID)
	require.NoError(t, err, "cancelar dos veces no es error")
	assert.Equal(t, entity.OrderStatusCancelled, again.Status)
}

func TestCancelOrder_ExpedidoNoSeCancela(t *testing.T) {
	env := newTestEnv(t)
	productID := env.seedProduct(t, "SKU-1")
	env.seedStock(t, productID, "L1", 50)
	order := env.createOrder(t, item(productID, 5, 500))

	_, err := env.orders.ConfirmOrder(context.Background(), order.ID)
	require.NoError(t, err)
	_, err = env.orders.ShipOrder(context.Background(), order.ID)
	require.NoError(t, err)

	_, err = env.orders.CancelOrder(context.Background(), order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
