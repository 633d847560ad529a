package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Brokewala/gestion-stock-aldin/internal/application/inventory"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
	dominv "github.com/Brokewala/gestion-stock-aldin/internal/domain/inventory"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/repository"
	"github.com/Brokewala/gestion-stock-aldin/pkg/logger"
)

// OrderUseCase es la máquina de estados del pedido:
// DRAFT → CONFIRMED → PAID → SHIPPED, con rama terminal CANCELLED.
// Confirma reservando lotes (retención blanda, por referencia), expide
// descontando stock vía el motor de movimientos y cancela soltando reservas.
// Cada transición es una transacción: todo o nada.
type OrderUseCase struct {
	txRunner      TxRunner
	sequencer     Sequencer
	movementUC    *inventory.MovementUseCase
	customerRepo  repository.CustomerRepository
	warehouseRepo repository.WarehouseRepository
	productRepo   repository.ProductRepository
	log           *logger.Logger
}

// NewOrderUseCase construye la máquina de estados de pedidos.
func NewOrderUseCase(
	txRunner TxRunner,
	sequencer Sequencer,
	movementUC *inventory.MovementUseCase,
	customerRepo repository.CustomerRepository,
	warehouseRepo repository.WarehouseRepository,
	productRepo repository.ProductRepository,
	log *logger.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		txRunner:      txRunner,
		sequencer:     sequencer,
		movementUC:    movementUC,
		customerRepo:  customerRepo,
		warehouseRepo: warehouseRepo,
		productRepo:   productRepo,
		log:           log,
	}
}

// OrderItemInput línea de un pedido nuevo.
type OrderItemInput struct {
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// CreateOrderInput entrada de CreateOrder.
type CreateOrderInput struct {
	CustomerID  string
	WarehouseID string
	Items       []OrderItemInput
	Notes       string
}

// CreateOrder crea un pedido en DRAFT con código único generado, sus líneas sin
// lote y el total recalculado como suma de los line_total.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, input CreateOrderInput) (*entity.Order, error) {
	if len(input.Items) == 0 {
		return nil, domain.ErrValidation
	}
	customer, err := uc.customerRepo.GetByID(input.CustomerID)
	if err != nil {
		return nil, err
	}
	warehouse, err := uc.warehouseRepo.GetByID(input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if customer == nil || warehouse == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	seq, err := uc.sequencer.Next(ctx, dominv.OrderDayKey(now))
	if err != nil {
		return nil, fmt.Errorf("secuencia de código de pedido: %w", err)
	}

	order := &entity.Order{
		ID:          uuid.New().String(),
		Code:        dominv.FormatOrderCode(now, seq),
		CustomerID:  input.CustomerID,
		WarehouseID: input.WarehouseID,
		Status:      entity.OrderStatusDraft,
		TotalAmount: decimal.Zero,
		Notes:       input.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = uc.txRunner.RunSales(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.PaymentRepository,
		_ repository.StockMovementRepository,
		_ repository.BatchRepository,
		productRepo repository.ProductRepository,
	) error {
		if err := orderRepo.Create(order); err != nil {
			return err
		}
		for _, in := range input.Items {
			product, err := productRepo.GetByID(in.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
			item := &entity.OrderItem{
				ID:        uuid.New().String(),
				OrderID:   order.ID,
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				UnitPrice: in.UnitPrice,
			}
			if err := item.Validate(); err != nil {
				return err
			}
			item.ComputeLineTotal()
			if err := orderRepo.CreateItem(item); err != nil {
				return err
			}
			order.Items = append(order.Items, item)
		}
		return uc.refreshTotal(orderRepo, order, now)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("code", order.Code).Int("items", len(order.Items)).Msg("pedido creado")
	return order, nil
}

// AddItem agrega una línea a un pedido en borrador y recalcula el total.
func (uc *OrderUseCase) AddItem(ctx context.Context, orderID string, in OrderItemInput) (*entity.Order, error) {
	var order *entity.Order
	err := uc.txRunner.RunSales(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.PaymentRepository,
		_ repository.StockMovementRepository,
		_ repository.BatchRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		order, err = uc.editableOrder(orderRepo, orderID)
		if err != nil {
			return err
		}
		product, err := productRepo.GetByID(in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		item := &entity.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
		}
		if err := item.Validate(); err != nil {
			return err
		}
		item.ComputeLineTotal()
		if err := orderRepo.CreateItem(item); err != nil {
			return err
		}
		return uc.refreshTotal(orderRepo, order, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// RemoveItem elimina una línea de un pedido en borrador y recalcula el total.
func (uc *OrderUseCase) RemoveItem(ctx context.Context, orderID, itemID string) (*entity.Order, error) {
	var order *entity.Order
	err := uc.txRunner.RunSales(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.PaymentRepository,
		_ repository.StockMovementRepository,
		_ repository.BatchRepository,
		_ repository.ProductRepository,
	) error {
		var err error
		order, err = uc.editableOrder(orderRepo, orderID)
		if err != nil {
			return err
		}
		items, err := orderRepo.ListItems(orderID)
		if err != nil {
			return err
		}
		found := false
		for _, item := range items {
			if item.ID == itemID {
				found = true
				break
			}
		}
		if !found {
			return domain.ErrNotFound
		}
		if err := orderRepo.DeleteItem(itemID); err != nil {
			return err
		}
		return uc.refreshTotal(orderRepo, order, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ConfirmOrder reserva un lote por línea (FIFO-por-vencimiento, restringido a la
// bodega del pedido, neto de reservas activas de otros pedidos) y pasa a
// CONFIRMED. Dos líneas del mismo producto reciben lotes distintos: la clave
// única (pedido, producto, lote) no permite compartirlo. Si alguna línea no
// alcanza, la transacción se revierte completa: ninguna línea queda con lote
// asignado.
func (uc *OrderUseCase) ConfirmOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	var order *entity.Order
	err := uc.txRunner.RunSales(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.PaymentRepository,
		_ repository.StockMovementRepository,
		batchRepo repository.BatchRepository,
		_ repository.ProductRepository,
	) error {
		var err error
		order, err = uc.lockedOrder(orderRepo, orderID)
		if err != nil {
			return err
		}
		if order.Status != entity.OrderStatusDraft {
			return domain.ErrInvalidTransition
		}
		items, err := orderRepo.ListItems(orderID)
		if err != nil {
			return err
		}
		claimed := make(map[string][]string) // producto → lotes ya tomados por este pedido
		for _, item := range items {
			batch, err := batchRepo.PickAvailableForUpdate(item.ProductID, order.WarehouseID, item.Quantity, claimed[item.ProductID])
			if err != nil {
				return err
			}
			if batch == nil {
				return domain.ErrInsufficientStock
			}
			if err := orderRepo.UpdateItemBatch(item.ID, &batch.ID); err != nil {
				return err
			}
			item.BatchID = &batch.ID
			claimed[item.ProductID] = append(claimed[item.ProductID], batch.ID)
		}
		order.Items = items
		return uc.setStatus(orderRepo, order, entity.OrderStatusConfirmed, time.Now())
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("code", order.Code).Msg("pedido confirmado")
	return order, nil
}

// ShipOrder expide un pedido CONFIRMED o PAID: cada línea debe tener lote
// reservado; el descuento real de stock ocurre aquí, vía un movimiento OUT por
// línea dentro de la misma transacción. Pasa a SHIPPED (terminal).
func (uc *OrderUseCase) ShipOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	now := time.Now()
	var order *entity.Order
	err := uc.txRunner.RunSales(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.PaymentRepository,
		movRepo repository.StockMovementRepository,
		batchRepo repository.BatchRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		order, err = uc.lockedOrder(orderRepo, orderID)
		if err != nil {
			return err
		}
		if !order.CanShip() {
			return domain.ErrInvalidTransition
		}
		items, err := orderRepo.ListItems(orderID)
		if err != nil {
			return err
		}
		reason := fmt.Sprintf("Expedición pedido %s", order.Code)
		for _, item := range items {
			if item.BatchID == nil {
				return domain.ErrMissingReservation
			}
			err := uc.movementUC.ShipBatchInTx(
				movRepo, batchRepo, productRepo,
				item.ProductID, *item.BatchID, item.Quantity,
				order.WarehouseID, reason, "", now,
			)
			if err != nil {
				return err
			}
		}
		order.Items = items
		return uc.setStatus(orderRepo, order, entity.OrderStatusShipped, now)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("code", order.Code).Msg("pedido expedido")
	return order, nil
}

// CancelOrder cancela un pedido no expedido soltando las reservas de sus líneas.
// La retención era por referencia: soltar no repone remaining_qty porque
// confirmar nunca lo descontó. Idempotente si ya está cancelado; un pedido
// expedido no se puede cancelar.
func (uc *OrderUseCase) CancelOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	var order *entity.Order
	err := uc.txRunner.RunSales(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.PaymentRepository,
		_ repository.StockMovementRepository,
		_ repository.BatchRepository,
		_ repository.ProductRepository,
	) error {
		var err error
		order, err = uc.lockedOrder(orderRepo, orderID)
		if err != nil {
			return err
		}
		if order.Status == entity.OrderStatusCancelled {
			return nil
		}
		if order.Status == entity.OrderStatusShipped {
			return domain.ErrInvalidTransition
		}
		if err := orderRepo.ClearItemBatches(orderID); err != nil {
			return err
		}
		return uc.setStatus(orderRepo, order, entity.OrderStatusCancelled, time.Now())
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// RegisterPayment registra un abono y, si el acumulado alcanza el total y el
// pedido está CONFIRMED o PAID, lo pasa a PAID (idempotente si ya está PAID).
func (uc *OrderUseCase) RegisterPayment(ctx context.Context, orderID string, amount decimal.Decimal, method string) (*entity.Order, error) {
	payment := &entity.Payment{
		ID:      uuid.New().String(),
		OrderID: orderID,
		Amount:  amount,
		Method:  method,
		PaidAt:  time.Now(),
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	var order *entity.Order
	err := uc.txRunner.RunSales(ctx, func(
		orderRepo repository.OrderRepository,
		paymentRepo repository.PaymentRepository,
		_ repository.StockMovementRepository,
		_ repository.BatchRepository,
		_ repository.ProductRepository,
	) error {
		var err error
		order, err = uc.lockedOrder(orderRepo, orderID)
		if err != nil {
			return err
		}
		if err := paymentRepo.Create(payment); err != nil {
			return err
		}
		paid, err := paymentRepo.SumByOrder(orderID)
		if err != nil {
			return err
		}
		if paid.GreaterThanOrEqual(order.TotalAmount) &&
			(order.Status == entity.OrderStatusConfirmed || order.Status == entity.OrderStatusPaid) {
			return uc.setStatus(orderRepo, order, entity.OrderStatusPaid, time.Now())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders lista los pedidos más recientes (sin líneas).
func (uc *OrderUseCase) ListOrders(ctx context.Context, limit, offset int) ([]*entity.Order, error) {
	var orders []*entity.Order
	err := uc.txRunner.RunSales(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.PaymentRepository,
		_ repository.StockMovementRepository,
		_ repository.BatchRepository,
		_ repository.ProductRepository,
	) error {
		var err error
		orders, err = orderRepo.List(limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder carga un pedido con sus líneas.
func (uc *OrderUseCase) GetOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	var order *entity.Order
	err := uc.txRunner.RunSales(ctx, func(
		orderRepo repository.OrderRepository,
		_ repository.PaymentRepository,
		_ repository.StockMovementRepository,
		_ repository.BatchRepository,
		_ repository.ProductRepository,
	) error {
		var err error
		order, err = orderRepo.GetByID(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		order.Items, err = orderRepo.ListItems(orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// lockedOrder obtiene y bloquea el pedido; ErrNotFound si no existe.
func (uc *OrderUseCase) lockedOrder(orderRepo repository.OrderRepository, orderID string) (*entity.Order, error) {
	order, err := orderRepo.GetForUpdate(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// editableOrder obtiene y bloquea el pedido y exige estado borrador.
func (uc *OrderUseCase) editableOrder(orderRepo repository.OrderRepository, orderID string) (*entity.Order, error) {
	order, err := uc.lockedOrder(orderRepo, orderID)
	if err != nil {
		return nil, err
	}
	if !order.IsEditable() {
		return nil, domain.ErrInvalidTransition
	}
	return order, nil
}

// refreshTotal recalcula total_amount como la suma de los line_total vigentes.
// Se invoca explícitamente desde cada camino que crea, modifica o borra líneas.
func (uc *OrderUseCase) refreshTotal(orderRepo repository.OrderRepository, order *entity.Order, at time.Time) error {
	items, err := orderRepo.ListItems(order.ID)
	if err != nil {
		return err
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal)
	}
	order.TotalAmount = total
	order.UpdatedAt = at
	return orderRepo.SetTotal(order.ID, total, at)
}

// setStatus persiste la transición y actualiza la copia en memoria.
func (uc *OrderUseCase) setStatus(orderRepo repository.OrderRepository, order *entity.Order, status string, at time.Time) error {
	if err := orderRepo.SetStatus(order.ID, status, at); err != nil {
		return err
	}
	order.Status = status
	order.UpdatedAt = at
	return nil
}
