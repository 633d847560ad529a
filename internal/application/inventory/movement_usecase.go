package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Brokewala/gestion-stock-aldin/internal/domain"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
	dominv "github.com/Brokewala/gestion-stock-aldin/internal/domain/inventory"
	"github.com/Brokewala/gestion-stock-aldin/internal/domain/repository"
	"github.com/Brokewala/gestion-stock-aldin/pkg/logger"
)

// MovementUseCase es el motor de movimientos de stock. Registra movimientos
// IN/OUT/TRANSFER/ADJUSTMENT y los aplica de forma transaccional con bloqueo de
// fila (SELECT FOR UPDATE). Toda mutación de cantidades pasa por applyMovement,
// que termina recalculando el stock agregado del producto.
type MovementUseCase struct {
	txRunner      TxRunner
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	log           *logger.Logger
}

// NewMovementUseCase construye el motor de movimientos.
func NewMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	log *logger.Logger,
) *MovementUseCase {
	return &MovementUseCase{
		txRunner:      txRunner,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		log:           log,
	}
}

// ReceiveItemInput describe un artículo de una recepción de compra.
type ReceiveItemInput struct {
	ProductID  string
	Quantity   int64
	BatchCode  string     // vacío = se genera {sku}-{timestamp}
	ExpiryDate *time.Time // nil = sin vencimiento
}

// ReceivePurchaseInput entrada de ReceivePurchase.
type ReceivePurchaseInput struct {
	SupplierName string
	WarehouseID  string
	Items        []ReceiveItemInput
	Actor        string
}

// ReceivePurchase registra una recepción de proveedor: crea un lote vacío por
// artículo y registra un movimiento IN hacia la bodega; aplicarlo incrementa
// initial_qty y remaining_qty del lote. Todo en una sola transacción.
func (uc *MovementUseCase) ReceivePurchase(ctx context.Context, input ReceivePurchaseInput) ([]*entity.Batch, error) {
	if len(input.Items) == 0 {
		return nil, domain.ErrValidation
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, domain.ErrValidation
		}
	}
	warehouse, err := uc.warehouseRepo.GetByID(input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	var created []*entity.Batch
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		batchRepo repository.BatchRepository,
		productRepo repository.ProductRepository,
	) error {
		for _, item := range input.Items {
			product, err := productRepo.GetByID(item.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
			code := item.BatchCode
			if code == "" {
				code = dominv.GenerateBatchCode(product.SKU, now)
			}
			batch := &entity.Batch{
				ID:          uuid.New().String(),
				ProductID:   product.ID,
				WarehouseID: input.WarehouseID,
				BatchCode:   code,
				ExpiryDate:  item.ExpiryDate,
				ReceivedAt:  now,
			}
			if err := batchRepo.Create(batch); err != nil {
				return err
			}
			mov := &entity.StockMovement{
				ID:            uuid.New().String(),
				ProductID:     product.ID,
				BatchID:       batch.ID,
				Type:          entity.MovementTypeIN,
				Quantity:      item.Quantity,
				ToWarehouseID: input.WarehouseID,
				Reason:        fmt.Sprintf("Recepción %s", input.SupplierName),
				CreatedBy:     input.Actor,
				CreatedAt:     now,
			}
			if err := uc.record(movRepo, batchRepo, productRepo, mov); err != nil {
				return err
			}
			refreshed, err := batchRepo.GetByID(batch.ID)
			if err != nil {
				return err
			}
			created = append(created, refreshed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// TransferInput entrada de TransferStock.
type TransferInput struct {
	ProductID       string
	Quantity        int64
	FromWarehouseID string
	ToWarehouseID   string
	BatchID         string // vacío = selección FIFO en la bodega origen
	Actor           string
}

// TransferStock mueve cantidad de una bodega a otra. Sin lote explícito
// selecciona uno FIFO-por-vencimiento en la bodega origen; aplicar el
// movimiento descuenta del lote origen y acredita en el lote destino
// (get-or-create por producto+código+bodega destino).
func (uc *MovementUseCase) TransferStock(ctx context.Context, input TransferInput) error {
	if input.Quantity <= 0 || input.FromWarehouseID == input.ToWarehouseID {
		return domain.ErrValidation
	}
	if err := uc.requireWarehouses(input.FromWarehouseID, input.ToWarehouseID); err != nil {
		return err
	}

	now := time.Now()
	return uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		batchRepo repository.BatchRepository,
		productRepo repository.ProductRepository,
	) error {
		batch, err := uc.resolveBatch(batchRepo, input.BatchID, input.ProductID, input.FromWarehouseID, input.Quantity)
		if err != nil {
			return err
		}
		if batch.RemainingQty < input.Quantity {
			return domain.ErrInsufficientStock
		}
		mov := &entity.StockMovement{
			ID:              uuid.New().String(),
			ProductID:       input.ProductID,
			BatchID:         batch.ID,
			Type:            entity.MovementTypeTRANSFER,
			Quantity:        input.Quantity,
			FromWarehouseID: input.FromWarehouseID,
			ToWarehouseID:   input.ToWarehouseID,
			Reason:          "Transferencia entre bodegas",
			CreatedBy:       input.Actor,
			CreatedAt:       now,
		}
		return uc.record(movRepo, batchRepo, productRepo, mov)
	})
}

// AdjustInput entrada de AdjustStock. Quantity puede ser negativa.
type AdjustInput struct {
	ProductID   string
	WarehouseID string
	Quantity    int64
	Reason      string
	BatchID     string // vacío = lote FIFO de la bodega, o uno nuevo vacío
	Actor       string
}

// AdjustStock registra un ajuste de inventario físico. Positivo suma como
// entrada (initial y remaining); negativo descuenta solo remaining y falla con
// stock insuficiente si quedaría bajo cero. Retorna el lote ajustado.
func (uc *MovementUseCase) AdjustStock(ctx context.Context, input AdjustInput) (*entity.Batch, error) {
	if input.Quantity == 0 {
		return nil, domain.ErrValidation
	}
	warehouse, err := uc.warehouseRepo.GetByID(input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	var adjusted *entity.Batch
	err = uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		batchRepo repository.BatchRepository,
		productRepo repository.ProductRepository,
	) error {
		var batch *entity.Batch
		if input.BatchID != "" {
			batch, err = batchRepo.GetForUpdate(input.BatchID)
			if err != nil {
				return err
			}
			if batch == nil {
				return domain.ErrNotFound
			}
			if batch.ProductID != input.ProductID || batch.WarehouseID != input.WarehouseID {
				return domain.ErrValidation
			}
		} else {
			batch, err = batchRepo.PickForUpdate(input.ProductID, input.WarehouseID, 1)
			if err != nil {
				return err
			}
			if batch == nil {
				product, err := productRepo.GetByID(input.ProductID)
				if err != nil {
					return err
				}
				if product == nil {
					return domain.ErrNotFound
				}
				batch = &entity.Batch{
					ID:          uuid.New().String(),
					ProductID:   product.ID,
					WarehouseID: input.WarehouseID,
					BatchCode:   dominv.GenerateBatchCode(product.SKU, now),
					ReceivedAt:  now,
				}
				if err := batchRepo.Create(batch); err != nil {
					return err
				}
			}
		}

		qty := input.Quantity
		mov := &entity.StockMovement{
			ID:        uuid.New().String(),
			ProductID: input.ProductID,
			BatchID:   batch.ID,
			Type:      entity.MovementTypeADJUSTMENT,
			Reason:    input.Reason,
			CreatedBy: input.Actor,
			CreatedAt: now,
		}
		if qty >= 0 {
			mov.Quantity = qty
			mov.ToWarehouseID = input.WarehouseID
		} else {
			mov.Quantity = -qty
			mov.FromWarehouseID = input.WarehouseID
			if batch.RemainingQty < -qty {
				return domain.ErrInsufficientStock
			}
		}
		if err := uc.record(movRepo, batchRepo, productRepo, mov); err != nil {
			return err
		}
		adjusted, err = batchRepo.GetByID(batch.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return adjusted, nil
}

// ShipBatchInTx registra la salida definitiva (OUT) de una expedición usando los
// repositorios del caller, dentro de su misma transacción. Lo invoca el caso de
// uso de pedidos al expedir; falla con stock insuficiente si el lote no alcanza.
func (uc *MovementUseCase) ShipBatchInTx(
	movRepo repository.StockMovementRepository,
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
	productID, batchID string,
	quantity int64,
	warehouseID, reason, actor string,
	now time.Time,
) error {
	batch, err := batchRepo.GetForUpdate(batchID)
	if err != nil {
		return err
	}
	if batch == nil {
		return domain.ErrNotFound
	}
	if batch.RemainingQty < quantity {
		return domain.ErrInsufficientStock
	}
	mov := &entity.StockMovement{
		ID:              uuid.New().String(),
		ProductID:       productID,
		BatchID:         batch.ID,
		Type:            entity.MovementTypeOUT,
		Quantity:        quantity,
		FromWarehouseID: warehouseID,
		Reason:          reason,
		CreatedBy:       actor,
		CreatedAt:       now,
	}
	return uc.record(movRepo, batchRepo, productRepo, mov)
}

// resolveBatch obtiene y bloquea el lote explícito, o selecciona uno FIFO en la
// bodega origen. El lote explícito debe pertenecer al producto y a la bodega
// origen declarados. ErrInsufficientStock si la selección no encuentra candidato.
func (uc *MovementUseCase) resolveBatch(
	batchRepo repository.BatchRepository,
	batchID, productID, warehouseID string,
	qty int64,
) (*entity.Batch, error) {
	if batchID != "" {
		batch, err := batchRepo.GetForUpdate(batchID)
		if err != nil {
			return nil, err
		}
		if batch == nil {
			return nil, domain.ErrNotFound
		}
		if batch.ProductID != productID || batch.WarehouseID != warehouseID {
			return nil, domain.ErrValidation
		}
		return batch, nil
	}
	batch, err := batchRepo.PickForUpdate(productID, warehouseID, qty)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrInsufficientStock
	}
	return batch, nil
}

// record valida el movimiento, lo persiste en el libro y lo aplica.
func (uc *MovementUseCase) record(
	movRepo repository.StockMovementRepository,
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
	mov *entity.StockMovement,
) error {
	if err := mov.Validate(); err != nil {
		return err
	}
	if err := movRepo.Create(mov); err != nil {
		return err
	}
	return uc.applyMovement(batchRepo, productRepo, mov)
}

// applyMovement es el punto único de mutación de cantidades: aplica el
// movimiento sobre el lote según su tipo y recalcula el stock agregado del
// producto. Ningún otro camino escribe cantidades de lote ni de producto.
func (uc *MovementUseCase) applyMovement(
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
	mov *entity.StockMovement,
) error {
	batch, err := batchRepo.GetForUpdate(mov.BatchID)
	if err != nil {
		return err
	}
	if batch == nil {
		return domain.ErrNotFound
	}

	switch mov.Type {
	case entity.MovementTypeIN:
		batch.InitialQty += mov.Quantity
		batch.RemainingQty += mov.Quantity
		if err := uc.saveBatch(batchRepo, batch); err != nil {
			return err
		}

	case entity.MovementTypeOUT:
		if batch.RemainingQty < mov.Quantity {
			return domain.ErrInsufficientStock
		}
		batch.RemainingQty -= mov.Quantity
		if err := uc.saveBatch(batchRepo, batch); err != nil {
			return err
		}

	case entity.MovementTypeTRANSFER:
		if batch.RemainingQty < mov.Quantity {
			return domain.ErrInsufficientStock
		}
		batch.RemainingQty -= mov.Quantity
		if err := uc.saveBatch(batchRepo, batch); err != nil {
			return err
		}
		dest, err := batchRepo.GetOrCreate(mov.ProductID, batch.BatchCode, mov.ToWarehouseID, batch)
		if err != nil {
			return err
		}
		dest.InitialQty += mov.Quantity
		dest.RemainingQty += mov.Quantity
		if err := uc.saveBatch(batchRepo, dest); err != nil {
			return err
		}

	case entity.MovementTypeADJUSTMENT:
		if mov.ToWarehouseID != "" {
			batch.InitialQty += mov.Quantity
			batch.RemainingQty += mov.Quantity
		} else {
			if batch.RemainingQty < mov.Quantity {
				return domain.ErrInsufficientStock
			}
			batch.RemainingQty -= mov.Quantity
		}
		if err := uc.saveBatch(batchRepo, batch); err != nil {
			return err
		}

	default:
		return domain.ErrValidation
	}

	return uc.recomputeProductStock(batchRepo, productRepo, mov.ProductID)
}

// saveBatch valida los invariantes del lote antes de persistirlo.
func (uc *MovementUseCase) saveBatch(batchRepo repository.BatchRepository, batch *entity.Batch) error {
	if err := batch.Validate(); err != nil {
		return err
	}
	return batchRepo.Update(batch)
}

// recomputeProductStock rehace el agregado remaining_stock del producto como la
// suma de remaining_qty de todos sus lotes, y advierte si queda bajo el umbral
// de reposición.
func (uc *MovementUseCase) recomputeProductStock(
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
	productID string,
) error {
	total, err := batchRepo.SumRemainingByProduct(productID)
	if err != nil {
		return err
	}
	if err := productRepo.UpdateRemainingStock(productID, total); err != nil {
		return err
	}
	product, err := productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product != nil && product.IsBelowReorder() {
		uc.log.Warn().
			Str("sku", product.SKU).
			Int64("remaining_stock", product.RemainingStock).
			Int64("reorder_level", product.ReorderLevel).
			Msg("producto bajo el umbral de reposición")
	}
	return nil
}

// requireWarehouses verifica que ambas bodegas existan.
func (uc *MovementUseCase) requireWarehouses(ids ...string) error {
	for _, id := range ids {
		wh, err := uc.warehouseRepo.GetByID(id)
		if err != nil {
			return err
		}
		if wh == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}
