package entity

import (
	"time"

	"github.com/Brokewala/gestion-stock-aldin/internal/domain"
)

// Tipos de movimiento de stock.
const (
	MovementTypeIN         = "IN"
	MovementTypeOUT        = "OUT"
	MovementTypeTRANSFER   = "TRANSFER"
	MovementTypeADJUSTMENT = "ADJUSTMENT"
)

// StockMovement es el registro inmutable del libro de movimientos. Aplicarlo es
// el único camino legítimo para alterar cantidades de lote/producto. La cantidad
// es siempre positiva: el sentido lo codifica la presencia de from/to bodega.
type StockMovement struct {
	ID              string
	ProductID       string
	BatchID         string
	Type            string // IN, OUT, TRANSFER, ADJUSTMENT
	Quantity        int64  // siempre > 0
	FromWarehouseID string // requerido en OUT y TRANSFER
	ToWarehouseID   string // requerido en IN y TRANSFER
	Reason          string
	CreatedBy       string
	CreatedAt       time.Time
}

// Validate verifica las reglas estructurales antes de persistir:
// cantidad estrictamente positiva y bodegas requeridas según el tipo.
func (m *StockMovement) Validate() error {
	if m.Quantity <= 0 {
		return domain.ErrValidation
	}
	if m.BatchID == "" || m.ProductID == "" {
		return domain.ErrValidation
	}
	switch m.Type {
	case MovementTypeIN:
		if m.ToWarehouseID == "" {
			return domain.ErrValidation
		}
	case MovementTypeOUT:
		if m.FromWarehouseID == "" {
			return domain.ErrValidation
		}
	case MovementTypeTRANSFER:
		if m.FromWarehouseID == "" || m.ToWarehouseID == "" {
			return domain.ErrValidation
		}
	case MovementTypeADJUSTMENT:
		if m.FromWarehouseID == "" && m.ToWarehouseID == "" {
			return domain.ErrValidation
		}
	default:
		return domain.ErrValidation
	}
	return nil
}
