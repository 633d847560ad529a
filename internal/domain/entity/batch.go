package entity

import (
	"time"

	"github.com/Brokewala/gestion-stock-aldin/internal/domain"
)

// Batch representa un lote físico de un producto en una bodega, con su propia
// fecha de vencimiento y cantidades. Único por (producto, código de lote, bodega).
// Los lotes no se borran en el flujo normal: se quedan en cero.
type Batch struct {
	ID           string
	ProductID    string
	WarehouseID  string
	BatchCode    string
	ExpiryDate   *time.Time // nil = sin vencimiento
	InitialQty   int64
	RemainingQty int64
	ReceivedAt   time.Time
}

// Validate verifica los invariantes de cantidades: 0 <= remaining <= initial.
func (b *Batch) Validate() error {
	if b.RemainingQty < 0 {
		return domain.ErrValidation
	}
	if b.RemainingQty > b.InitialQty {
		return domain.ErrValidation
	}
	return nil
}

// IsNearExpiry retorna true si el lote vence dentro de la ventana indicada.
// Lotes sin fecha de vencimiento nunca están próximos a vencer.
func (b *Batch) IsNearExpiry(now time.Time, days int) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return !b.ExpiryDate.After(now.AddDate(0, 0, days))
}
