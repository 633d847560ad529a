package inventory

import (
	"sort"

	"github.com/Brokewala/gestion-stock-aldin/internal/domain/entity"
)

// PickBatch selecciona el lote FIFO-por-vencimiento capaz de cubrir la cantidad
// pedida: vence-primero gana; lotes sin fecha de vencimiento solo se consideran
// después de todos los fechados; a igualdad decide la fecha de recepción más
// antigua. Retorna nil si ningún lote alcanza. Operación de solo lectura.
func PickBatch(batches []*entity.Batch, quantity int64) *entity.Batch {
	candidates := make([]*entity.Batch, 0, len(batches))
	for _, b := range batches {
		if b.RemainingQty >= quantity {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return batchBefore(candidates[i], candidates[j])
	})
	return candidates[0]
}

// batchBefore implementa el orden (expiry asc, nulls al final, received_at asc).
func batchBefore(a, b *entity.Batch) bool {
	switch {
	case a.ExpiryDate == nil && b.ExpiryDate == nil:
		return a.ReceivedAt.Before(b.ReceivedAt)
	case a.ExpiryDate == nil:
		return false
	case b.ExpiryDate == nil:
		return true
	case a.ExpiryDate.Equal(*b.ExpiryDate):
		return a.ReceivedAt.Before(b.ReceivedAt)
	default:
		return a.ExpiryDate.Before(*b.ExpiryDate)
	}
}

// PickAvailable es la variante usada al confirmar pedidos: descuenta de cada
// lote la cantidad ya retenida por reservas activas (líneas de pedidos
// CONFIRMED/PAID que referencian el lote) antes de comparar. La retención es
// blanda: remaining_qty no cambia al confirmar, pero dos pedidos no pueden
// reservar juntos más de lo que el lote puede cubrir.
func PickAvailable(batches []*entity.Batch, reserved map[string]int64, quantity int64) *entity.Batch {
	candidates := make([]*entity.Batch, 0, len(batches))
	for _, b := range batches {
		if b.RemainingQty-reserved[b.ID] >= quantity {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return batchBefore(candidates[i], candidates[j])
	})
	return candidates[0]
}
