package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto (SKU) del catálogo con sus umbrales de reposición.
// RemainingStock es un agregado materializado: la suma de remaining_qty de todos sus
// lotes. Solo el motor de movimientos lo escribe (paso de recálculo); nunca los callers.
type Product struct {
	ID             string
	SKU            string // único
	Name           string
	BrandID        string
	CategoryID     string
	Unit           string // ej: lata, pack
	Description    string
	Price          decimal.Decimal // precio de venta sugerido
	IsActive       bool
	ReorderLevel   int64 // umbral de alerta
	ReorderQty     int64 // cantidad sugerida de reposición
	RemainingStock int64 // derivado, solo lo escribe el recálculo
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsBelowReorder indica si el stock agregado está en o bajo el umbral configurado.
func (p *Product) IsBelowReorder() bool {
	return p.RemainingStock <= p.ReorderLevel
}
