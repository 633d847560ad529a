package inventory

import (
	"fmt"
	"time"
)

// GenerateBatchCode genera un código de lote por defecto a partir del SKU y la
// fecha: {sku}-{timestamp}. Se usa cuando la recepción no trae código.
func GenerateBatchCode(sku string, now time.Time) string {
	return fmt.Sprintf("%s-%s", sku, now.Format("20060102150405"))
}

// OrderDayKey es la clave de secuencia diaria para códigos de pedido.
// La secuencia se reinicia cada día.
func OrderDayKey(now time.Time) string {
	return "ord:" + now.Format("20060102")
}

// FormatOrderCode arma el código legible ORD-YYYYMMDD-NNNN a partir del valor
// entregado por el secuenciador atómico del día.
func FormatOrderCode(now time.Time, seq int64) string {
	return fmt.Sprintf("ORD-%s-%04d", now.Format("20060102"), seq)
}
