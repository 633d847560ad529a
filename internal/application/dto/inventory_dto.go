package dto

import "time"

// ReceiptItemRequest artículo de una recepción de compra.
type ReceiptItemRequest struct {
	ProductID  string     `json:"product_id"`
	Quantity   int64      `json:"quantity"`
	BatchCode  string     `json:"batch_code,omitempty"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
}

// ReceiptRequest body para POST /api/inventory/receipts.
type ReceiptRequest struct {
	SupplierName string               `json:"supplier_name"`
	WarehouseID  string               `json:"warehouse_id"`
	Items        []ReceiptItemRequest `json:"items"`
	CreatedBy    string               `json:"created_by,omitempty"`
}

// TransferRequest body para POST /api/inventory/transfers.
type TransferRequest struct {
	ProductID       string `json:"product_id"`
	Quantity        int64  `json:"quantity"`
	FromWarehouseID string `json:"from_warehouse_id"`
	ToWarehouseID   string `json:"to_warehouse_id"`
	BatchID         string `json:"batch_id,omitempty"`
	CreatedBy       string `json:"created_by,omitempty"`
}

// AdjustmentRequest body para POST /api/inventory/adjustments.
// Quantity negativa descuenta; positiva suma.
type AdjustmentRequest struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int64  `json:"quantity"`
	Reason      string `json:"reason"`
	BatchID     string `json:"batch_id,omitempty"`
	CreatedBy   string `json:"created_by,omitempty"`
}

// BatchResponse representación HTTP de un lote.
type BatchResponse struct {
	ID           string     `json:"id"`
	ProductID    string     `json:"product_id"`
	WarehouseID  string     `json:"warehouse_id"`
	BatchCode    string     `json:"batch_code"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
	InitialQty   int64      `json:"initial_qty"`
	RemainingQty int64      `json:"remaining_qty"`
	ReceivedAt   time.Time  `json:"received_at"`
}

// MovementResponse línea del libro de movimientos.
type MovementResponse struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"product_id"`
	BatchID         string    `json:"batch_id"`
	Type            string    `json:"type"`
	Quantity        int64     `json:"quantity"`
	FromWarehouseID string    `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string    `json:"to_warehouse_id,omitempty"`
	Reason          string    `json:"reason,omitempty"`
	CreatedBy       string    `json:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// WarehouseStockResponse stock de un producto en una bodega.
type WarehouseStockResponse struct {
	WarehouseID   string `json:"warehouse_id"`
	WarehouseName string `json:"warehouse_name"`
	TotalQty      int64  `json:"total_qty"`
}
