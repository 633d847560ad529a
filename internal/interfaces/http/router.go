package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Brokewala/gestion-stock-aldin/internal/application/catalog"
	"github.com/Brokewala/gestion-stock-aldin/internal/application/inventory"
	"github.com/Brokewala/gestion-stock-aldin/internal/application/sales"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC    *catalog.ProductUseCase
	WarehouseUC  *catalog.WarehouseUseCase
	CustomerUC   *catalog.CustomerUseCase
	MovementUC   *inventory.MovementUseCase
	StockQueryUC *inventory.StockQueryUseCase
	OrderUC      *sales.OrderUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Catálogo
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)

	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)

	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)

	// Movimientos de inventario
	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.MovementUC)
	invGroup.Post("/receipts", inventoryHandler.Receive)
	invGroup.Post("/transfers", inventoryHandler.Transfer)
	invGroup.Post("/adjustments", inventoryHandler.Adjust)

	// Vistas de stock
	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.StockQueryUC)
	stock.Get("/low", stockHandler.LowStock)
	stock.Get("/near-expiry", stockHandler.NearExpiry)
	stock.Get("/products/:id/warehouses", stockHandler.ByWarehouse)
	stock.Get("/products/:id/movements", stockHandler.Movements)

	// Pedidos
	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Post("/:id/items", orderHandler.AddItem)
	orders.Delete("/:id/items/:itemId", orderHandler.RemoveItem)
	orders.Post("/:id/confirm", orderHandler.Confirm)
	orders.Post("/:id/ship", orderHandler.Ship)
	orders.Post("/:id/cancel", orderHandler.Cancel)
	orders.Post("/:id/payments", orderHandler.RegisterPayment)
}
