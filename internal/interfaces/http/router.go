package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/pos-api/internal/application/catalog"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/observability"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CatalogUC  *catalog.UseCase
	LedgerUC   *inventory.LedgerUseCase
	LowStockUC *inventory.LowStockUseCase
	CheckoutUC *sales.CheckoutUseCase
	OrdersUC   *sales.OrderQueryUseCase
	ReceiptUC  *sales.ReceiptUseCase
	Metrics    *observability.Metrics
	JWTSecret  string
}

// Router registra /metrics y las rutas de la API.
// Los casos de uso vuelven a verificar el rol; RequireRole corta antes de leer el body.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)
	cashier := RequireRole(entity.RoleAdmin, entity.RoleCashier)

	productHandler := NewProductHandler(deps.CatalogUC)
	products := api.Group("/products")
	products.Get("/", productHandler.List)
	products.Post("/", adminOnly, productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Deactivate)
	products.Post("/:id/barcodes", adminOnly, productHandler.AddBarcode)
	api.Get("/barcodes/:code", productHandler.FindByBarcode)

	inventoryHandler := NewInventoryHandler(deps.LedgerUC, deps.LowStockUC)
	inv := api.Group("/inventory")
	inv.Post("/in", adminOnly, inventoryHandler.StockIn)
	inv.Get("/low-stock", inventoryHandler.LowStock)
	inv.Get("/:productId/movements", inventoryHandler.Movements)
	inv.Get("/:productId/reconcile", adminOnly, inventoryHandler.Reconcile)

	salesHandler := NewSalesHandler(deps.CheckoutUC, deps.OrdersUC, deps.ReceiptUC)
	api.Post("/checkout", cashier, salesHandler.Checkout)
	orders := api.Group("/orders")
	orders.Get("/", salesHandler.ListOrders)
	orders.Get("/:id", salesHandler.GetOrder)
	orders.Get("/:id/receipt", salesHandler.Receipt)
}
