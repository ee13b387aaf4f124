package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tindahan/pos-api/internal/application/auth"
	"github.com/tindahan/pos-api/internal/application/credit"
	"github.com/tindahan/pos-api/internal/application/purchasing"
	"github.com/tindahan/pos-api/internal/application/sales"
	"github.com/tindahan/pos-api/internal/application/shifts"
	"github.com/tindahan/pos-api/internal/application/usecase"
	"github.com/tindahan/pos-api/internal/domain/entity"
	"github.com/tindahan/pos-api/internal/infrastructure/ws"
)

// RouterDeps dependencies for the router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ProductUC   *usecase.ProductUseCase
	CustomerUC  *usecase.CustomerUseCase
	DashboardUC *usecase.DashboardUseCase
	CreateSale  *sales.CreateSaleUseCase
	ReceiptUC   *sales.ReceiptUseCase
	PurchaseUC  *purchasing.CreatePurchaseUseCase
	PaymentUC   *credit.ApplyPaymentUseCase
	ShiftUC     *shifts.ShiftUseCase
	Hub         *ws.Hub
	JWTSecret   string
}

// Router registers the API routes.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth: login is public, registration is an admin operation.
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/register",
		AuthMiddleware(deps.JWTSecret), RequireRole(entity.RoleAdmin), authHandler.Register)

	// Everything below requires a Bearer token.
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/search", productHandler.Search)
	products.Get("/low-stock", productHandler.LowStock)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	customers := protected.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	paymentHandler := NewPaymentHandler(deps.PaymentUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Get("/:customerId/payments", paymentHandler.ListByCustomer)

	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.CreateSale, deps.ReceiptUC)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/receipt", saleHandler.Receipt)

	purchases := protected.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.PurchaseUC)
	purchases.Post("/", purchaseHandler.Create)
	purchases.Get("/", purchaseHandler.List)
	purchases.Get("/:id", purchaseHandler.GetByID)
	purchases.Post("/items/:itemId/apply", purchaseHandler.ApplyItem)

	payments := protected.Group("/payments")
	payments.Post("/", paymentHandler.Create)

	shiftsGroup := protected.Group("/shifts")
	shiftHandler := NewShiftHandler(deps.ShiftUC)
	shiftsGroup.Post("/open", shiftHandler.Open)
	shiftsGroup.Get("/current", shiftHandler.Current)
	shiftsGroup.Post("/:id/close", shiftHandler.Close)
	shiftsGroup.Get("/:id/summary", shiftHandler.Summary)

	dashboard := protected.Group("/dashboard")
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dashboard.Get("/stats", dashboardHandler.Stats)

	// Change notification fan-out.
	app.Use("/ws", WSUpgrade(deps.JWTSecret))
	app.Get("/ws", WSHandler(deps.Hub))
}
