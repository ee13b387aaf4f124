package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tindahan/pos-api/internal/application/auth"
	"github.com/tindahan/pos-api/internal/application/credit"
	"github.com/tindahan/pos-api/internal/application/notify"
	"github.com/tindahan/pos-api/internal/application/purchasing"
	"github.com/tindahan/pos-api/internal/application/sales"
	"github.com/tindahan/pos-api/internal/application/shifts"
	"github.com/tindahan/pos-api/internal/application/usecase"
	infrapdf "github.com/tindahan/pos-api/internal/infrastructure/pdf"
	"github.com/tindahan/pos-api/internal/infrastructure/postgres"
	infraws "github.com/tindahan/pos-api/internal/infrastructure/ws"
	httpRouter "github.com/tindahan/pos-api/internal/interfaces/http"
	"github.com/tindahan/pos-api/pkg/config"
	"github.com/tindahan/pos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("starting application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	purchaseRepo := postgres.NewPurchaseRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	shiftRepo := postgres.NewShiftRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Change notification fan-out: in-process websocket hub.
	hub := infraws.NewHub(log)
	go hub.Run()
	notifier := notify.NewNotifier(hub, log)

	createSaleUC := sales.NewCreateSaleUseCase(
		txRunner, saleRepo, productRepo, customerRepo, shiftRepo, notifier, log)
	receiptUC := sales.NewReceiptUseCase(
		saleRepo, productRepo, customerRepo, userRepo,
		infrapdf.NewMarotoReceiptGenerator(), cfg.App.Name)
	purchaseUC := purchasing.NewCreatePurchaseUseCase(
		txRunner, purchaseRepo, productRepo, notifier, log)
	paymentUC := credit.NewApplyPaymentUseCase(
		txRunner, customerRepo, paymentRepo, notifier, log)
	shiftUC := shifts.NewShiftUseCase(shiftRepo, saleRepo, paymentRepo, notifier, log)
	productUC := usecase.NewProductUseCase(productRepo)
	customerUC := usecase.NewCustomerUseCase(customerRepo)
	dashboardUC := usecase.NewDashboardUseCase(saleRepo, productRepo)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Tindahan POS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   productUC,
		CustomerUC:  customerUC,
		DashboardUC: dashboardUC,
		CreateSale:  createSaleUC,
		ReceiptUC:   receiptUC,
		PurchaseUC:  purchaseUC,
		PaymentUC:   paymentUC,
		ShiftUC:     shiftUC,
		Hub:         hub,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, closing server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}
