package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	appanalytics "github.com/jhoicas/greengrocer-ims/internal/application/analytics"
	"github.com/jhoicas/greengrocer-ims/internal/application/auth"
	"github.com/jhoicas/greengrocer-ims/internal/application/dto"
	appinventory "github.com/jhoicas/greengrocer-ims/internal/application/inventory"
	"github.com/jhoicas/greengrocer-ims/internal/application/live"
	"github.com/jhoicas/greengrocer-ims/internal/application/seed"
	"github.com/jhoicas/greengrocer-ims/internal/application/usecase"
	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
)

// Metrics lo que el router necesita del registro de métricas.
type Metrics interface {
	OperationRecorder
	SubscriptionGauge
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	// Base acota la vida de los streams en vivo; se cancela al apagar.
	Base context.Context

	ProductUC     *usecase.ProductUseCase
	WarehouseUC   *usecase.WarehouseUseCase
	SupplierUC    *usecase.SupplierUseCase
	CustomerUC    *usecase.CustomerUseCase
	CategoryUC    *usecase.CategoryUseCase
	OperationsUC  *appinventory.OperationsUseCase
	Replenishment *appinventory.ReplenishmentUseCase
	HistoryUC     *appinventory.HistoryUseCase
	DashboardUC   *appanalytics.DashboardUseCase
	Seeder        *seed.Seeder
	AuthUC        *auth.AuthUseCase
	PDF           HistoryPDFGenerator

	Store    docstore.Store
	ErrorBus *live.ErrorBus
	Metrics  Metrics

	// AuthRateLimit máximo de peticiones por minuto e IP a signin/signup/reset (0 = 20).
	AuthRateLimit int
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Base == nil {
		deps.Base = context.Background()
	}
	api := app.Group("/api")

	// Auth (público, con límite por IP)
	authMax := deps.AuthRateLimit
	if authMax <= 0 {
		authMax = 20
	}
	authLimiter := limiter.New(limiter.Config{
		Max:        authMax,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fail(c, fiber.StatusTooManyRequests, "RATE_LIMITED", "demasiadas solicitudes, intente más tarde")
		},
	})
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", authLimiter, authHandler.SignUp)
	authGroup.Post("/signin", authLimiter, authHandler.SignIn)
	authGroup.Post("/password-reset", authLimiter, authHandler.RequestPasswordReset)
	authGroup.Post("/password-reset/confirm", authLimiter, authHandler.ConfirmPasswordReset)

	// Rutas protegidas (requieren Bearer Token)
	requireAuth := AuthMiddleware(deps.AuthUC)
	authGroup.Post("/signout", requireAuth, authHandler.SignOut)
	authGroup.Get("/me", requireAuth, authHandler.Me)
	authGroup.Patch("/me", requireAuth, authHandler.UpdateProfile)

	// El middleware va en cada grupo y no en /api entero: una ruta desconocida
	// responde 404 y no 401.
	protected := func(prefix string) fiber.Router { return api.Group(prefix, requireAuth) }

	// Maestros
	productHandler := NewProductHandler(deps.ProductUC)
	products := protected("/products")
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	NewResourceHandler[dto.CreateWarehouseRequest, dto.UpdateWarehouseRequest, dto.WarehouseResponse](deps.WarehouseUC).
		Mount(protected("/warehouses"))
	NewResourceHandler[dto.SupplierRequest, dto.SupplierRequest, dto.SupplierResponse](deps.SupplierUC).
		Mount(protected("/suppliers"))
	NewResourceHandler[dto.CustomerRequest, dto.CustomerRequest, dto.CustomerResponse](deps.CustomerUC).
		Mount(protected("/customers"))
	NewResourceHandler[dto.CategoryRequest, dto.CategoryRequest, dto.CategoryResponse](deps.CategoryUC).
		Mount(protected("/categories"))

	// Operaciones del usuario
	ops := NewOperationsHandler(deps.OperationsUC, deps.Metrics)
	receipts := protected("/receipts")
	receipts.Get("/", ops.ListReceipts)
	receipts.Post("/", ops.CreateReceipt)
	receipts.Get("/:id", ops.GetReceipt)
	receipts.Post("/:id/actions/:action", ops.ReceiptAction)

	deliveries := protected("/deliveries")
	deliveries.Get("/", ops.ListDeliveries)
	deliveries.Post("/", ops.CreateDelivery)
	deliveries.Get("/:id", ops.GetDelivery)
	deliveries.Post("/:id/actions/:action", ops.DeliveryAction)

	transfers := protected("/transfers")
	transfers.Get("/", ops.ListTransfers)
	transfers.Post("/", ops.CreateTransfer)
	transfers.Get("/:id", ops.GetTransfer)
	transfers.Post("/:id/actions/:action", ops.TransferAction)

	adjustments := protected("/adjustments")
	adjustments.Get("/", ops.ListAdjustments)
	adjustments.Post("/", ops.CreateAdjustment)

	// Agregados
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.Replenishment, deps.Seeder)
	api.Get("/dashboard", requireAuth, dashboardHandler.GetSummary)
	api.Get("/reordering", requireAuth, dashboardHandler.Reordering)
	api.Post("/seed", requireAuth, dashboardHandler.Seed)

	historyHandler := NewHistoryHandler(deps.HistoryUC, deps.PDF)
	history := protected("/history")
	history.Get("/", historyHandler.List)
	history.Get("/export.pdf", historyHandler.ExportPDF)

	// Suscripciones en vivo (SSE)
	var gauge SubscriptionGauge
	if deps.Metrics != nil {
		gauge = deps.Metrics
	}
	liveHandler := NewLiveHandler(deps.Base, deps.Store, deps.ErrorBus, gauge)
	protected("/live").Get("/*", liveHandler.Stream)

	api.Use(func(c *fiber.Ctx) error {
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", "ruta no encontrada: "+c.Method()+" "+c.Path())
	})
}
