package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/hibiken/asynq"

	appanalytics "github.com/jhoicas/greengrocer-ims/internal/application/analytics"
	"github.com/jhoicas/greengrocer-ims/internal/application/auth"
	"github.com/jhoicas/greengrocer-ims/internal/application/inventory"
	"github.com/jhoicas/greengrocer-ims/internal/application/live"
	"github.com/jhoicas/greengrocer-ims/internal/application/seed"
	"github.com/jhoicas/greengrocer-ims/internal/application/usecase"
	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/documents"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/jobs"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/memstore"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/greengrocer-ims/internal/infrastructure/pdf"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/postgres"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/redisstore"
	httpRouter "github.com/jhoicas/greengrocer-ims/internal/interfaces/http"
	"github.com/jhoicas/greengrocer-ims/pkg/config"
	"github.com/jhoicas/greengrocer-ims/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	if err := cfg.ValidateAPI(); err != nil {
		panic(err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	// base se cancela al apagar: corta los streams en vivo y el change feed.
	base, stopBase := context.WithCancel(context.Background())
	defer stopBase()

	rawStore, closeStore, err := openStore(base, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacén de documentos")
	}
	defer closeStore()

	// Redis es obligatorio: sin él no hay revocación de sesiones ni tokens de reseteo.
	redisClient, err := redisstore.NewClient(base, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
	}
	defer redisClient.Close()

	cache := redisstore.NewCache(redisClient, cfg.Dashboard.CacheTTL)
	if err := cache.ListenForInvalidation(base); err != nil {
		log.Warn().Err(err).Msg("caché: sin avisos de invalidación entre instancias")
	}
	cacheLog := log.Named("cache")
	store := docstore.WithCommitHook(rawStore, func(ctx context.Context, paths []string) {
		if err := cache.Bump(context.WithoutCancel(ctx)); err != nil {
			cacheLog.Warn().Err(err).Strs("paths", paths).Msg("invalidar caché del tablero")
		}
	})

	m := metrics.New()
	errorBus := live.NewErrorBus()
	observed, stopObserve := errorBus.Subscribe(64)
	defer stopObserve()
	go m.ObserveErrors(observed)
	logged, stopLog := errorBus.Subscribe(64)
	defer stopLog()
	go logSubscriptionErrors(log.Named("live"), logged)

	mailQueue := jobs.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer mailQueue.Close()

	repos := documents.NewRepositories(store)
	uow := documents.NewUnitOfWork(store)
	seeder := seed.NewSeeder(uow, log.Named("seed"))

	authUC := auth.NewAuthUseCase(
		documents.NewAccountRepository(store),
		redisstore.NewSessionStore(redisClient),
		mailQueue,
		auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		},
		cfg.SMTP.ResetURLBase,
		log.Named("auth"),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Named("http")))
	app.Use(helmet.New())
	app.Use(cors.New())
	app.Use(m.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs (requiere swag init)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "GreenGrocer IMS API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", m.Handler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Base:          base,
		ProductUC:     usecase.NewProductUseCase(repos.Products),
		WarehouseUC:   usecase.NewWarehouseUseCase(repos.Warehouses),
		SupplierUC:    usecase.NewSupplierUseCase(repos.Suppliers),
		CustomerUC:    usecase.NewCustomerUseCase(repos.Customers),
		CategoryUC:    usecase.NewCategoryUseCase(repos.Categories),
		OperationsUC:  inventory.NewOperationsUseCase(uow, repos),
		Replenishment: inventory.NewReplenishmentUseCase(repos.Products),
		HistoryUC:     inventory.NewHistoryUseCase(repos),
		DashboardUC:   appanalytics.NewDashboardUseCase(repos, cache, seeder, log.Named("dashboard")),
		Seeder:        seeder,
		AuthUC:        authUC,
		PDF:           infrapdf.NewMarotoPDFGenerator(),
		Store:         store,
		ErrorBus:      errorBus,
		Metrics:       m,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopBase()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openStore construye el almacén según STORE_DRIVER. Con postgres aplica las
// migraciones y arranca el change feed que alimenta las suscripciones.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (docstore.Store, func(), error) {
	if cfg.Store.Driver == "memory" {
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		return memstore.New(memstore.WithUnique(docstore.Accounts, "email")), func() {}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	feed := postgres.NewChangeFeed(pool, log.Named("feed"))
	go func() {
		if err := feed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("change feed detenido")
		}
	}()
	return postgres.NewDocumentStore(pool, feed), pool.Close, nil
}

func logSubscriptionErrors(log *logger.Logger, errs <-chan *live.SubscriptionError) {
	for e := range errs {
		log.Warn().Err(e.Err).Str("operation", e.Operation).Str("path", e.Path).Msg("suscripción en vivo fallida")
	}
}
