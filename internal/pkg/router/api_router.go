package router

import (
	"log"
	"strconv"
	"time"

	"github.com/aquaflow/aquaflow/app/controllers"
	"github.com/aquaflow/aquaflow/app/repository"
	"github.com/aquaflow/aquaflow/internal/pkg/b2b"
	"github.com/aquaflow/aquaflow/internal/pkg/c2b"
	"github.com/aquaflow/aquaflow/internal/pkg/cache"
	"github.com/aquaflow/aquaflow/internal/pkg/daraja"
	"github.com/aquaflow/aquaflow/internal/pkg/env"
	"github.com/aquaflow/aquaflow/internal/pkg/transactions"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	cfg, err := daraja.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid Daraja configuration: %v", err)
	}

	factory := repository.GetGlobalFactory()
	c2bRepo := factory.GetC2BTransactionRepository()
	b2bRepo := factory.GetB2BTransactionRepository()

	client := daraja.NewClient(cfg)
	b2bService := b2b.NewService(cfg, client, b2bRepo, c2bRepo)
	c2bService := c2b.NewService(c2bRepo, b2bService)
	queryService := transactions.NewQueryService(c2bRepo, b2bRepo)

	controllers.InitializeC2BCallbackController(c2bService, client)
	controllers.InitializeB2BCallbackController(b2bService)
	controllers.InitializeTransactionController(queryService)

	api := app.Group("/api")
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "AquaFlow payment engine",
		})
	})

	v1 := api.Group("/v1")

	// Callback routes are never rate limited; Safaricom retries on anything
	// other than a clean 200.
	c2bGroup := v1.Group("/c2b")
	c2bGroup.Post("/validation", controllers.HandleC2BValidation)
	c2bGroup.Post("/confirmation", controllers.HandleC2BConfirmation)
	c2bGroup.Post("/register-urls", controllers.HandleC2BRegisterURLs)

	b2bGroup := v1.Group("/mpesa/b2b")
	b2bGroup.Post("/result", controllers.HandleB2BResult)
	b2bGroup.Post("/timeout", controllers.HandleB2BTimeout)

	limiterCfg := limiter.Config{
		Max:        queryRateLimit(),
		Expiration: 1 * time.Minute,
	}
	// Without Redis the limiter falls back to its in-memory store; limits are
	// then per-instance instead of shared.
	if storage := cache.NewFiberStorage(1); storage != nil {
		limiterCfg.Storage = storage
	}
	txGroup := v1.Group("/transactions", limiter.New(limiterCfg))
	txGroup.Get("/:transId", controllers.HandleGetTransactionByID)
	txGroup.Get("/account/:accountNumber", controllers.HandleGetTransactionsByAccount)
	txGroup.Get("/phone/:msisdn", controllers.HandleGetTransactionsByPhone)
}

func queryRateLimit() int {
	max, err := strconv.Atoi(env.GetEnv("API_RATE_LIMIT", "60"))
	if err != nil || max <= 0 {
		return 60
	}
	return max
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
