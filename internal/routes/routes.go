package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/demo-credit/wallet-service/internal/auth"
	"github.com/demo-credit/wallet-service/internal/blacklist"
	"github.com/demo-credit/wallet-service/internal/config"
	"github.com/demo-credit/wallet-service/internal/funding"
	"github.com/demo-credit/wallet-service/internal/ledger"
	"github.com/demo-credit/wallet-service/internal/middleware"
	"github.com/demo-credit/wallet-service/internal/notification"
	"github.com/demo-credit/wallet-service/internal/payments"
	"github.com/demo-credit/wallet-service/internal/user"
	"github.com/demo-credit/wallet-service/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes. Without a
// database the service falls back to in-memory backends, which is only
// allowed in dev environments.
func Setup(app *fiber.App, d Deps) error {
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	ledgerOpts := ledger.Options{
		OperationTimeout: d.Cfg.LedgerOpTimeout,
		MaxPageSize:      d.Cfg.HistoryMaxPageSize,
	}

	var (
		ledgerBackend ledger.Ledger
		walletRepo    wallet.Repository
		userRepo      user.Repository
	)
	if d.DB != nil {
		ledgerBackend = ledger.NewPostgres(d.DB, d.Logger, ledgerOpts)
		walletRepo = wallet.NewPostgresRepository(d.DB, wallet.NewGenerator(), d.Logger)
		userRepo = user.NewPostgresRepository(d.DB)
	} else {
		store := ledger.NewInMemory()
		ledgerBackend = store
		walletRepo = wallet.NewMemoryRepository(store, wallet.NewGenerator())
		userRepo = user.NewMemoryRepository()
	}

	var screener user.BlacklistChecker
	if d.Cfg.BlacklistAPIKey != "" {
		screener = blacklist.New(d.Cfg.BlacklistBaseURL, d.Cfg.BlacklistAPIKey, d.Cache, d.Cfg.BlacklistCacheTTL, d.Logger)
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	walletSvc := wallet.NewService(walletRepo, ledgerBackend)
	userSvc := user.NewService(userRepo, screener, d.Logger)
	tokenSvc := auth.NewService(d.Cfg.JWTSecret, d.Cfg.TokenTTL)
	fundingSvc := funding.NewService(ledgerBackend, notifier)
	paymentSvc := payments.NewService(ledgerBackend, walletRepo, notifier)

	userHandler := user.NewHandler(userSvc, walletSvc, tokenSvc)
	walletHandler := wallet.NewHandler(walletSvc, ledgerBackend)
	fundingHandler := funding.NewHandler(fundingSvc)
	paymentHandler := payments.NewHandler(paymentSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterUserRoutes(api, userHandler, middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRatePerMin))

	protected := api.Group("", middleware.JWTAuth(tokenSvc))
	RegisterWalletRoutes(protected, walletHandler, fundingHandler, paymentHandler)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
