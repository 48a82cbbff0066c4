// Package main is the entry point for the Study Room Finance API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/studyroom/backend/config"
	"github.com/studyroom/backend/internal/application/adapter"
	"github.com/studyroom/backend/internal/application/usecase/auth"
	"github.com/studyroom/backend/internal/application/usecase/expense"
	"github.com/studyroom/backend/internal/application/usecase/payment"
	"github.com/studyroom/backend/internal/application/usecase/report"
	"github.com/studyroom/backend/internal/infra/db"
	"github.com/studyroom/backend/internal/infra/server/router"
	"github.com/studyroom/backend/internal/integration/adapters"
	"github.com/studyroom/backend/internal/integration/cache"
	"github.com/studyroom/backend/internal/integration/entrypoint/controller"
	"github.com/studyroom/backend/internal/integration/entrypoint/middleware"
	"github.com/studyroom/backend/internal/integration/persistence"
	"github.com/studyroom/backend/internal/integration/persistence/model"
)

func main() {
	// Load .env file if it exists (development only)
	_ = godotenv.Load()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg := config.Load()

	slog.Info("Starting Study Room Finance API",
		"environment", cfg.Server.Environment,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	var database *db.Database
	var dbHealthChecker func() bool

	database, err := db.NewPostgresConnection(&cfg.Database)
	if err != nil {
		slog.Warn("Database connection failed, running without database",
			"error", err,
		)
		dbHealthChecker = func() bool { return false }
	} else {
		// Run database migrations
		if err := database.AutoMigrate(
			&model.UserModel{},
			&model.PaymentModel{},
			&model.ExpenseModel{},
		); err != nil {
			slog.Error("Failed to run database migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("Database migrations completed successfully")

		dbHealthChecker = database.HealthCheck
		defer func() {
			if err := database.Close(); err != nil {
				slog.Error("Failed to close database connection", "error", err)
			}
		}()
	}

	// Create health controller with database health checker
	healthController := controller.NewHealthController(dbHealthChecker)

	// Create controllers and middleware (only if database is available)
	var authController *controller.AuthController
	var financeController *controller.FinanceController
	var paymentController *controller.PaymentController
	var expenseController *controller.ExpenseController
	var loginRateLimiter *middleware.RateLimiter
	var authMiddleware *middleware.AuthMiddleware

	if database != nil {
		// Create repositories
		userRepo := persistence.NewUserRepository(database.DB())
		paymentRepo := persistence.NewPaymentRepository(database.DB())
		expenseRepo := persistence.NewExpenseRepository(database.DB())

		// Create report cache backed by Redis, degrading to no cache when
		// Redis is unreachable
		reportCache := newReportCache(cfg)

		// Create adapters/services
		passwordService := adapters.NewPasswordService()
		tokenService := adapters.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

		// Create use cases
		loginUseCase := auth.NewLoginUserUseCase(userRepo, passwordService, tokenService)
		getBalanceSheetUseCase := report.NewGetBalanceSheetUseCase(paymentRepo, expenseRepo)
		getMonthlySummaryUseCase := report.NewGetMonthlySummaryUseCase(paymentRepo, expenseRepo, reportCache)
		listPaymentsUseCase := payment.NewListPaymentsUseCase(paymentRepo)
		recordPaymentUseCase := payment.NewRecordPaymentUseCase(paymentRepo, reportCache)
		listExpensesUseCase := expense.NewListExpensesUseCase(expenseRepo)
		recordExpenseUseCase := expense.NewRecordExpenseUseCase(expenseRepo, reportCache)

		// Create controllers
		authController = controller.NewAuthController(loginUseCase)
		financeController = controller.NewFinanceController(getBalanceSheetUseCase, getMonthlySummaryUseCase)
		paymentController = controller.NewPaymentController(listPaymentsUseCase, recordPaymentUseCase)
		expenseController = controller.NewExpenseController(listExpensesUseCase, recordExpenseUseCase)

		// Create middleware
		loginRateLimiter = middleware.NewRateLimiter()
		authMiddleware = middleware.NewAuthMiddleware(tokenService)

		slog.Info("Finance report system initialized successfully")
	} else {
		slog.Warn("Finance report system not initialized due to missing database connection")
	}

	// Setup router
	r := router.NewRouter(
		healthController,
		authController,
		financeController,
		paymentController,
		expenseController,
		loginRateLimiter,
		authMiddleware,
	)
	engine := r.Setup(cfg.Server.Environment)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited properly")
}

// newReportCache connects to Redis and wraps it as a report cache. A nil
// cache is returned when Redis is unreachable; report use cases treat that
// as cache-off.
func newReportCache(cfg *config.Config) adapter.ReportCache {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		slog.Warn("Invalid Redis URL, running without report cache", "error", err)
		return nil
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	if cfg.Redis.DB != 0 {
		opts.DB = cfg.Redis.DB
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis connection failed, running without report cache", "error", err)
		return nil
	}

	slog.Info("Report cache connected", "ttl", cfg.Report.SummaryCacheTTL)
	return cache.NewReportCache(client, cfg.Report.SummaryCacheTTL)
}
