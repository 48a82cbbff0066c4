// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/studyroom/backend/internal/integration/entrypoint/controller"
	"github.com/studyroom/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine            *gin.Engine
	healthController  *controller.HealthController
	authController    *controller.AuthController
	financeController *controller.FinanceController
	paymentController *controller.PaymentController
	expenseController *controller.ExpenseController
	loginRateLimiter  *middleware.RateLimiter
	authMiddleware    *middleware.AuthMiddleware
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	authController *controller.AuthController,
	financeController *controller.FinanceController,
	paymentController *controller.PaymentController,
	expenseController *controller.ExpenseController,
	loginRateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		healthController:  healthController,
		authController:    authController,
		financeController: financeController,
		paymentController: paymentController,
		expenseController: expenseController,
		loginRateLimiter:  loginRateLimiter,
		authMiddleware:    authMiddleware,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	// Create router with default middleware (logger and recovery)
	r.engine = gin.Default()

	// Setup routes
	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	// API v1 group
	v1 := r.engine.Group("/api/v1")
	{
		// Auth routes (only setup if auth controller is available)
		if r.authController != nil && r.loginRateLimiter != nil {
			auth := v1.Group("/auth")
			{
				auth.POST("/login", r.loginRateLimiter.Middleware(), r.authController.Login)
			}
		}

		// Finance report routes (require authentication)
		if r.financeController != nil && r.authMiddleware != nil {
			finance := v1.Group("/finance")
			finance.Use(r.authMiddleware.Authenticate())
			{
				finance.GET("/detail", r.financeController.GetDetail)
				finance.GET("/monthly", r.financeController.GetMonthly)
				finance.GET("/export", r.financeController.ExportCSV)
			}
		}

		// Payment routes (require authentication)
		if r.paymentController != nil && r.authMiddleware != nil {
			payments := v1.Group("/payments")
			payments.Use(r.authMiddleware.Authenticate())
			{
				payments.GET("", r.paymentController.List)
				payments.POST("", r.paymentController.Create)
			}
		}

		// Expense routes (require authentication)
		if r.expenseController != nil && r.authMiddleware != nil {
			expenses := v1.Group("/expenses")
			expenses.Use(r.authMiddleware.Authenticate())
			{
				expenses.GET("", r.expenseController.List)
				expenses.POST("", r.expenseController.Create)
			}
		}
	}
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
