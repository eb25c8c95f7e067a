package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/omas1st/contestbk/internal/admin"
	"github.com/omas1st/contestbk/internal/alerts"
	"github.com/omas1st/contestbk/internal/auth"
	"github.com/omas1st/contestbk/internal/db"
	mware "github.com/omas1st/contestbk/internal/middleware"
	"github.com/omas1st/contestbk/internal/withdraw"
)

func main() {
	// .env is optional; container deployments set real env vars
	_ = godotenv.Load()

	// Init subsystems
	db.Init()
	alerts.Init()
	defer alerts.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Health and root routes
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "service": "contestbk"})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/ready", func(c echo.Context) error {
		if db.Conn == nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "db not initialized"})
		}
		if err := db.Conn.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "db unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})

	// Public routes
	// Auth routes with per-IP rate limiting to protect signup/login from abuse
	authGroup := e.Group("/auth")
	authGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))
	authGroup.POST("/signup", auth.Signup)
	authGroup.POST("/login", auth.Login)

	// Websocket stream authenticates via query token
	e.GET("/notifications/stream", alerts.StreamNotifications)

	// Protected routes
	api := e.Group("")
	api.Use(mware.JWTMiddleware)

	api.GET("/auth/me", auth.Me)

	api.GET("/notifications", alerts.ListNotifications)
	api.POST("/notifications/:id/read", alerts.MarkNotificationRead)

	api.POST("/withdraw/preview", withdraw.CreateOrResumePreview)
	api.GET("/withdraw/current", withdraw.Current)
	api.POST("/withdraw/:id/proceed", withdraw.Proceed)
	api.POST("/withdraw/:id/payments", withdraw.SubmitPayment)
	api.POST("/withdraw/:id/confirm", withdraw.ConfirmPin)

	// Admin routes
	adm := e.Group("/admin")
	adm.Use(mware.JWTMiddleware)
	adm.Use(mware.AdminGuard)

	adm.GET("/users", admin.ListUsers)
	adm.POST("/users/:id/suspend", admin.SuspendUser)
	adm.POST("/users/:id/activate", admin.ActivateUser)
	adm.POST("/users/:id/balance", admin.SetBalance)
	adm.POST("/users/:id/timer", admin.SetTimer)
	adm.POST("/users/:id/pins", admin.SetPin)

	adm.GET("/withdrawals/pending", admin.ListPendingWithdrawals)
	adm.POST("/withdrawals/:id/approve", admin.ApproveWithdrawal)
	adm.POST("/withdrawals/:id/reject", admin.RejectWithdrawal)

	adm.GET("/payments", admin.ListPayments)
	adm.POST("/payments/:id/status", admin.ReviewPayment)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := e.Start(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
