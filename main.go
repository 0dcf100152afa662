package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"urbancabz/internal/cache"
	"urbancabz/internal/config"
	"urbancabz/internal/db"
	"urbancabz/internal/gateway"
	api "urbancabz/internal/http"
	"urbancabz/internal/http/handlers"
	"urbancabz/internal/logger"
	"urbancabz/internal/notify"
	"urbancabz/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.ErrorLogger.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	database, err := config.OpenDB(cfg.MySQL)
	if err != nil {
		logger.ErrorLogger.Fatalf("failed to connect to MySQL: %v", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(context.Background(), database); err != nil {
		logger.ErrorLogger.Fatalf("failed to ensure schema: %v", err)
	}

	rdb, err := cache.NewRedisClient(context.Background(), cfg.Redis)
	if err != nil {
		logger.ErrorLogger.Fatalf("failed to connect to Redis: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
	} else {
		logger.WarnLogger.Warn("Redis not configured, password reset disabled")
	}

	razorpayClient := gateway.NewRazorpayClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	dispatcher := notify.NewWhatsAppDispatcher(cfg.Twilio)

	lifecycle := services.NewLifecycleService(database, dispatcher, cfg.Fare.DefaultRatePerKm)
	query := services.NewBookingQueryService(database)
	payments := services.NewPaymentService(razorpayClient, lifecycle)
	auth := services.NewAuthService(database, cfg.JWT)
	reset := services.NewPasswordResetService(database, rdb, dispatcher)
	fleet := services.NewFleetService(database)
	cleanup := services.NewCleanupService(database)
	tickets := services.NewTicketService(query)

	r := api.NewRouter(auth, api.Handlers{
		Auth:    &handlers.AuthHandler{Auth: auth, Reset: reset},
		Booking: &handlers.BookingHandler{Lifecycle: lifecycle, Query: query, Tickets: tickets},
		Payment: &handlers.PaymentHandler{Payments: payments, KeyID: razorpayClient.KeyID()},
		Admin:   &handlers.AdminHandler{Lifecycle: lifecycle, Query: query, Cleanup: cleanup},
		Fleet:   &handlers.FleetHandler{Fleet: fleet},
		System:  &handlers.SystemHandler{DB: database},
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.InfoLogger.Infof("server listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorLogger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.InfoLogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorLogger.Fatalf("server shutdown failed: %v", err)
	}

	logger.InfoLogger.Info("server stopped")
}
