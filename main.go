package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"djagency-backend/config"
	"djagency-backend/controllers"
	"djagency-backend/logger"
	"djagency-backend/models"
	"djagency-backend/routes"
	"djagency-backend/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Init(&logger.Config{
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Development: cfg.Log.Development,
	})
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg); err != nil {
		logger.L().Fatal("server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	if err := config.ConnectDB(cfg.Database); err != nil {
		return err
	}
	if err := config.DB.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := services.SeedAdmin(config.DB, cfg.Admin); err != nil {
		return err
	}
	if err := services.SeedTemplates(config.DB); err != nil {
		return err
	}

	storage, err := services.NewStorage(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}

	var sinks []services.Sink
	if cfg.AMQP.URL != "" {
		publisher, err := services.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			// realtime still works in-process without the broker
			logger.L().Error("amqp publisher disabled", zap.Error(err))
		} else {
			defer publisher.Close()
			sinks = append(sinks, publisher)
			logger.L().Info("mirroring changes to amqp", zap.String("exchange", cfg.AMQP.Exchange))
		}
	}
	hub := services.NewHub(64, sinks...)

	overdue := services.NewOverdueService(config.DB, services.NewNotifier(cfg.Twilio), hub)
	scheduler, err := overdue.StartScheduler(cfg.Scheduler.OverdueSweepSchedule)
	if err != nil {
		return err
	}
	defer scheduler.Stop()

	r := routes.SetupRouter(cfg, controllers.Dependencies{
		JWT:           cfg.JWT,
		SecureCookies: cfg.IsProduction(),
		Storage:       storage,
		Hub:           hub,
		Shares:        services.NewShareService(storage, cfg.Share.TTL),
		Overdue:       overdue,
	})
	if cfg.Log.Development {
		printRoutes(r)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.L().Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
