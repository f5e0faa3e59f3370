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

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/greenleaf/plant-store-api/internal/ai"
	"github.com/greenleaf/plant-store-api/internal/config"
	"github.com/greenleaf/plant-store-api/internal/handler"
	"github.com/greenleaf/plant-store-api/internal/mailer"
	"github.com/greenleaf/plant-store-api/internal/middleware"
	"github.com/greenleaf/plant-store-api/internal/repository"
	"github.com/greenleaf/plant-store-api/internal/service"
	"github.com/greenleaf/plant-store-api/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	poolCfg, err := pgxpool.ParseConfig(cfg.DB.DSN())
	if err != nil {
		log.Error("parse db config", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = cfg.DB.MaxConns

	dbPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}
	log.Info("connected to PostgreSQL")

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	amqpCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer amqpCh.Close()

	if err := worker.SetupRabbitMQ(amqpCh); err != nil {
		log.Error("setup RabbitMQ", "error", err)
		os.Exit(1)
	}
	log.Info("connected to RabbitMQ")

	// Repositories
	userRepo := repository.NewUserRepository(dbPool)
	plantRepo := repository.NewPlantRepository(dbPool)
	orderRepo := repository.NewOrderRepository(dbPool, plantRepo)

	// Notification publisher
	publisher := worker.NewPublisher(amqpCh)

	// AI copy generation
	aiClient := ai.NewClient(cfg.AI)
	aiQueue := ai.NewQueue(cfg.AI.RequestDelay)
	aiQueue.Start(ctx)
	generator := ai.NewGenerator(aiClient, aiQueue, log)

	// Services
	authSvc := service.NewAuthService(userRepo, publisher, cfg.JWT.Secret, cfg.JWT.Expiration, log)
	plantSvc := service.NewPlantService(plantRepo, redisClient)
	orderSvc := service.NewOrderService(orderRepo, plantRepo, plantSvc, publisher, log)

	// Handlers
	userH := handler.NewUserHandler(authSvc)
	plantH := handler.NewPlantHandler(plantSvc, generator)
	orderH := handler.NewOrderHandler(orderSvc)
	healthH := handler.NewHealthHandler(dbPool, redisClient, amqpConn)

	// Notification worker
	mail := mailer.New(cfg.SMTP, log)
	notifWorker := worker.NewNotificationWorker(amqpCh, orderRepo, mail, redisClient, log)

	// Router
	router := gin.Default()
	router.GET("/healthz", healthH.Healthz)
	router.GET("/readyz", healthH.Readyz)

	limiter := middleware.NewRateLimiter(20, 40)

	api := router.Group("/api", limiter.Middleware())
	{
		users := api.Group("/users")
		users.POST("/register", userH.Register)
		users.POST("/login", userH.Login)
		users.GET("/verify-email/:token", userH.VerifyEmail)
		users.POST("/resend-verification", middleware.AuthMiddleware(cfg.JWT.Secret), userH.ResendVerification)

		profile := users.Group("/profile", middleware.AuthMiddleware(cfg.JWT.Secret))
		profile.GET("", userH.GetProfile)
		profile.PUT("", userH.UpdateProfile)

		plants := api.Group("/plants")
		plants.GET("", plantH.List)
		plants.GET("/featured", plantH.Featured)
		plants.GET("/promotions", plantH.Promotions)
		plants.GET("/:id", plantH.GetByID)

		orders := api.Group("/orders")
		orders.POST("", middleware.OptionalAuth(cfg.JWT.Secret), orderH.PlaceOrder)
		orders.GET("/my-orders", middleware.AuthMiddleware(cfg.JWT.Secret), orderH.MyOrders)
		orders.GET("/:id", middleware.OptionalAuth(cfg.JWT.Secret), orderH.GetOrder)

		admin := api.Group("/admin", middleware.AuthMiddleware(cfg.JWT.Secret), middleware.AdminOnly())
		admin.POST("/plants", plantH.Create)
		admin.PUT("/plants/:id", plantH.Update)
		admin.DELETE("/plants/:id", plantH.Delete)
		admin.POST("/plants/generate-info", plantH.GenerateInfo)
		admin.GET("/orders", orderH.ListAll)
		admin.PUT("/orders/:id/status", orderH.UpdateStatus)
		admin.PUT("/orders/:id/delivery", orderH.UpdateDelivery)
		admin.GET("/dashboard", orderH.Dashboard)
	}

	if err := notifWorker.Start(ctx); err != nil {
		log.Error("start notification worker", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	notifWorker.Stop()
	aiQueue.Stop()
	time.Sleep(500 * time.Millisecond)
	cancel()
	log.Info("server stopped")
}
