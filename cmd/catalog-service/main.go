package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/cache"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/config"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/controllers"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/kafka"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/models"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/repository"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/routes"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/services"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/database"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/logger"
)

func main() {
	log := logger.MustNew(os.Getenv("APP_ENV"))
	defer log.Sync()

	cfg := config.Load()

	db, err := database.ConnectPostgres(log, &models.Product{}, &models.Review{}, &models.ProcessedEvent{})
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to configure Redis", zap.Error(err))
	}

	repo := repository.NewGormProductRepository(db)
	productCache := cache.NewRedisProductCache(redisClient, cfg.CacheTTL)
	producer := kafka.NewProductEventProducer(cfg.KafkaBrokers, cfg.ProductTopic, log)
	svc := services.NewCatalogService(repo, productCache, producer, log)
	ctrl := controllers.NewCatalogController(svc, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go services.StartStockEventConsumer(ctx, cfg.KafkaBrokers, cfg.StockEventsTopic, cfg.ConsumerGroup, svc, log)
	go services.StartReviewConsumer(ctx, cfg.KafkaBrokers, cfg.ReviewEventsTopic, cfg.ConsumerGroup, svc, log)

	router := gin.New()
	router.Use(gin.Recovery(), logger.RequestLogger(log))
	routes.RegisterCatalogRoutes(router, ctrl, []byte(cfg.JWTSecret))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("Catalog service listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down gracefully")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Shutdown error", zap.Error(err))
	}
	log.Info("Server shutdown complete")
}
