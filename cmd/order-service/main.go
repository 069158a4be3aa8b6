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

	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/database"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/logger"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/order/config"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/order/controllers"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/order/models"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/order/repository"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/order/routes"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/order/services"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/outbox"
)

func main() {
	log := logger.MustNew(os.Getenv("APP_ENV"))
	defer log.Sync()

	cfg := config.Load()

	db, err := database.ConnectPostgres(log,
		&models.Order{}, &models.ProcessedEvent{}, &outbox.Event{})
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}

	outboxStore := outbox.NewGormStore(db)
	repo := repository.NewGormOrderRepository(db, outboxStore)
	svc := services.NewOrderService(repo, log)
	projector := services.NewProjector(repo, log)
	ctrl := controllers.NewOrderController(svc, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go services.StartCheckoutConsumer(ctx, cfg.KafkaBrokers, cfg.CheckoutTopic, cfg.ConsumerGroup, projector, log)

	publisher := outbox.NewPublisher(outboxStore, map[string]outbox.MessageWriter{
		outbox.AggregateOrder: outbox.NewTopicWriter(cfg.KafkaBrokers, cfg.ReviewEventsTopic),
	}, cfg.PublishInterval, log)
	go publisher.Run(ctx)

	router := gin.New()
	router.Use(gin.Recovery(), logger.RequestLogger(log))
	routes.RegisterOrderRoutes(router, ctrl, []byte(cfg.JWTSecret))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("Order service listening", zap.String("port", cfg.Port))
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
