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

	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/clients"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/config"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/controllers"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/models"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/repository"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/routes"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/services"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/awsutil"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/database"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/logger"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/outbox"
)

func main() {
	log := logger.MustNew(os.Getenv("APP_ENV"))
	defer log.Sync()

	cfg := config.Load()

	db, err := database.ConnectPostgres(log,
		&models.CartLine{}, &models.Order{}, &models.OrderLineItem{}, &outbox.Event{})
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to configure Redis", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokens := clients.NewAuthTokenProvider(cfg.AuthURL, cfg.ServiceUser, cfg.ServicePassword, 0, log)
	go tokens.Run(ctx)

	catalog := clients.NewCatalogClient(cfg.CatalogURL, tokens, redisClient, log)
	provider := services.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret, "eur", log)

	outboxStore := outbox.NewGormStore(db)
	carts := repository.NewGormCartRepository(db)
	orders := repository.NewGormOrderRepository(db, outboxStore)

	cartSvc := services.NewCartService(carts, catalog, log)
	checkoutSvc := services.NewCheckoutService(carts, orders, catalog, catalog, provider, log)

	publisher := outbox.NewPublisher(outboxStore, map[string]outbox.MessageWriter{
		outbox.AggregateCart:    outbox.NewTopicWriter(cfg.KafkaBrokers, cfg.CheckoutTopic),
		outbox.AggregateCatalog: outbox.NewTopicWriter(cfg.KafkaBrokers, cfg.StockEventsTopic),
	}, cfg.PublishInterval, log)

	if cfg.SNSTopicArn != "" {
		awsCfg, err := awsutil.LoadAWSConfig(ctx)
		if err != nil {
			log.Fatal("Failed to load AWS config", zap.Error(err))
		}
		publisher.WithSNSMirror(awsutil.NewSNSClient(awsCfg), cfg.SNSTopicArn)
	}
	go publisher.Run(ctx)

	go services.StartProductChangeConsumer(ctx, cfg.KafkaBrokers, cfg.ProductTopic, cfg.ConsumerGroup, cartSvc, log)

	cartCtrl := controllers.NewCartController(cartSvc, log)
	checkoutCtrl := controllers.NewCheckoutController(checkoutSvc, log)

	router := gin.New()
	router.Use(gin.Recovery(), logger.RequestLogger(log))
	routes.RegisterCartRoutes(router, cartCtrl, checkoutCtrl, []byte(cfg.JWTSecret))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("Cart service listening", zap.String("port", cfg.Port))
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
