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

	"github.com/idl00005/microservices-ecommerce-sub000/internal/auth/config"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/auth/controllers"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/auth/models"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/auth/repository"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/auth/routes"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/auth/services"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/database"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/logger"
)

func main() {
	log := logger.MustNew(os.Getenv("APP_ENV"))
	defer log.Sync()

	cfg := config.Load()

	db, err := database.ConnectPostgres(log, &models.User{})
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}

	users := repository.NewGormUserRepository(db)
	svc := services.NewAuthService(users, []byte(cfg.JWTSecret), cfg.TokenTTL, log)
	ctrl := controllers.NewAuthController(svc, log)

	router := gin.New()
	router.Use(gin.Recovery(), logger.RequestLogger(log))
	routes.RegisterAuthRoutes(router, ctrl)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("Auth service listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Shutdown error", zap.Error(err))
	}
	log.Info("Server shutdown complete")
}
