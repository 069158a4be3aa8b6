package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/auth/controllers"
)

func RegisterAuthRoutes(r *gin.Engine, ac *controllers.AuthController) {
	auth := r.Group("/auth")
	auth.POST("/register", ac.Register)
	auth.POST("/login", ac.Login)
}
