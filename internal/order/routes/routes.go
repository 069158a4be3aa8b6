package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/middleware"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/order/controllers"
)

func RegisterOrderRoutes(r *gin.Engine, oc *controllers.OrderController, jwtSecret []byte) {
	orders := r.Group("/orders")
	orders.Use(middleware.AuthMiddleware(jwtSecret))
	orders.GET("/", oc.ListOrders)
	orders.POST("/reviews", oc.CreateReview)

	admin := r.Group("/orders")
	admin.Use(middleware.AuthMiddleware(jwtSecret), middleware.AdminOnly())
	admin.GET("/all", oc.ListAllOrders)
}
