package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/controllers"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/middleware"
)

func RegisterCatalogRoutes(r *gin.Engine, cc *controllers.CatalogController, jwtSecret []byte) {
	products := r.Group("/products")
	products.GET("/", cc.ListProducts)
	products.GET("/:id", cc.GetProduct)
	products.GET("/:id/reviews", cc.GetReviews)

	protected := r.Group("/products")
	protected.Use(middleware.AuthMiddleware(jwtSecret))
	protected.POST("/:id/reserve", cc.ReserveStock)

	admin := r.Group("/products")
	admin.Use(middleware.AuthMiddleware(jwtSecret), middleware.AdminOnly())
	admin.POST("/", cc.CreateProduct)
	admin.PUT("/:id", cc.UpdateProduct)
	admin.DELETE("/:id", cc.DeleteProduct)
}
