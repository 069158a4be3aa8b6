package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/controllers"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/middleware"
)

func RegisterCartRoutes(r *gin.Engine, cc *controllers.CartController, checkout *controllers.CheckoutController, jwtSecret []byte) {
	cart := r.Group("/cart")
	cart.Use(middleware.AuthMiddleware(jwtSecret))
	cart.GET("/", cc.GetCart)
	cart.DELETE("/", cc.ClearCart)
	cart.POST("/items", cc.AddItem)
	cart.PUT("/items/:productId", cc.UpdateItem)
	cart.DELETE("/items/:productId", cc.RemoveItem)
	cart.POST("/checkout", checkout.InitiateCheckout)

	// Provider callbacks authenticate with the webhook signature, not a JWT.
	r.POST("/webhooks/payment", checkout.PaymentWebhook)
}
