package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/services"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/errors"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/middleware"
)

type CheckoutController struct {
	Service *services.CheckoutService
	Logger  *zap.Logger
}

func NewCheckoutController(service *services.CheckoutService, logger *zap.Logger) *CheckoutController {
	return &CheckoutController{Service: service, Logger: logger}
}

// InitiateCheckout handles POST /cart/checkout.
func (cc *CheckoutController) InitiateCheckout(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req struct {
		Address string `json:"address" binding:"required"`
		Phone   string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := cc.Service.InitiateCheckout(c.Request.Context(), userID, req.Address, req.Phone)
	if err != nil {
		errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// PaymentWebhook handles POST /webhooks/payment. The raw body is needed for
// signature verification, so it is read before any binding.
func (cc *CheckoutController) PaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if svcErr := cc.Service.HandleWebhook(c.Request.Context(), payload, signature); svcErr != nil {
		errors.Respond(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
