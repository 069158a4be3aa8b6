package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/cart/services"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/errors"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/middleware"
)

type CartController struct {
	Service *services.CartService
	Logger  *zap.Logger
}

func NewCartController(service *services.CartService, logger *zap.Logger) *CartController {
	return &CartController{Service: service, Logger: logger}
}

// GetCart handles GET /cart.
func (cc *CartController) GetCart(c *gin.Context) {
	userID := middleware.GetUserID(c)

	lines, total, err := cc.Service.GetCart(c.Request.Context(), userID)
	if err != nil {
		errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": lines,
		"total": total,
	})
}

// AddItem handles POST /cart/items.
func (cc *CartController) AddItem(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req struct {
		ProductID uint64 `json:"product_id" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	line, err := cc.Service.AddItem(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

// UpdateItem handles PUT /cart/items/:productId.
func (cc *CartController) UpdateItem(c *gin.Context) {
	userID := middleware.GetUserID(c)

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req struct {
		Quantity int `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	line, svcErr := cc.Service.UpdateQuantity(c.Request.Context(), userID, productID, req.Quantity)
	if svcErr != nil {
		errors.Respond(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, line)
}

// RemoveItem handles DELETE /cart/items/:productId.
func (cc *CartController) RemoveItem(c *gin.Context) {
	userID := middleware.GetUserID(c)

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if svcErr := cc.Service.RemoveItem(c.Request.Context(), userID, productID); svcErr != nil {
		errors.Respond(c, svcErr)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearCart handles DELETE /cart.
func (cc *CartController) ClearCart(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := cc.Service.ClearCart(c.Request.Context(), userID); err != nil {
		errors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
