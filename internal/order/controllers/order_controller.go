package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/errors"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/middleware"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/order/services"
)

type OrderController struct {
	Service *services.OrderService
	Logger  *zap.Logger
}

func NewOrderController(service *services.OrderService, logger *zap.Logger) *OrderController {
	return &OrderController{Service: service, Logger: logger}
}

// ListOrders handles GET /orders for the authenticated user.
func (oc *OrderController) ListOrders(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	orders, total, err := oc.Service.ListUserOrders(c.Request.Context(), userID, c.Query("status"), page, limit)
	if err != nil {
		errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"meta": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// ListAllOrders handles GET /orders/all (admin).
func (oc *OrderController) ListAllOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	orders, total, err := oc.Service.ListAllOrders(c.Request.Context(), c.Query("status"), page, limit)
	if err != nil {
		errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"meta": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// CreateReview handles POST /orders/reviews.
func (oc *OrderController) CreateReview(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req struct {
		ProductID uint64 `json:"product_id" binding:"required"`
		Rating    int    `json:"rating" binding:"required"`
		Comment   string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if svcErr := oc.Service.CreateReview(c.Request.Context(), userID, req.ProductID, req.Rating, req.Comment); svcErr != nil {
		errors.Respond(c, svcErr)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "review queued"})
}
