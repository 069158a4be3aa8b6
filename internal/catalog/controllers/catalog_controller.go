package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/models"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/catalog/services"
	"github.com/idl00005/microservices-ecommerce-sub000/internal/common/errors"
)

type CatalogController struct {
	Service *services.CatalogService
	Logger  *zap.Logger
}

func NewCatalogController(service *services.CatalogService, logger *zap.Logger) *CatalogController {
	return &CatalogController{Service: service, Logger: logger}
}

type productRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" binding:"min=0"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
}

// ListProducts handles GET /products with pagination and filters.
func (cc *CatalogController) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	products, total, err := cc.Service.ListProducts(c.Request.Context(), page, limit, c.Query("name"), c.Query("category"))
	if err != nil {
		errors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"meta": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetProduct handles GET /products/:id.
func (cc *CatalogController) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, svcErr := cc.Service.GetProduct(c.Request.Context(), id)
	if svcErr != nil {
		errors.Respond(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct handles POST /products (admin).
func (cc *CatalogController) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	}
	if err := cc.Service.CreateProduct(c.Request.Context(), &product); err != nil {
		errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles PUT /products/:id (admin).
func (cc *CatalogController) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := models.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	}
	if svcErr := cc.Service.UpdateProduct(c.Request.Context(), &product); svcErr != nil {
		errors.Respond(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/:id (admin).
func (cc *CatalogController) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if svcErr := cc.Service.DeleteProduct(c.Request.Context(), id); svcErr != nil {
		errors.Respond(c, svcErr)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReserveStock handles POST /products/:id/reserve, called by the cart
// service during checkout.
func (cc *CatalogController) ReserveStock(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
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

	if svcErr := cc.Service.Reserve(c.Request.Context(), id, req.Quantity); svcErr != nil {
		errors.Respond(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reserved"})
}

// GetReviews handles GET /products/:id/reviews.
func (cc *CatalogController) GetReviews(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	reviews, svcErr := cc.Service.GetReviews(c.Request.Context(), id, page, limit)
	if svcErr != nil {
		errors.Respond(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, reviews)
}
