package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/maxwellzeha/jonduplastics/catalog"
	"github.com/maxwellzeha/jonduplastics/models"
	"github.com/maxwellzeha/jonduplastics/pricing"
	"github.com/maxwellzeha/jonduplastics/services"
)

// CatalogController serves the fixed product catalogue and live pricing.
type CatalogController struct{}

func NewCatalogController() *CatalogController { return &CatalogController{} }

// ListProducts handles GET /products
func (cc *CatalogController) ListProducts(ctx *gin.Context) {
	products := catalog.Products()
	ctx.JSON(http.StatusOK, gin.H{"products": products, "total": len(products)})
}

// GetProduct handles GET /products/:id
func (cc *CatalogController) GetProduct(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID", "code": services.CodeInvalidRequest})
		return
	}
	product, ok := catalog.FindProduct(id)
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Product not found", "code": "product_not_found"})
		return
	}
	ctx.JSON(http.StatusOK, product)
}

// Options handles GET /configurator/options
func (cc *CatalogController) Options(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, catalog.ConfiguratorOptions())
}

// Quote handles POST /pricing/quote
func (cc *CatalogController) Quote(ctx *gin.Context) {
	var req models.QuoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidRequest(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, pricing.Calculate(pricing.Selection{
		Material:   req.Material,
		Width:      req.Width,
		Height:     req.Height,
		HasArtwork: req.HasArtwork,
		Quantity:   req.Quantity,
	}))
}
