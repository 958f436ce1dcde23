package handler

import (
	"net/http"

	"saccosphere/internal/middleware"
	"saccosphere/internal/permission"
	"saccosphere/internal/service"
	"saccosphere/pkg/pagination"
	"saccosphere/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService  service.ProductService
	approvalService service.ApprovalService
}

func NewProductHandler(productService service.ProductService, approvalService service.ApprovalService) *ProductHandler {
	return &ProductHandler{productService: productService, approvalService: approvalService}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/products")
	{
		products.GET("", middleware.RequirePermission(permission.ProductMaintenance, permission.ActionView), h.ListProducts)
		products.GET("/:id", middleware.RequirePermission(permission.ProductMaintenance, permission.ActionView), h.GetProduct)
		products.POST("", middleware.RequirePermission(permission.ProductMaintenance, permission.ActionAdd), h.CreateProduct)
		products.PUT("/status", middleware.RequirePermission(permission.ProductMaintenance, permission.ActionApprove), h.ChangeStatus)
		products.PUT("/:id", middleware.RequirePermission(permission.ProductMaintenance, permission.ActionEdit), h.UpdateProduct)
		products.DELETE("/:id", middleware.RequirePermission(permission.ProductMaintenance, permission.ActionDelete), h.DeleteProduct)
	}
}

// CreateProduct handles POST /products
// @Summary      Create product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateProductRequest  true  "Product Payload"
// @Success      201      {object}  response.Response{entity=model.Product}
// @Failure      400      {object}  response.Response
// @Router       /products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, "Product created", product))
}

// ListProducts handles GET /products
// @Summary      List products
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Review status filter"
// @Param        q       query     string  false  "Search term"
// @Success      200     {object}  response.Response
// @Router       /products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	f := pagination.ParseListFilter(c)

	products, total, err := h.productService.ListProducts(c.Request.Context(), f.Status, f.Search, f.Page, f.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Products", listEnvelope(products, total, f.Page, f.Limit)))
}

// GetProduct handles GET /products/:id
// @Summary      Get product by ID
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response{entity=model.Product}
// @Failure      404  {object}  response.Response
// @Router       /products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.productService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Product", product))
}

// UpdateProduct handles PUT /products/:id
// @Summary      Update product
// @Description  Updates product terms and resets the review status to Pending
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Product ID"
// @Param        payload  body      service.UpdateProductRequest  true  "Product Payload"
// @Success      200      {object}  response.Response{entity=model.Product}
// @Failure      400      {object}  response.Response
// @Router       /products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), c.Param("id"), req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Product updated", product))
}

// DeleteProduct handles DELETE /products/:id
// @Summary      Delete product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.productService.DeleteProduct(c.Request.Context(), c.Param("id"), actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Product deleted", nil))
}

// ChangeStatus handles PUT /products/status for batch review decisions
// @Summary      Batch change product review status
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.BatchStatusChangeRequest  true  "Batch Status Payload"
// @Success      200      {object}  response.Response{entity=service.BatchStatusResult}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /products/status [put]
func (h *ProductHandler) ChangeStatus(c *gin.Context) {
	var req service.BatchStatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.approvalService.BatchChangeStatus(c.Request.Context(), permission.ProductMaintenance, req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Status change processed", result))
}
