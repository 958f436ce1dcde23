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

type SaccoHandler struct {
	saccoService    service.SaccoService
	approvalService service.ApprovalService
}

func NewSaccoHandler(saccoService service.SaccoService, approvalService service.ApprovalService) *SaccoHandler {
	return &SaccoHandler{saccoService: saccoService, approvalService: approvalService}
}

func (h *SaccoHandler) RegisterRoutes(router *gin.RouterGroup) {
	saccos := router.Group("/saccos")
	{
		saccos.GET("", middleware.RequirePermission(permission.SaccoMaintenance, permission.ActionView), h.ListSaccos)
		saccos.GET("/:id", middleware.RequirePermission(permission.SaccoMaintenance, permission.ActionView), h.GetSacco)
		saccos.POST("", middleware.RequirePermission(permission.SaccoMaintenance, permission.ActionAdd), h.CreateSacco)
		saccos.PUT("/status", middleware.RequirePermission(permission.SaccoMaintenance, permission.ActionApprove), h.ChangeStatus)
		saccos.PUT("/:id", middleware.RequirePermission(permission.SaccoMaintenance, permission.ActionEdit), h.UpdateSacco)
		saccos.DELETE("/:id", middleware.RequirePermission(permission.SaccoMaintenance, permission.ActionDelete), h.DeleteSacco)
	}
}

// CreateSacco handles POST /saccos
// @Summary      Register sacco
// @Tags         saccos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateSaccoRequest  true  "Sacco Payload"
// @Success      201      {object}  response.Response{entity=model.Sacco}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /saccos [post]
func (h *SaccoHandler) CreateSacco(c *gin.Context) {
	var req service.CreateSaccoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sacco, err := h.saccoService.CreateSacco(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, "Sacco registered", sacco))
}

// ListSaccos handles GET /saccos
// @Summary      List saccos
// @Tags         saccos
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Review status filter"
// @Param        q       query     string  false  "Search term"
// @Success      200     {object}  response.Response
// @Router       /saccos [get]
func (h *SaccoHandler) ListSaccos(c *gin.Context) {
	f := pagination.ParseListFilter(c)

	saccos, total, err := h.saccoService.ListSaccos(c.Request.Context(), f.Status, f.Search, f.Page, f.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Saccos", listEnvelope(saccos, total, f.Page, f.Limit)))
}

// GetSacco handles GET /saccos/:id
// @Summary      Get sacco by ID
// @Tags         saccos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sacco ID"
// @Success      200  {object}  response.Response{entity=model.Sacco}
// @Failure      404  {object}  response.Response
// @Router       /saccos/{id} [get]
func (h *SaccoHandler) GetSacco(c *gin.Context) {
	sacco, err := h.saccoService.GetSacco(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Sacco", sacco))
}

// UpdateSacco handles PUT /saccos/:id
// @Summary      Update sacco
// @Tags         saccos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Sacco ID"
// @Param        payload  body      service.UpdateSaccoRequest  true  "Sacco Payload"
// @Success      200      {object}  response.Response{entity=model.Sacco}
// @Failure      400      {object}  response.Response
// @Router       /saccos/{id} [put]
func (h *SaccoHandler) UpdateSacco(c *gin.Context) {
	var req service.UpdateSaccoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sacco, err := h.saccoService.UpdateSacco(c.Request.Context(), c.Param("id"), req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Sacco updated", sacco))
}

// DeleteSacco handles DELETE /saccos/:id
// @Summary      Delete sacco
// @Tags         saccos
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Sacco ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /saccos/{id} [delete]
func (h *SaccoHandler) DeleteSacco(c *gin.Context) {
	if err := h.saccoService.DeleteSacco(c.Request.Context(), c.Param("id"), actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Sacco deleted", nil))
}

// ChangeStatus handles PUT /saccos/status for batch review decisions
// @Summary      Batch change sacco review status
// @Tags         saccos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.BatchStatusChangeRequest  true  "Batch Status Payload"
// @Success      200      {object}  response.Response{entity=service.BatchStatusResult}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /saccos/status [put]
func (h *SaccoHandler) ChangeStatus(c *gin.Context) {
	var req service.BatchStatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.approvalService.BatchChangeStatus(c.Request.Context(), permission.SaccoMaintenance, req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Status change processed", result))
}
