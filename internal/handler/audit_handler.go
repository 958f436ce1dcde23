package handler

import (
	"net/http"
	"time"

	"saccosphere/internal/middleware"
	"saccosphere/internal/permission"
	"saccosphere/internal/service"
	"saccosphere/pkg/pagination"
	"saccosphere/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	logs := router.Group("/audit-logs")
	logs.Use(middleware.RequirePermission(permission.LogsMaintenance, permission.ActionView))
	{
		logs.GET("", h.ListLogs)
		logs.GET("/:id", h.GetLog)
	}
}

// ListLogs handles GET /audit-logs with module/action/user/date filters
// @Summary      List audit logs
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        module  query     string  false  "Module filter"
// @Param        action  query     string  false  "Action filter"
// @Param        user_id query     string  false  "User filter"
// @Param        from    query     string  false  "Start date (RFC3339)"
// @Param        to      query     string  false  "End date (RFC3339)"
// @Success      200     {object}  response.Response
// @Router       /audit-logs [get]
func (h *AuditHandler) ListLogs(c *gin.Context) {
	p := pagination.Parse(c)
	filter := service.AuditFilter{
		Module: c.Query("module"),
		Action: c.Query("action"),
		UserID: c.Query("user_id"),
		Page:   p.Page,
		Limit:  p.Limit,
	}

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid 'from' date"))
			return
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid 'to' date"))
			return
		}
		filter.To = &t
	}

	logs, total, err := h.auditService.ListLogs(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Audit logs", listEnvelope(logs, total, p.Page, p.Limit)))
}

// GetLog handles GET /audit-logs/:id
// @Summary      Get audit log by ID
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Audit Log ID"
// @Success      200  {object}  response.Response{entity=model.AuditLog}
// @Failure      404  {object}  response.Response
// @Router       /audit-logs/{id} [get]
func (h *AuditHandler) GetLog(c *gin.Context) {
	log, err := h.auditService.GetLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Audit log", log))
}
