package handler

import (
	"net/http"

	"saccosphere/internal/middleware"
	"saccosphere/internal/permission"
	"saccosphere/internal/service"
	"saccosphere/pkg/response"

	"github.com/gin-gonic/gin"
)

type LoanHandler struct {
	loanService service.LoanService
}

func NewLoanHandler(loanService service.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

func (h *LoanHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/loans/calculate", middleware.RequirePermission(permission.LoanCalculator, permission.ActionView), h.CalculateSchedule)
}

// CalculateSchedule handles POST /loans/calculate
// @Summary      Calculate loan schedule
// @Description  Produces a level-payment amortization schedule for the given terms
// @Tags         loans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.LoanScheduleRequest  true  "Loan Terms"
// @Success      200      {object}  response.Response{entity=service.LoanSchedule}
// @Failure      400      {object}  response.Response
// @Router       /loans/calculate [post]
func (h *LoanHandler) CalculateSchedule(c *gin.Context) {
	var req service.LoanScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	schedule, err := h.loanService.CalculateSchedule(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Loan schedule", schedule))
}
