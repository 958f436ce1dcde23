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

type TransactionHandler struct {
	transactionService service.TransactionService
	approvalService    service.ApprovalService
}

func NewTransactionHandler(transactionService service.TransactionService, approvalService service.ApprovalService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, approvalService: approvalService}
}

func (h *TransactionHandler) RegisterRoutes(router *gin.RouterGroup) {
	transactions := router.Group("/transactions")
	{
		transactions.GET("", middleware.RequirePermission(permission.TransactionMaintenance, permission.ActionView), h.ListTransactions)
		transactions.GET("/:id", middleware.RequirePermission(permission.TransactionMaintenance, permission.ActionView), h.GetTransaction)
		transactions.POST("", middleware.RequirePermission(permission.TransactionMaintenance, permission.ActionAdd), h.CreateTransaction)
		transactions.PUT("/status", middleware.RequirePermission(permission.TransactionMaintenance, permission.ActionApprove), h.ChangeStatus)
		transactions.DELETE("/:id", middleware.RequirePermission(permission.TransactionMaintenance, permission.ActionDelete), h.DeleteTransaction)
	}
}

// CreateTransaction handles POST /transactions
// @Summary      Capture transaction
// @Description  Records a pending debit/credit pair between two active accounts of the same sacco
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTransactionRequest  true  "Transaction Payload"
// @Success      201      {object}  response.Response{entity=model.Transaction}
// @Failure      400      {object}  response.Response
// @Router       /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req service.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	txn, err := h.transactionService.CreateTransaction(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, "Transaction captured", txn))
}

// ListTransactions handles GET /transactions
// @Summary      List transactions
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Review status filter"
// @Param        q       query     string  false  "Search term"
// @Success      200     {object}  response.Response
// @Router       /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	f := pagination.ParseListFilter(c)

	txns, total, err := h.transactionService.ListTransactions(c.Request.Context(), f.Status, f.Search, f.Page, f.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Transactions", listEnvelope(txns, total, f.Page, f.Limit)))
}

// GetTransaction handles GET /transactions/:id
// @Summary      Get transaction by ID
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Transaction ID"
// @Success      200  {object}  response.Response{entity=model.Transaction}
// @Failure      404  {object}  response.Response
// @Router       /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	txn, err := h.transactionService.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Transaction", txn))
}

// DeleteTransaction handles DELETE /transactions/:id
// @Summary      Delete transaction
// @Description  Soft deletes a transaction that has not been posted
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Transaction ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	if err := h.transactionService.DeleteTransaction(c.Request.Context(), c.Param("id"), actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Transaction deleted", nil))
}

// ChangeStatus handles PUT /transactions/status for batch review decisions
// @Summary      Batch change transaction review status
// @Description  Approving a transaction posts the amount between its accounts
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.BatchStatusChangeRequest  true  "Batch Status Payload"
// @Success      200      {object}  response.Response{entity=service.BatchStatusResult}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /transactions/status [put]
func (h *TransactionHandler) ChangeStatus(c *gin.Context) {
	var req service.BatchStatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.approvalService.BatchChangeStatus(c.Request.Context(), permission.TransactionMaintenance, req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Status change processed", result))
}
