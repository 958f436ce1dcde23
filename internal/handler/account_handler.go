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

type AccountHandler struct {
	accountService service.AccountService
}

func NewAccountHandler(accountService service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

func (h *AccountHandler) RegisterRoutes(router *gin.RouterGroup) {
	accounts := router.Group("/accounts")
	{
		accounts.GET("", middleware.RequirePermission(permission.AccountsManagement, permission.ActionView), h.ListAccounts)
		accounts.GET("/:id", middleware.RequirePermission(permission.AccountsManagement, permission.ActionView), h.GetAccount)
		accounts.POST("", middleware.RequirePermission(permission.AccountsManagement, permission.ActionAdd), h.CreateAccount)
		accounts.PUT("/:id/status", middleware.RequirePermission(permission.AccountsManagement, permission.ActionEdit), h.ChangeStatus)
		accounts.DELETE("/:id", middleware.RequirePermission(permission.AccountsManagement, permission.ActionDelete), h.DeleteAccount)
	}
}

// CreateAccount handles POST /accounts
// @Summary      Open account
// @Description  Opens an account for a member under an approved product
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateAccountRequest  true  "Account Payload"
// @Success      201      {object}  response.Response{entity=model.Account}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /accounts [post]
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req service.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, "Account opened", account))
}

// ListAccounts handles GET /accounts
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Operational status filter"
// @Param        q       query     string  false  "Search term"
// @Success      200     {object}  response.Response
// @Router       /accounts [get]
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	f := pagination.ParseListFilter(c)

	accounts, total, err := h.accountService.ListAccounts(c.Request.Context(), f.Status, f.Search, f.Page, f.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Accounts", listEnvelope(accounts, total, f.Page, f.Limit)))
}

// GetAccount handles GET /accounts/:id
// @Summary      Get account by ID
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  response.Response{entity=model.Account}
// @Failure      404  {object}  response.Response
// @Router       /accounts/{id} [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	account, err := h.accountService.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Account", account))
}

// ChangeStatus handles PUT /accounts/:id/status
// @Summary      Change account operational status
// @Description  Moves an account between Active, Inactive, Suspended and Closed
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                              true  "Account ID"
// @Param        payload  body      service.ChangeAccountStatusRequest  true  "Status Payload"
// @Success      200      {object}  response.Response{entity=model.Account}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /accounts/{id}/status [put]
func (h *AccountHandler) ChangeStatus(c *gin.Context) {
	var req service.ChangeAccountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	account, err := h.accountService.ChangeStatus(c.Request.Context(), c.Param("id"), req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Account status changed", account))
}

// DeleteAccount handles DELETE /accounts/:id
// @Summary      Delete account
// @Description  Soft deletes an account with a zero balance
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	if err := h.accountService.DeleteAccount(c.Request.Context(), c.Param("id"), actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Account deleted", nil))
}
