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

type MemberHandler struct {
	memberService   service.MemberService
	accountService  service.AccountService
	approvalService service.ApprovalService
}

func NewMemberHandler(memberService service.MemberService, accountService service.AccountService, approvalService service.ApprovalService) *MemberHandler {
	return &MemberHandler{
		memberService:   memberService,
		accountService:  accountService,
		approvalService: approvalService,
	}
}

func (h *MemberHandler) RegisterRoutes(router *gin.RouterGroup) {
	members := router.Group("/members")
	{
		members.GET("", middleware.RequirePermission(permission.MemberMaintenance, permission.ActionView), h.ListMembers)
		members.GET("/:id", middleware.RequirePermission(permission.MemberMaintenance, permission.ActionView), h.GetMember)
		members.GET("/:id/accounts", middleware.RequirePermission(permission.MemberMaintenance, permission.ActionView), h.ListMemberAccounts)
		members.POST("", middleware.RequirePermission(permission.MemberMaintenance, permission.ActionAdd), h.CreateMember)
		members.PUT("/status", middleware.RequirePermission(permission.MemberMaintenance, permission.ActionApprove), h.ChangeStatus)
		members.PUT("/:id", middleware.RequirePermission(permission.MemberMaintenance, permission.ActionEdit), h.UpdateMember)
		members.DELETE("/:id", middleware.RequirePermission(permission.MemberMaintenance, permission.ActionDelete), h.DeleteMember)
	}
}

// CreateMember handles POST /members
// @Summary      Onboard a new member
// @Description  Creates a member and opens an account for every approved onboarding product, atomically
// @Tags         members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateMemberRequest  true  "Member Payload"
// @Success      201      {object}  response.Response{entity=service.OnboardingResult}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /members [post]
func (h *MemberHandler) CreateMember(c *gin.Context) {
	var req service.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.memberService.CreateMember(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, "Member created", result))
}

// ListMembers handles GET /members with status and search filters
// @Summary      List members
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Review status filter"
// @Param        q       query     string  false  "Search term"
// @Success      200     {object}  response.Response
// @Router       /members [get]
func (h *MemberHandler) ListMembers(c *gin.Context) {
	f := pagination.ParseListFilter(c)

	members, total, err := h.memberService.ListMembers(c.Request.Context(), f.Status, f.Search, f.Page, f.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Members", listEnvelope(members, total, f.Page, f.Limit)))
}

// GetMember handles GET /members/:id
// @Summary      Get member by ID
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Member ID"
// @Success      200  {object}  response.Response{entity=model.Member}
// @Failure      404  {object}  response.Response
// @Router       /members/{id} [get]
func (h *MemberHandler) GetMember(c *gin.Context) {
	member, err := h.memberService.GetMember(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Member", member))
}

// ListMemberAccounts handles GET /members/:id/accounts
// @Summary      List a member's accounts
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Member ID"
// @Success      200  {object}  response.Response
// @Router       /members/{id}/accounts [get]
func (h *MemberHandler) ListMemberAccounts(c *gin.Context) {
	accounts, err := h.accountService.ListAccountsByMember(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Member accounts", accounts))
}

// UpdateMember handles PUT /members/:id
// @Summary      Update member
// @Tags         members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "Member ID"
// @Param        payload  body      service.UpdateMemberRequest  true  "Member Payload"
// @Success      200      {object}  response.Response{entity=model.Member}
// @Failure      400      {object}  response.Response
// @Router       /members/{id} [put]
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	var req service.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	member, err := h.memberService.UpdateMember(c.Request.Context(), c.Param("id"), req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Member updated", member))
}

// DeleteMember handles DELETE /members/:id
// @Summary      Delete member
// @Tags         members
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Member ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /members/{id} [delete]
func (h *MemberHandler) DeleteMember(c *gin.Context) {
	if err := h.memberService.DeleteMember(c.Request.Context(), c.Param("id"), actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Member deleted", nil))
}

// ChangeStatus handles PUT /members/status for batch review decisions
// @Summary      Batch change member review status
// @Description  Moves each listed member to the target status; records succeed or fail independently
// @Tags         members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.BatchStatusChangeRequest  true  "Batch Status Payload"
// @Success      200      {object}  response.Response{entity=service.BatchStatusResult}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /members/status [put]
func (h *MemberHandler) ChangeStatus(c *gin.Context) {
	var req service.BatchStatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.approvalService.BatchChangeStatus(c.Request.Context(), permission.MemberMaintenance, req, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Status change processed", result))
}
