package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"saccosphere/internal/apperror"
	"saccosphere/internal/model"
	"saccosphere/internal/permission"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateRoleRequest struct {
	RoleID      string            `json:"role_id" binding:"required"`
	RoleName    string            `json:"role_name" binding:"required"`
	Description string            `json:"description"`
	Status      string            `json:"status" binding:"omitempty,oneof=Active Inactive"`
	Permissions permission.Grants `json:"permissions"`
}

type UpdateRoleRequest struct {
	RoleName    string            `json:"role_name" binding:"required"`
	Description string            `json:"description"`
	Status      string            `json:"status" binding:"omitempty,oneof=Active Inactive"`
	Permissions permission.Grants `json:"permissions"`
}

type RoleResponse struct {
	ID          string            `json:"id"`
	RoleID      string            `json:"role_id"`
	RoleName    string            `json:"role_name"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	Permissions permission.Grants `json:"permissions"`
	CreatedBy   string            `json:"created_by"`
	CreatedAt   string            `json:"created_at"`
}

// --- Interface ---

type RoleService interface {
	ListRoles(ctx context.Context, status string) ([]RoleResponse, error)
	GetRole(ctx context.Context, id string) (*RoleResponse, error)
	GetRoleByName(ctx context.Context, name string) (*RoleResponse, error)
	CreateRole(ctx context.Context, req CreateRoleRequest, actor Actor) (*RoleResponse, error)
	UpdateRole(ctx context.Context, id string, req UpdateRoleRequest, actor Actor) (*RoleResponse, error)
	DisableRole(ctx context.Context, id string, actor Actor) error
	ResolveMatrix(ctx context.Context, roleName string) (permission.Matrix, error)
}

type roleService struct {
	db *gorm.DB
}

func NewRoleService(db *gorm.DB) RoleService {
	return &roleService{db: db}
}

// --- Implementation ---

func (s *roleService) ListRoles(ctx context.Context, status string) ([]RoleResponse, error) {
	query := s.db.WithContext(ctx).Where("is_deleted = ?", false)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var roles []model.Role
	if err := query.Order("role_name ASC").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}

	res := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		res = append(res, toRoleResponse(r))
	}
	return res, nil
}

func (s *roleService) GetRole(ctx context.Context, id string) (*RoleResponse, error) {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid role id '%s'", id)
	}

	var role model.Role
	if err := s.db.WithContext(ctx).First(&role, "id = ? AND is_deleted = ?", roleID, false).Error; err != nil {
		return nil, apperror.NotFound("role not found")
	}

	resp := toRoleResponse(role)
	return &resp, nil
}

func (s *roleService) GetRoleByName(ctx context.Context, name string) (*RoleResponse, error) {
	var role model.Role
	if err := s.db.WithContext(ctx).Where("role_name = ? AND is_deleted = ?", name, false).First(&role).Error; err != nil {
		return nil, apperror.NotFound("role '%s' not found", name)
	}

	resp := toRoleResponse(role)
	return &resp, nil
}

func (s *roleService) CreateRole(ctx context.Context, req CreateRoleRequest, actor Actor) (*RoleResponse, error) {
	grants, err := marshalGrants(req.Permissions)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.RoleActive
	}

	role := model.Role{
		RoleID:      req.RoleID,
		RoleName:    req.RoleName,
		Description: req.Description,
		Status:      status,
		Permissions: grants,
		CreatedBy:   actor.Username,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Role{}).
			Where("role_id = ? OR role_name = ?", req.RoleID, req.RoleName).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check role uniqueness: %w", err)
		}
		if count > 0 {
			return apperror.Conflict("role id or name already exists")
		}

		if err := tx.Create(&role).Error; err != nil {
			return insertError(err, "role", "a role with this name already exists")
		}

		return writeAudit(tx, actor, model.ActionCreateRole, permission.RoleMaintenance,
			role.ID.String(), role.RoleName, map[string]any{"role_id": role.RoleID})
	})
	if err != nil {
		return nil, err
	}

	resp := toRoleResponse(role)
	return &resp, nil
}

func (s *roleService) UpdateRole(ctx context.Context, id string, req UpdateRoleRequest, actor Actor) (*RoleResponse, error) {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid role id '%s'", id)
	}

	grants, err := marshalGrants(req.Permissions)
	if err != nil {
		return nil, err
	}

	var role model.Role
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&role, "id = ? AND is_deleted = ?", roleID, false).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("role not found")
			}
			return fmt.Errorf("failed to load role: %w", err)
		}

		role.RoleName = req.RoleName
		role.Description = req.Description
		if req.Status != "" {
			role.Status = req.Status
		}
		if req.Permissions != nil {
			role.Permissions = grants
		}
		role.ModifiedBy = actor.Username

		if err := tx.Save(&role).Error; err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}

		return writeAudit(tx, actor, model.ActionUpdateRole, permission.RoleMaintenance,
			role.ID.String(), role.RoleName, map[string]any{"status": role.Status})
	})
	if err != nil {
		return nil, err
	}

	resp := toRoleResponse(role)
	return &resp, nil
}

// DisableRole soft-disables a role. Roles are never hard-deleted; users
// still referencing a disabled role simply stop resolving any permissions.
func (s *roleService) DisableRole(ctx context.Context, id string, actor Actor) error {
	roleID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid role id '%s'", id)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var role model.Role
		if err := tx.First(&role, "id = ? AND is_deleted = ?", roleID, false).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("role not found")
			}
			return fmt.Errorf("failed to load role: %w", err)
		}

		role.Status = model.RoleInactive
		role.ModifiedBy = actor.Username
		if err := tx.Save(&role).Error; err != nil {
			return fmt.Errorf("failed to disable role: %w", err)
		}

		return writeAudit(tx, actor, model.ActionUpdateRole, permission.RoleMaintenance,
			role.ID.String(), role.RoleName, map[string]any{"status": model.RoleInactive})
	})
}

// ResolveMatrix builds the permission matrix for a role name. A missing or
// disabled role resolves to an all-false matrix rather than an error, unless
// the name is a built-in admin name.
func (s *roleService) ResolveMatrix(ctx context.Context, roleName string) (permission.Matrix, error) {
	if permission.IsAdminRole(roleName) {
		return permission.BuildMatrix(roleName, nil), nil
	}

	var role model.Role
	err := s.db.WithContext(ctx).
		Where("role_name = ? AND status = ? AND is_deleted = ?", roleName, model.RoleActive, false).
		First(&role).Error
	if err != nil {
		return permission.BuildMatrix(roleName, nil), nil
	}

	var grants permission.Grants
	if role.Permissions != "" {
		// Malformed grants resolve to no permissions, not an error.
		_ = json.Unmarshal([]byte(role.Permissions), &grants)
	}
	return permission.BuildMatrix(roleName, grants), nil
}

// --- Helpers ---

func marshalGrants(grants permission.Grants) (string, error) {
	if grants == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(grants)
	if err != nil {
		return "", apperror.Validation("invalid permission grants")
	}
	return string(raw), nil
}

func toRoleResponse(r model.Role) RoleResponse {
	var grants permission.Grants
	if r.Permissions != "" {
		_ = json.Unmarshal([]byte(r.Permissions), &grants)
	}

	return RoleResponse{
		ID:          r.ID.String(),
		RoleID:      r.RoleID,
		RoleName:    r.RoleName,
		Description: r.Description,
		Status:      r.Status,
		Permissions: grants,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
