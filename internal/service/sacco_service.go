package service

import (
	"context"
	"errors"
	"fmt"

	"saccosphere/internal/apperror"
	"saccosphere/internal/model"
	"saccosphere/internal/permission"
	"saccosphere/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateSaccoRequest struct {
	SaccoID      string `json:"sacco_id" binding:"required"`
	LicenseID    string `json:"license_id" binding:"required"`
	SaccoName    string `json:"sacco_name" binding:"required"`
	Address      string `json:"address"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
}

type UpdateSaccoRequest struct {
	SaccoName    string `json:"sacco_name" binding:"required"`
	Address      string `json:"address"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
}

// --- Interface ---

type SaccoService interface {
	CreateSacco(ctx context.Context, req CreateSaccoRequest, actor Actor) (*model.Sacco, error)
	GetSacco(ctx context.Context, id string) (*model.Sacco, error)
	ListSaccos(ctx context.Context, status, search string, page, limit int) ([]model.Sacco, int64, error)
	UpdateSacco(ctx context.Context, id string, req UpdateSaccoRequest, actor Actor) (*model.Sacco, error)
	DeleteSacco(ctx context.Context, id string, actor Actor) error
}

type saccoService struct {
	db *gorm.DB
}

func NewSaccoService(db *gorm.DB) SaccoService {
	return &saccoService{db: db}
}

// --- Implementation ---

func (s *saccoService) CreateSacco(ctx context.Context, req CreateSaccoRequest, actor Actor) (*model.Sacco, error) {
	var sacco model.Sacco
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Sacco{}).
			Where("sacco_id = ? OR license_id = ?", req.SaccoID, req.LicenseID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check sacco uniqueness: %w", err)
		}
		if count > 0 {
			return apperror.Conflict("sacco id or license id already exists")
		}

		sacco = model.Sacco{
			SaccoID:      req.SaccoID,
			LicenseID:    req.LicenseID,
			SaccoName:    req.SaccoName,
			Address:      req.Address,
			ContactPhone: req.ContactPhone,
			ContactEmail: req.ContactEmail,
			Status:       workflow.StatusPending,
			CreatedBy:    actor.Username,
		}
		if err := tx.Create(&sacco).Error; err != nil {
			return insertError(err, "sacco",
				"a sacco with this sacco id or license already exists")
		}

		return writeAudit(tx, actor, model.ActionCreateSacco, permission.SaccoMaintenance,
			sacco.ID.String(), sacco.SaccoName, map[string]any{"sacco_id": sacco.SaccoID})
	})
	if err != nil {
		return nil, err
	}
	return &sacco, nil
}

func (s *saccoService) GetSacco(ctx context.Context, id string) (*model.Sacco, error) {
	saccoID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid sacco id '%s'", id)
	}

	var sacco model.Sacco
	if err := s.db.WithContext(ctx).First(&sacco, "id = ? AND is_deleted = ?", saccoID, false).Error; err != nil {
		return nil, apperror.NotFound("sacco not found")
	}
	return &sacco, nil
}

func (s *saccoService) ListSaccos(ctx context.Context, status, search string, page, limit int) ([]model.Sacco, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Sacco{}).Where("is_deleted = ?", false)

	if status != "" {
		if !workflow.ValidStatus(workflow.ApprovalStatus(status)) {
			return nil, 0, apperror.Validation("invalid status filter '%s'", status)
		}
		query = query.Where("status = ?", status)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("sacco_id ILIKE ? OR sacco_name ILIKE ? OR license_id ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count saccos: %w", err)
	}

	var saccos []model.Sacco
	err := query.Order("sacco_name ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&saccos).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch saccos: %w", err)
	}
	return saccos, total, nil
}

func (s *saccoService) UpdateSacco(ctx context.Context, id string, req UpdateSaccoRequest, actor Actor) (*model.Sacco, error) {
	saccoID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid sacco id '%s'", id)
	}

	var sacco model.Sacco
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sacco, "id = ? AND is_deleted = ?", saccoID, false).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("sacco not found")
			}
			return fmt.Errorf("failed to load sacco: %w", err)
		}

		sacco.SaccoName = req.SaccoName
		sacco.Address = req.Address
		sacco.ContactPhone = req.ContactPhone
		sacco.ContactEmail = req.ContactEmail
		sacco.ModifiedBy = actor.Username

		if err := tx.Save(&sacco).Error; err != nil {
			return fmt.Errorf("failed to update sacco: %w", err)
		}

		return writeAudit(tx, actor, model.ActionUpdateSacco, permission.SaccoMaintenance,
			sacco.ID.String(), sacco.SaccoName, nil)
	})
	if err != nil {
		return nil, err
	}
	return &sacco, nil
}

func (s *saccoService) DeleteSacco(ctx context.Context, id string, actor Actor) error {
	saccoID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid sacco id '%s'", id)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sacco model.Sacco
		if err := tx.First(&sacco, "id = ? AND is_deleted = ?", saccoID, false).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("sacco not found")
			}
			return fmt.Errorf("failed to load sacco: %w", err)
		}

		var inUse int64
		if err := tx.Model(&model.Account{}).
			Where("sacco_id = ? AND is_deleted = ?", sacco.ID, false).
			Count(&inUse).Error; err != nil {
			return fmt.Errorf("failed to check sacco usage: %w", err)
		}
		if inUse > 0 {
			return apperror.Conflict("sacco %s has open accounts", sacco.SaccoID)
		}

		sacco.IsDeleted = true
		sacco.ModifiedBy = actor.Username
		if err := tx.Save(&sacco).Error; err != nil {
			return fmt.Errorf("failed to delete sacco: %w", err)
		}

		return writeAudit(tx, actor, model.ActionDeleteSacco, permission.SaccoMaintenance,
			sacco.ID.String(), sacco.SaccoID, nil)
	})
}
