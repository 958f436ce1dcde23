package service

import (
	"context"
	"fmt"
	"time"

	"saccosphere/internal/apperror"
	"saccosphere/internal/model"

	"gorm.io/gorm"
)

// AuditFilter narrows the log listing. Zero values mean no filter.
type AuditFilter struct {
	Module string
	Action string
	UserID string
	From   *time.Time
	To     *time.Time
	Page   int
	Limit  int
}

type AuditService interface {
	ListLogs(ctx context.Context, filter AuditFilter) ([]model.AuditLog, int64, error)
	GetLog(ctx context.Context, id string) (*model.AuditLog, error)
}

type auditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) AuditService {
	return &auditService{db: db}
}

func (s *auditService) ListLogs(ctx context.Context, filter AuditFilter) ([]model.AuditLog, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.AuditLog{})

	if filter.Module != "" {
		query = query.Where("module = ?", filter.Module)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	var logs []model.AuditLog
	err := query.Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return logs, total, nil
}

func (s *auditService) GetLog(ctx context.Context, id string) (*model.AuditLog, error) {
	var log model.AuditLog
	if err := s.db.WithContext(ctx).Preload("User").First(&log, "id = ?", id).Error; err != nil {
		return nil, apperror.NotFound("audit log not found")
	}
	return &log, nil
}
