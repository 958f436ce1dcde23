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

type CreateProductRequest struct {
	ProductName               string `json:"product_name" binding:"required"`
	Currency                  string `json:"currency" binding:"required"`
	IsCreditInterest          bool   `json:"is_credit_interest"`
	IsDebitInterest           bool   `json:"is_debit_interest"`
	InterestType              string `json:"interest_type"`
	InterestCalculationRule   string `json:"interest_calculation_rule"`
	InterestFrequency         string `json:"interest_frequency"`
	AppliedOnMemberOnboarding bool   `json:"applied_on_member_onboarding"`
}

type UpdateProductRequest struct {
	ProductName               string `json:"product_name" binding:"required"`
	Currency                  string `json:"currency" binding:"required"`
	IsCreditInterest          bool   `json:"is_credit_interest"`
	IsDebitInterest           bool   `json:"is_debit_interest"`
	InterestType              string `json:"interest_type"`
	InterestCalculationRule   string `json:"interest_calculation_rule"`
	InterestFrequency         string `json:"interest_frequency"`
	AppliedOnMemberOnboarding bool   `json:"applied_on_member_onboarding"`
}

// --- Interface ---

type ProductService interface {
	CreateProduct(ctx context.Context, req CreateProductRequest, actor Actor) (*model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	ListProducts(ctx context.Context, status, search string, page, limit int) ([]model.Product, int64, error)
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest, actor Actor) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string, actor Actor) error
}

type productService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) ProductService {
	return &productService{db: db}
}

// --- Implementation ---

func (s *productService) CreateProduct(ctx context.Context, req CreateProductRequest, actor Actor) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		productID, err := nextProductID(tx)
		if err != nil {
			return err
		}

		product = model.Product{
			ProductID:                 productID,
			ProductName:               req.ProductName,
			Currency:                  req.Currency,
			IsCreditInterest:          req.IsCreditInterest,
			IsDebitInterest:           req.IsDebitInterest,
			InterestType:              req.InterestType,
			InterestCalculationRule:   req.InterestCalculationRule,
			InterestFrequency:         req.InterestFrequency,
			AppliedOnMemberOnboarding: req.AppliedOnMemberOnboarding,
			Status:                    workflow.StatusPending,
			CreatedBy:                 actor.Username,
		}
		if err := tx.Create(&product).Error; err != nil {
			return insertError(err, "product", "product id collision, please retry")
		}

		return writeAudit(tx, actor, model.ActionCreateProduct, permission.ProductMaintenance,
			product.ID.String(), product.ProductName, map[string]any{"product_id": product.ProductID})
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid product id '%s'", id)
	}

	var product model.Product
	if err := s.db.WithContext(ctx).First(&product, "id = ? AND is_deleted = ?", productID, false).Error; err != nil {
		return nil, apperror.NotFound("product not found")
	}
	return &product, nil
}

func (s *productService) ListProducts(ctx context.Context, status, search string, page, limit int) ([]model.Product, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Product{}).Where("is_deleted = ?", false)

	if status != "" {
		if !workflow.ValidStatus(workflow.ApprovalStatus(status)) {
			return nil, 0, apperror.Validation("invalid status filter '%s'", status)
		}
		query = query.Where("status = ?", status)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("product_id ILIKE ? OR product_name ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []model.Product
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, total, nil
}

// UpdateProduct edits a product and sends it back to Pending for re-review.
// Approved terms cannot drift silently; any change resets the approval.
func (s *productService) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest, actor Actor) (*model.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid product id '%s'", id)
	}

	var product model.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, "id = ? AND is_deleted = ?", productID, false).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("product not found")
			}
			return fmt.Errorf("failed to load product: %w", err)
		}

		product.ProductName = req.ProductName
		product.Currency = req.Currency
		product.IsCreditInterest = req.IsCreditInterest
		product.IsDebitInterest = req.IsDebitInterest
		product.InterestType = req.InterestType
		product.InterestCalculationRule = req.InterestCalculationRule
		product.InterestFrequency = req.InterestFrequency
		product.AppliedOnMemberOnboarding = req.AppliedOnMemberOnboarding
		product.Status = workflow.StatusPending
		product.ApprovedBy = ""
		product.ApprovedAt = nil
		product.ModifiedBy = actor.Username

		if err := tx.Save(&product).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		return writeAudit(tx, actor, model.ActionUpdateProduct, permission.ProductMaintenance,
			product.ID.String(), product.ProductName, nil)
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id string, actor Actor) error {
	productID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid product id '%s'", id)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product model.Product
		if err := tx.First(&product, "id = ? AND is_deleted = ?", productID, false).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("product not found")
			}
			return fmt.Errorf("failed to load product: %w", err)
		}

		var inUse int64
		if err := tx.Model(&model.Account{}).
			Where("product_id = ? AND is_deleted = ?", product.ID, false).
			Count(&inUse).Error; err != nil {
			return fmt.Errorf("failed to check product usage: %w", err)
		}
		if inUse > 0 {
			return apperror.Conflict("product %s has open accounts", product.ProductID)
		}

		product.IsDeleted = true
		product.ModifiedBy = actor.Username
		if err := tx.Save(&product).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}

		return writeAudit(tx, actor, model.ActionDeleteProduct, permission.ProductMaintenance,
			product.ID.String(), product.ProductID, nil)
	})
}

// nextProductID draws a random six digit product id under the "P-" prefix,
// retrying on the rare collision.
func nextProductID(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		digits, err := randomDigits(6)
		if err != nil {
			return "", err
		}
		candidate := "P-" + digits
		var exists int64
		if err := tx.Model(&model.Product{}).Where("product_id = ?", candidate).Count(&exists).Error; err != nil {
			return "", fmt.Errorf("failed to check product id: %w", err)
		}
		if exists == 0 {
			return candidate, nil
		}
	}
	return "", errors.New("failed to allocate a unique product id")
}
