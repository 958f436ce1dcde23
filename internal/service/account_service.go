package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"saccosphere/internal/apperror"
	"saccosphere/internal/model"
	"saccosphere/internal/permission"
	"saccosphere/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateAccountRequest struct {
	MemberID    string `json:"member_id" binding:"required"`
	ProductID   string `json:"product_id" binding:"required"`
	SaccoID     string `json:"sacco_id"`
	AccountName string `json:"account_name"`
	Remarks     string `json:"remarks"`
}

type ChangeAccountStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Remarks string `json:"remarks"`
}

// --- Interface ---

type AccountService interface {
	CreateAccount(ctx context.Context, req CreateAccountRequest, actor Actor) (*model.Account, error)
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	ListAccounts(ctx context.Context, status, search string, page, limit int) ([]model.Account, int64, error)
	ListAccountsByMember(ctx context.Context, memberID string) ([]model.Account, error)
	ChangeStatus(ctx context.Context, id string, req ChangeAccountStatusRequest, actor Actor) (*model.Account, error)
	DeleteAccount(ctx context.Context, id string, actor Actor) error
}

type accountService struct {
	db *gorm.DB
}

func NewAccountService(db *gorm.DB) AccountService {
	return &accountService{db: db}
}

// --- ID helpers ---

// DeriveAccountID builds the account identifier from the product and member
// public numbers: the digits of both, concatenated under an "A-" prefix.
// "P-123456" and "M-000042" yield "A-123456000042".
func DeriveAccountID(productID, memberNo string) (string, error) {
	productDigits, ok := digitsAfterPrefix(productID)
	if !ok {
		return "", apperror.Validation("malformed product id '%s'", productID)
	}
	memberDigits, ok := digitsAfterPrefix(memberNo)
	if !ok {
		return "", apperror.Validation("malformed member number '%s'", memberNo)
	}
	return "A-" + productDigits + memberDigits, nil
}

func digitsAfterPrefix(id string) (string, bool) {
	_, rest, found := strings.Cut(id, "-")
	if !found || rest == "" {
		return "", false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return rest, true
}

// generateAccountNumber produces a random 10-digit account number that is not
// yet taken. Collisions retry a bounded number of times.
func generateAccountNumber(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		candidate, err := randomDigits(10)
		if err != nil {
			return "", err
		}
		var exists int64
		if err := tx.Model(&model.Account{}).Where("account_number = ?", candidate).Count(&exists).Error; err != nil {
			return "", fmt.Errorf("failed to check account number: %w", err)
		}
		if exists == 0 {
			return candidate, nil
		}
	}
	return "", errors.New("failed to allocate a unique account number")
}

func randomDigits(n int) (string, error) {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
	v, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("failed to draw random number: %w", err)
	}
	return fmt.Sprintf("%0*d", n, v), nil
}

// --- Implementation ---

func (s *accountService) CreateAccount(ctx context.Context, req CreateAccountRequest, actor Actor) (*model.Account, error) {
	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		return nil, apperror.Validation("invalid member id '%s'", req.MemberID)
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apperror.Validation("invalid product id '%s'", req.ProductID)
	}

	var account model.Account
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member model.Member
		if err := tx.First(&member, "id = ? AND is_deleted = ?", memberID, false).Error; err != nil {
			return apperror.NotFound("member not found")
		}
		var product model.Product
		if err := tx.First(&product, "id = ? AND is_deleted = ?", productID, false).Error; err != nil {
			return apperror.NotFound("product not found")
		}
		if product.Status != workflow.StatusApproved {
			return apperror.Validation("product '%s' is not approved", product.ProductID)
		}

		var sacco *uuid.UUID
		if req.SaccoID != "" {
			parsed, err := uuid.Parse(req.SaccoID)
			if err != nil {
				return apperror.Validation("invalid sacco id '%s'", req.SaccoID)
			}
			var count int64
			if err := tx.Model(&model.Sacco{}).Where("id = ? AND is_deleted = ?", parsed, false).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check sacco: %w", err)
			}
			if count == 0 {
				return apperror.NotFound("sacco not found")
			}
			sacco = &parsed
		}

		accountID, err := DeriveAccountID(product.ProductID, member.MemberNo)
		if err != nil {
			return err
		}
		var exists int64
		if err := tx.Model(&model.Account{}).Where("account_id = ?", accountID).Count(&exists).Error; err != nil {
			return fmt.Errorf("failed to check account id: %w", err)
		}
		if exists > 0 {
			return apperror.Conflict("account %s already exists for this member and product", accountID)
		}

		number, err := generateAccountNumber(tx)
		if err != nil {
			return err
		}

		name := req.AccountName
		if name == "" {
			name = member.FirstName + " " + member.LastName + " - " + product.ProductName
		}

		account = model.Account{
			AccountID:     accountID,
			MemberID:      member.ID,
			ProductID:     product.ID,
			SaccoID:       sacco,
			AccountName:   name,
			AccountNumber: number,
			Status:        workflow.AccountActive,
			Remarks:       req.Remarks,
			CreatedBy:     actor.Username,
		}
		if err := tx.Create(&account).Error; err != nil {
			return insertError(err, "account",
				"account %s already exists for this member and product", accountID)
		}

		return writeAudit(tx, actor, model.ActionCreateAccount, permission.AccountsManagement,
			account.ID.String(), account.AccountID, map[string]any{"account_number": account.AccountNumber})
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *accountService) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid account id '%s'", id)
	}

	var account model.Account
	err = s.db.WithContext(ctx).
		Preload("Member").Preload("Product").Preload("Sacco").
		First(&account, "id = ? AND is_deleted = ?", accountID, false).Error
	if err != nil {
		return nil, apperror.NotFound("account not found")
	}
	return &account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, status, search string, page, limit int) ([]model.Account, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Account{}).Where("is_deleted = ?", false)

	if status != "" {
		if !workflow.ValidOperationalStatus(workflow.OperationalStatus(status)) {
			return nil, 0, apperror.Validation("invalid status filter '%s'", status)
		}
		query = query.Where("status = ?", status)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("account_id ILIKE ? OR account_number ILIKE ? OR account_name ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	var accounts []model.Account
	err := query.Preload("Member").Preload("Product").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&accounts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	return accounts, total, nil
}

func (s *accountService) ListAccountsByMember(ctx context.Context, memberID string) ([]model.Account, error) {
	id, err := uuid.Parse(memberID)
	if err != nil {
		return nil, apperror.Validation("invalid member id '%s'", memberID)
	}

	var accounts []model.Account
	err = s.db.WithContext(ctx).
		Preload("Product").
		Where("member_id = ? AND is_deleted = ?", id, false).
		Order("created_at ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member accounts: %w", err)
	}
	return accounts, nil
}

// ChangeStatus moves an account between its operational states. This is a
// direct maintenance action, not a verifier review, but it still stamps who
// changed what and when.
func (s *accountService) ChangeStatus(ctx context.Context, id string, req ChangeAccountStatusRequest, actor Actor) (*model.Account, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid account id '%s'", id)
	}

	target := workflow.OperationalStatus(req.Status)
	if !workflow.ValidOperationalStatus(target) {
		return nil, apperror.Validation("invalid account status '%s'", req.Status)
	}

	var account model.Account
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&account, "id = ? AND is_deleted = ?", accountID, false).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("account not found")
			}
			return fmt.Errorf("failed to load account: %w", err)
		}

		if account.Status == workflow.AccountClosed && !actor.IsAdmin() {
			return apperror.Conflict("account %s is closed", account.AccountID)
		}

		now := time.Now()
		account.Status = target
		if req.Remarks != "" {
			account.Remarks = req.Remarks
		}
		account.StatusChangedBy = actor.Username
		account.StatusChangedAt = &now
		account.ModifiedBy = actor.Username

		if err := tx.Save(&account).Error; err != nil {
			return fmt.Errorf("failed to change account status: %w", err)
		}

		return writeAudit(tx, actor, model.ActionChangeStatus, permission.AccountsManagement,
			account.ID.String(), account.AccountID, map[string]any{"status": target})
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *accountService) DeleteAccount(ctx context.Context, id string, actor Actor) error {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid account id '%s'", id)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account model.Account
		if err := tx.First(&account, "id = ? AND is_deleted = ?", accountID, false).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("account not found")
			}
			return fmt.Errorf("failed to load account: %w", err)
		}

		if !account.AvailableBalance.IsZero() {
			return apperror.Conflict("account %s still holds a balance", account.AccountID)
		}

		account.IsDeleted = true
		account.ModifiedBy = actor.Username
		if err := tx.Save(&account).Error; err != nil {
			return fmt.Errorf("failed to delete account: %w", err)
		}

		return writeAudit(tx, actor, model.ActionDeleteAccount, permission.AccountsManagement,
			account.ID.String(), account.AccountID, nil)
	})
}
