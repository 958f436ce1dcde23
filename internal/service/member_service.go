package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"saccosphere/internal/apperror"
	"saccosphere/internal/model"
	"saccosphere/internal/permission"
	"saccosphere/internal/repository"
	"saccosphere/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateMemberRequest struct {
	Title                    string     `json:"title"`
	FirstName                string     `json:"first_name" binding:"required"`
	LastName                 string     `json:"last_name" binding:"required"`
	Category                 string     `json:"category"`
	Gender                   string     `json:"gender"`
	DateOfBirth              *time.Time `json:"date_of_birth"`
	Nationality              string     `json:"nationality"`
	IdentificationType       string     `json:"identification_type"`
	IdentificationNumber     string     `json:"identification_number" binding:"required"`
	IdentificationExpiryDate *time.Time `json:"identification_expiry_date"`
	KraPin                   string     `json:"kra_pin"`
	MaritalStatus            string     `json:"marital_status"`
	Country                  string     `json:"country"`
	County                   string     `json:"county"`
	Email                    string     `json:"email" binding:"omitempty,email"`
	PersonalPhone            string     `json:"personal_phone"`
	AlternativePhone         string     `json:"alternative_phone"`
	NextOfKin                string     `json:"next_of_kin"`
	Photo                    string     `json:"photo"`
	Signature                string     `json:"signature"`
	SaccoID                  string     `json:"sacco_id"`
}

type UpdateMemberRequest struct {
	Title                    string     `json:"title"`
	FirstName                string     `json:"first_name" binding:"required"`
	LastName                 string     `json:"last_name" binding:"required"`
	Category                 string     `json:"category"`
	Gender                   string     `json:"gender"`
	DateOfBirth              *time.Time `json:"date_of_birth"`
	Nationality              string     `json:"nationality"`
	IdentificationType       string     `json:"identification_type"`
	IdentificationNumber     string     `json:"identification_number"`
	IdentificationExpiryDate *time.Time `json:"identification_expiry_date"`
	KraPin                   string     `json:"kra_pin"`
	MaritalStatus            string     `json:"marital_status"`
	Country                  string     `json:"country"`
	County                   string     `json:"county"`
	Email                    string     `json:"email" binding:"omitempty,email"`
	PersonalPhone            string     `json:"personal_phone"`
	AlternativePhone         string     `json:"alternative_phone"`
	NextOfKin                string     `json:"next_of_kin"`
	Photo                    string     `json:"photo"`
	Signature                string     `json:"signature"`
}

// OnboardingResult reports what the member creation produced: the member plus
// the accounts opened from onboarding-flagged products.
type OnboardingResult struct {
	Member   model.Member    `json:"member"`
	Accounts []model.Account `json:"accounts"`
}

// --- Interface ---

type MemberService interface {
	CreateMember(ctx context.Context, req CreateMemberRequest, actor Actor) (*OnboardingResult, error)
	GetMember(ctx context.Context, id string) (*model.Member, error)
	ListMembers(ctx context.Context, status, search string, page, limit int) ([]model.Member, int64, error)
	UpdateMember(ctx context.Context, id string, req UpdateMemberRequest, actor Actor) (*model.Member, error)
	DeleteMember(ctx context.Context, id string, actor Actor) error
}

type memberService struct {
	db        *gorm.DB
	txManager repository.TransactionManager
	store     onboardingStore
}

func NewMemberService(db *gorm.DB, txManager repository.TransactionManager) MemberService {
	return &memberService{db: db, txManager: txManager, store: gormOnboardingStore{db: db}}
}

// onboardingStore is the row access member creation needs inside its single
// transaction, split out so the orchestration around it can be exercised
// directly. Every method reads the transaction injected into ctx by the
// TransactionManager.
type onboardingStore interface {
	identificationTaken(ctx context.Context, idNumber string) (bool, error)
	allocateMemberNo(ctx context.Context) (string, error)
	insertMember(ctx context.Context, member *model.Member) error
	recordAudit(ctx context.Context, actor Actor, action string, module permission.Module, entityID, entityName string, details map[string]any) error
	openAccounts(ctx context.Context, member model.Member, saccoID string, actor Actor) ([]model.Account, error)
}

type gormOnboardingStore struct {
	db *gorm.DB
}

func (s gormOnboardingStore) identificationTaken(ctx context.Context, idNumber string) (bool, error) {
	var dup int64
	err := repository.GetDB(ctx, s.db).Model(&model.Member{}).
		Where("identification_number = ? AND is_deleted = ?", idNumber, false).
		Count(&dup).Error
	if err != nil {
		return false, fmt.Errorf("failed to check member uniqueness: %w", err)
	}
	return dup > 0, nil
}

func (s gormOnboardingStore) allocateMemberNo(ctx context.Context) (string, error) {
	return nextMemberNo(repository.GetDB(ctx, s.db))
}

func (s gormOnboardingStore) insertMember(ctx context.Context, member *model.Member) error {
	if err := repository.GetDB(ctx, s.db).Create(member).Error; err != nil {
		return insertError(err, "member",
			"a member with this identification or member number already exists")
	}
	return nil
}

func (s gormOnboardingStore) recordAudit(ctx context.Context, actor Actor, action string, module permission.Module, entityID, entityName string, details map[string]any) error {
	return writeAudit(repository.GetDB(ctx, s.db), actor, action, module, entityID, entityName, details)
}

func (s gormOnboardingStore) openAccounts(ctx context.Context, member model.Member, saccoID string, actor Actor) ([]model.Account, error) {
	return openOnboardingAccounts(repository.GetDB(ctx, s.db), member, saccoID, actor)
}

// --- Implementation ---

// CreateMember inserts the member and opens one account per Approved product
// flagged for onboarding, all in a single transaction. Any account failure
// rolls the member back too.
func (s *memberService) CreateMember(ctx context.Context, req CreateMemberRequest, actor Actor) (*OnboardingResult, error) {
	var result OnboardingResult

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		taken, err := s.store.identificationTaken(txCtx, req.IdentificationNumber)
		if err != nil {
			return err
		}
		if taken {
			return apperror.Conflict("a member with this identification number already exists")
		}

		memberNo, err := s.store.allocateMemberNo(txCtx)
		if err != nil {
			return err
		}

		member := model.Member{
			MemberNo:                 memberNo,
			Title:                    req.Title,
			FirstName:                req.FirstName,
			LastName:                 req.LastName,
			Category:                 req.Category,
			Gender:                   req.Gender,
			DateOfBirth:              req.DateOfBirth,
			Nationality:              req.Nationality,
			IdentificationType:       req.IdentificationType,
			IdentificationNumber:     req.IdentificationNumber,
			IdentificationExpiryDate: req.IdentificationExpiryDate,
			KraPin:                   req.KraPin,
			MaritalStatus:            req.MaritalStatus,
			Country:                  req.Country,
			County:                   req.County,
			Email:                    req.Email,
			PersonalPhone:            req.PersonalPhone,
			AlternativePhone:         req.AlternativePhone,
			NextOfKin:                req.NextOfKin,
			Photo:                    req.Photo,
			Signature:                req.Signature,
			Status:                   workflow.StatusPending,
			CreatedBy:                actor.Username,
		}
		if err := s.store.insertMember(txCtx, &member); err != nil {
			return err
		}

		if err := s.store.recordAudit(txCtx, actor, model.ActionCreateMember, permission.MemberMaintenance,
			member.ID.String(), member.FirstName+" "+member.LastName,
			map[string]any{"member_no": member.MemberNo}); err != nil {
			return err
		}

		accounts, err := s.store.openAccounts(txCtx, member, req.SaccoID, actor)
		if err != nil {
			return err
		}

		result.Member = member
		result.Accounts = accounts
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// openOnboardingAccounts opens one account per Approved product flagged for
// member onboarding. A product whose derived account id already exists is
// skipped, not an error; the member may have been onboarded against it before.
func openOnboardingAccounts(tx *gorm.DB, member model.Member, saccoID string, actor Actor) ([]model.Account, error) {
	var products []model.Product
	err := tx.
		Where("applied_on_member_onboarding = ? AND status = ? AND is_deleted = ?",
			true, workflow.StatusApproved, false).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load onboarding products: %w", err)
	}

	var sacco *uuid.UUID
	if saccoID != "" {
		parsed, err := uuid.Parse(saccoID)
		if err != nil {
			return nil, apperror.Validation("invalid sacco id '%s'", saccoID)
		}
		var count int64
		if err := tx.Model(&model.Sacco{}).Where("id = ? AND is_deleted = ?", parsed, false).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check sacco: %w", err)
		}
		if count == 0 {
			return nil, apperror.NotFound("sacco not found")
		}
		sacco = &parsed
	}

	accounts := make([]model.Account, 0, len(products))
	for _, product := range products {
		accountID, err := DeriveAccountID(product.ProductID, member.MemberNo)
		if err != nil {
			return nil, err
		}

		var exists int64
		if err := tx.Model(&model.Account{}).Where("account_id = ?", accountID).Count(&exists).Error; err != nil {
			return nil, fmt.Errorf("failed to check account id: %w", err)
		}
		if exists > 0 {
			continue
		}

		number, err := generateAccountNumber(tx)
		if err != nil {
			return nil, err
		}

		account := model.Account{
			AccountID:     accountID,
			MemberID:      member.ID,
			ProductID:     product.ID,
			SaccoID:       sacco,
			AccountName:   member.FirstName + " " + member.LastName + " - " + product.ProductName,
			AccountNumber: number,
			Status:        workflow.AccountActive,
			CreatedBy:     actor.Username,
		}
		if err := tx.Create(&account).Error; err != nil {
			return nil, insertError(err, "account",
				"account %s already exists for this member and product", accountID)
		}
		accounts = append(accounts, account)
	}

	if len(accounts) > 0 {
		ids := make([]string, 0, len(accounts))
		for _, a := range accounts {
			ids = append(ids, a.AccountID)
		}
		if err := writeAudit(tx, actor, model.ActionOnboardAccounts, permission.AccountsManagement,
			member.ID.String(), member.MemberNo, map[string]any{"accounts": ids}); err != nil {
			return nil, err
		}
	}

	return accounts, nil
}

func (s *memberService) GetMember(ctx context.Context, id string) (*model.Member, error) {
	memberID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid member id '%s'", id)
	}

	var member model.Member
	if err := s.db.WithContext(ctx).First(&member, "id = ? AND is_deleted = ?", memberID, false).Error; err != nil {
		return nil, apperror.NotFound("member not found")
	}
	return &member, nil
}

func (s *memberService) ListMembers(ctx context.Context, status, search string, page, limit int) ([]model.Member, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Member{}).Where("is_deleted = ?", false)

	if status != "" {
		if !workflow.ValidStatus(workflow.ApprovalStatus(status)) {
			return nil, 0, apperror.Validation("invalid status filter '%s'", status)
		}
		query = query.Where("status = ?", status)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"member_no ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ? OR identification_number ILIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count members: %w", err)
	}

	var members []model.Member
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&members).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch members: %w", err)
	}
	return members, total, nil
}

func (s *memberService) UpdateMember(ctx context.Context, id string, req UpdateMemberRequest, actor Actor) (*model.Member, error) {
	memberID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid member id '%s'", id)
	}

	var member model.Member
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&member, "id = ? AND is_deleted = ?", memberID, false).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("member not found")
			}
			return fmt.Errorf("failed to load member: %w", err)
		}

		member.Title = req.Title
		member.FirstName = req.FirstName
		member.LastName = req.LastName
		member.Category = req.Category
		member.Gender = req.Gender
		member.DateOfBirth = req.DateOfBirth
		member.Nationality = req.Nationality
		member.IdentificationType = req.IdentificationType
		if req.IdentificationNumber != "" {
			member.IdentificationNumber = req.IdentificationNumber
		}
		member.IdentificationExpiryDate = req.IdentificationExpiryDate
		member.KraPin = req.KraPin
		member.MaritalStatus = req.MaritalStatus
		member.Country = req.Country
		member.County = req.County
		member.Email = req.Email
		member.PersonalPhone = req.PersonalPhone
		member.AlternativePhone = req.AlternativePhone
		member.NextOfKin = req.NextOfKin
		member.Photo = req.Photo
		member.Signature = req.Signature
		member.ModifiedBy = actor.Username

		if err := tx.Save(&member).Error; err != nil {
			return fmt.Errorf("failed to update member: %w", err)
		}

		return writeAudit(tx, actor, model.ActionUpdateMember, permission.MemberMaintenance,
			member.ID.String(), member.FirstName+" "+member.LastName, nil)
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// DeleteMember soft-deletes. The row stays for audit joins and member number
// history; it just disappears from every list and lookup.
func (s *memberService) DeleteMember(ctx context.Context, id string, actor Actor) error {
	memberID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid member id '%s'", id)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member model.Member
		if err := tx.First(&member, "id = ? AND is_deleted = ?", memberID, false).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("member not found")
			}
			return fmt.Errorf("failed to load member: %w", err)
		}

		member.IsDeleted = true
		member.ModifiedBy = actor.Username
		if err := tx.Save(&member).Error; err != nil {
			return fmt.Errorf("failed to delete member: %w", err)
		}

		return writeAudit(tx, actor, model.ActionDeleteMember, permission.MemberMaintenance,
			member.ID.String(), member.MemberNo, nil)
	})
}

// nextMemberNo allocates the next sequential member number, zero padded to
// six digits.
func nextMemberNo(tx *gorm.DB) (string, error) {
	var count int64
	if err := tx.Model(&model.Member{}).Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to allocate member number: %w", err)
	}

	for attempt := 0; attempt < 10; attempt++ {
		candidate := fmt.Sprintf("M-%06d", count+1+int64(attempt))
		var exists int64
		if err := tx.Model(&model.Member{}).Where("member_no = ?", candidate).Count(&exists).Error; err != nil {
			return "", fmt.Errorf("failed to check member number: %w", err)
		}
		if exists == 0 {
			return candidate, nil
		}
	}
	return "", errors.New("failed to allocate a unique member number")
}
