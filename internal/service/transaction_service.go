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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateTransactionRequest struct {
	SaccoID         string          `json:"sacco_id" binding:"required"`
	DebitAccountID  string          `json:"debit_account_id" binding:"required"`
	CreditAccountID string          `json:"credit_account_id" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Remarks         string          `json:"remarks"`
}

// --- Interface ---

type TransactionService interface {
	CreateTransaction(ctx context.Context, req CreateTransactionRequest, actor Actor) (*model.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, status, search string, page, limit int) ([]model.Transaction, int64, error)
	DeleteTransaction(ctx context.Context, id string, actor Actor) error
}

type transactionService struct {
	db *gorm.DB
}

func NewTransactionService(db *gorm.DB) TransactionService {
	return &transactionService{db: db}
}

// --- Implementation ---

// CreateTransaction records a Pending debit/credit pair. Both accounts must
// exist, differ, and belong to the named sacco. Balances move only when a
// verifier approves the entry, never here.
func (s *transactionService) CreateTransaction(ctx context.Context, req CreateTransactionRequest, actor Actor) (*model.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.Validation("amount must be greater than zero")
	}
	if req.DebitAccountID == req.CreditAccountID {
		return nil, apperror.Validation("debit and credit accounts must differ")
	}

	saccoID, err := uuid.Parse(req.SaccoID)
	if err != nil {
		return nil, apperror.Validation("invalid sacco id '%s'", req.SaccoID)
	}
	debitID, err := uuid.Parse(req.DebitAccountID)
	if err != nil {
		return nil, apperror.Validation("invalid debit account id '%s'", req.DebitAccountID)
	}
	creditID, err := uuid.Parse(req.CreditAccountID)
	if err != nil {
		return nil, apperror.Validation("invalid credit account id '%s'", req.CreditAccountID)
	}

	var txn model.Transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sacco model.Sacco
		if err := tx.First(&sacco, "id = ? AND is_deleted = ?", saccoID, false).Error; err != nil {
			return apperror.NotFound("sacco not found")
		}

		debit, err := loadPostableAccount(tx, debitID, sacco.ID)
		if err != nil {
			return err
		}
		credit, err := loadPostableAccount(tx, creditID, sacco.ID)
		if err != nil {
			return err
		}

		transactionID, err := nextTransactionID(tx)
		if err != nil {
			return err
		}

		txn = model.Transaction{
			TransactionID:   transactionID,
			SaccoID:         sacco.ID,
			DebitAccountID:  debit.ID,
			CreditAccountID: credit.ID,
			Amount:          req.Amount,
			Status:          workflow.StatusPending,
			Remarks:         req.Remarks,
			CreatedBy:       actor.Username,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return insertError(err, "transaction",
				"transaction id %s is already taken", transactionID)
		}

		return writeAudit(tx, actor, model.ActionCreateTransaction, permission.TransactionMaintenance,
			txn.ID.String(), txn.TransactionID, map[string]any{
				"debit":  debit.AccountID,
				"credit": credit.AccountID,
				"amount": req.Amount.String(),
			})
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// loadPostableAccount fetches a live account and checks it can take postings.
func loadPostableAccount(tx *gorm.DB, accountID, saccoID uuid.UUID) (*model.Account, error) {
	var account model.Account
	if err := tx.First(&account, "id = ? AND is_deleted = ?", accountID, false).Error; err != nil {
		return nil, apperror.NotFound("account %s not found", accountID)
	}
	if err := checkPostable(&account, saccoID); err != nil {
		return nil, err
	}
	return &account, nil
}

// checkPostable verifies an account may appear on a transaction leg: it must
// be owned by the named sacco and operationally Active.
func checkPostable(account *model.Account, saccoID uuid.UUID) error {
	if account.SaccoID == nil || *account.SaccoID != saccoID {
		return apperror.Validation("account %s does not belong to this sacco", account.AccountID)
	}
	if account.Status != workflow.AccountActive {
		return apperror.Validation("account %s is not active", account.AccountID)
	}
	return nil
}

func (s *transactionService) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	txnID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.Validation("invalid transaction id '%s'", id)
	}

	var txn model.Transaction
	err = s.db.WithContext(ctx).
		Preload("Sacco").Preload("DebitAccount").Preload("CreditAccount").
		First(&txn, "id = ? AND is_deleted = ?", txnID, false).Error
	if err != nil {
		return nil, apperror.NotFound("transaction not found")
	}
	return &txn, nil
}

func (s *transactionService) ListTransactions(ctx context.Context, status, search string, page, limit int) ([]model.Transaction, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Transaction{}).Where("is_deleted = ?", false)

	if status != "" {
		if !workflow.ValidStatus(workflow.ApprovalStatus(status)) {
			return nil, 0, apperror.Validation("invalid status filter '%s'", status)
		}
		query = query.Where("status = ?", status)
	}
	if search != "" {
		query = query.Where("transaction_id ILIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	var txns []model.Transaction
	err := query.Preload("DebitAccount").Preload("CreditAccount").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	return txns, total, nil
}

// DeleteTransaction soft-deletes a transaction that has not been posted yet.
// Approved entries are immutable history.
func (s *transactionService) DeleteTransaction(ctx context.Context, id string, actor Actor) error {
	txnID, err := uuid.Parse(id)
	if err != nil {
		return apperror.Validation("invalid transaction id '%s'", id)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txn model.Transaction
		if err := tx.First(&txn, "id = ? AND is_deleted = ?", txnID, false).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("transaction not found")
			}
			return fmt.Errorf("failed to load transaction: %w", err)
		}

		if txn.Status == workflow.StatusApproved {
			return apperror.Conflict("transaction %s is already posted", txn.TransactionID)
		}

		txn.IsDeleted = true
		txn.ModifiedBy = actor.Username
		if err := tx.Save(&txn).Error; err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}

		return writeAudit(tx, actor, model.ActionDeleteTransaction, permission.TransactionMaintenance,
			txn.ID.String(), txn.TransactionID, nil)
	})
}

// nextTransactionID draws a random seven digit transaction id under the "T-"
// prefix, retrying on the rare collision.
func nextTransactionID(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		digits, err := randomDigits(7)
		if err != nil {
			return "", err
		}
		candidate := "T-" + digits
		var exists int64
		if err := tx.Model(&model.Transaction{}).Where("transaction_id = ?", candidate).Count(&exists).Error; err != nil {
			return "", fmt.Errorf("failed to check transaction id: %w", err)
		}
		if exists == 0 {
			return candidate, nil
		}
	}
	return "", errors.New("failed to allocate a unique transaction id")
}
