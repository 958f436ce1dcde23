package model

import (
	"time"

	"saccosphere/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction records a debit/credit pair between two accounts of the same
// sacco. It starts Pending and is posted only after verifier approval.
type Transaction struct {
	ID              uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TransactionID   string                  `gorm:"type:varchar(20);uniqueIndex;not null" json:"transaction_id"` // e.g. "T-1234567"
	SaccoID         uuid.UUID               `gorm:"type:uuid;not null;index" json:"sacco_id"`
	Sacco           *Sacco                  `gorm:"foreignKey:SaccoID" json:"sacco,omitempty"`
	DebitAccountID  uuid.UUID               `gorm:"type:uuid;not null;index" json:"debit_account_id"`
	DebitAccount    *Account                `gorm:"foreignKey:DebitAccountID" json:"debit_account,omitempty"`
	CreditAccountID uuid.UUID               `gorm:"type:uuid;not null;index" json:"credit_account_id"`
	CreditAccount   *Account                `gorm:"foreignKey:CreditAccountID" json:"credit_account,omitempty"`
	Amount          decimal.Decimal         `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status          workflow.ApprovalStatus `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	Remarks         string                  `gorm:"type:text" json:"remarks"`
	VerifierRemarks string                  `gorm:"type:text" json:"verifier_remarks"`
	StatusChangedBy string                  `gorm:"type:varchar(255)" json:"status_changed_by"`
	StatusChangedAt *time.Time              `json:"status_changed_at"`
	ApprovedBy      string                  `gorm:"type:varchar(255)" json:"approved_by"`
	ApprovedAt      *time.Time              `json:"approved_at"`
	CreatedBy       string                  `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt       time.Time               `gorm:"autoCreateTime" json:"created_at"`
	ModifiedBy      string                  `gorm:"type:varchar(255)" json:"modified_by"`
	UpdatedAt       time.Time               `gorm:"autoUpdateTime" json:"updated_at"`
	IsDeleted       bool                    `gorm:"not null;default:false;index" json:"-"`
}
