package model

import (
	"time"

	"saccosphere/internal/workflow"

	"github.com/google/uuid"
)

// Product is a savings or credit product. Products flagged
// AppliedOnMemberOnboarding and already Approved get an account opened
// automatically for every new member.
type Product struct {
	ID                        uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID                 string                  `gorm:"type:varchar(20);uniqueIndex;not null" json:"product_id"` // e.g. "P-123456"
	ProductName               string                  `gorm:"type:varchar(255);not null" json:"product_name"`
	Currency                  string                  `gorm:"type:varchar(10);not null" json:"currency"`
	IsCreditInterest          bool                    `gorm:"not null;default:false" json:"is_credit_interest"`
	IsDebitInterest           bool                    `gorm:"not null;default:false" json:"is_debit_interest"`
	InterestType              string                  `gorm:"type:varchar(50)" json:"interest_type"`
	InterestCalculationRule   string                  `gorm:"type:varchar(50)" json:"interest_calculation_rule"`
	InterestFrequency         string                  `gorm:"type:varchar(50)" json:"interest_frequency"`
	AppliedOnMemberOnboarding bool                    `gorm:"not null;default:false" json:"applied_on_member_onboarding"`
	Status                    workflow.ApprovalStatus `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	VerifierRemarks           string                  `gorm:"type:text" json:"verifier_remarks"`
	StatusChangedBy           string                  `gorm:"type:varchar(255)" json:"status_changed_by"`
	StatusChangedAt           *time.Time              `json:"status_changed_at"`
	ApprovedBy                string                  `gorm:"type:varchar(255)" json:"approved_by"`
	ApprovedAt                *time.Time              `json:"approved_at"`
	CreatedBy                 string                  `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt                 time.Time               `gorm:"autoCreateTime" json:"created_at"`
	ModifiedBy                string                  `gorm:"type:varchar(255)" json:"modified_by"`
	UpdatedAt                 time.Time               `gorm:"autoUpdateTime" json:"updated_at"`
	IsDeleted                 bool                    `gorm:"not null;default:false;index" json:"-"`
}
