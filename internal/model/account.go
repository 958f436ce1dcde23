package model

import (
	"time"

	"saccosphere/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account links one member to one product under a sacco. Its identifier is
// derived from the product and member public numbers; the account number is
// a random 10-digit numeral. Both are globally unique.
type Account struct {
	ID               uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AccountID        string                     `gorm:"type:varchar(30);uniqueIndex;not null" json:"account_id"` // e.g. "A-123456000042"
	MemberID         uuid.UUID                  `gorm:"type:uuid;not null;index" json:"member_id"`
	Member           *Member                    `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	ProductID        uuid.UUID                  `gorm:"type:uuid;not null;index" json:"product_id"`
	Product          *Product                   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	SaccoID          *uuid.UUID                 `gorm:"type:uuid;index" json:"sacco_id"`
	Sacco            *Sacco                     `gorm:"foreignKey:SaccoID" json:"sacco,omitempty"`
	AccountName      string                     `gorm:"type:varchar(255);not null" json:"account_name"`
	AccountNumber    string                     `gorm:"type:varchar(10);uniqueIndex;not null" json:"account_number"`
	AvailableBalance decimal.Decimal            `gorm:"type:decimal(15,2);not null;default:0" json:"available_balance"`
	Status           workflow.OperationalStatus `gorm:"type:varchar(20);not null;default:'Active';index" json:"status"`
	Remarks          string                     `gorm:"type:text" json:"remarks"`
	CreatedBy        string                     `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt        time.Time                  `gorm:"autoCreateTime" json:"created_at"`
	ModifiedBy       string                     `gorm:"type:varchar(255)" json:"modified_by"`
	UpdatedAt        time.Time                  `gorm:"autoUpdateTime" json:"updated_at"`
	StatusChangedBy  string                     `gorm:"type:varchar(255)" json:"status_changed_by"`
	StatusChangedAt  *time.Time                 `json:"status_changed_at"`
	IsDeleted        bool                       `gorm:"not null;default:false;index" json:"-"`
}
