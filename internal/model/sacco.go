package model

import (
	"time"

	"saccosphere/internal/workflow"

	"github.com/google/uuid"
)

// Sacco is the cooperative organization accounts and transactions belong to.
type Sacco struct {
	ID              uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SaccoID         string                  `gorm:"type:varchar(20);uniqueIndex;not null" json:"sacco_id"`
	LicenseID       string                  `gorm:"type:varchar(50);uniqueIndex;not null" json:"license_id"`
	SaccoName       string                  `gorm:"type:varchar(255);not null" json:"sacco_name"`
	Address         string                  `gorm:"type:text" json:"address"`
	ContactPhone    string                  `gorm:"type:varchar(20)" json:"contact_phone"`
	ContactEmail    string                  `gorm:"type:varchar(255)" json:"contact_email"`
	Status          workflow.ApprovalStatus `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
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
