package model

import (
	"time"

	"saccosphere/internal/workflow"

	"github.com/google/uuid"
)

// Member is a cooperative member. New members start in Pending and go
// through verifier review before any product can be serviced for them.
type Member struct {
	ID                       uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MemberNo                 string                  `gorm:"type:varchar(20);uniqueIndex;not null" json:"member_no"` // e.g. "M-000042"
	Title                    string                  `gorm:"type:varchar(20)" json:"title"`
	FirstName                string                  `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName                 string                  `gorm:"type:varchar(100);not null" json:"last_name"`
	Category                 string                  `gorm:"type:varchar(50)" json:"category"`
	Gender                   string                  `gorm:"type:varchar(10)" json:"gender"`
	DateOfBirth              *time.Time              `json:"date_of_birth"`
	Nationality              string                  `gorm:"type:varchar(50)" json:"nationality"`
	IdentificationType       string                  `gorm:"type:varchar(30)" json:"identification_type"`
	IdentificationNumber     string                  `gorm:"type:varchar(50);index" json:"identification_number"`
	IdentificationExpiryDate *time.Time              `json:"identification_expiry_date"`
	KraPin                   string                  `gorm:"type:varchar(30)" json:"kra_pin"`
	MaritalStatus            string                  `gorm:"type:varchar(20)" json:"marital_status"`
	Country                  string                  `gorm:"type:varchar(50)" json:"country"`
	County                   string                  `gorm:"type:varchar(50)" json:"county"`
	Email                    string                  `gorm:"type:varchar(255)" json:"email"`
	PersonalPhone            string                  `gorm:"type:varchar(20)" json:"personal_phone"`
	AlternativePhone         string                  `gorm:"type:varchar(20)" json:"alternative_phone"`
	NextOfKin                string                  `gorm:"type:jsonb" json:"next_of_kin"` // JSON blob of kin contacts
	Photo                    string                  `gorm:"type:text" json:"photo"`
	Signature                string                  `gorm:"type:text" json:"signature"`
	Status                   workflow.ApprovalStatus `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	VerifierRemarks          string                  `gorm:"type:text" json:"verifier_remarks"`
	CreatedBy                string                  `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt                time.Time               `gorm:"autoCreateTime" json:"created_at"`
	ModifiedBy               string                  `gorm:"type:varchar(255)" json:"modified_by"`
	UpdatedAt                time.Time               `gorm:"autoUpdateTime" json:"updated_at"`
	StatusChangedBy          string                  `gorm:"type:varchar(255)" json:"status_changed_by"`
	StatusChangedAt          *time.Time              `json:"status_changed_at"`
	IsDeleted                bool                    `gorm:"not null;default:false;index" json:"-"`
}
