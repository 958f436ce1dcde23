package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateMember      = "CREATE_MEMBER"
	ActionUpdateMember      = "UPDATE_MEMBER"
	ActionDeleteMember      = "DELETE_MEMBER"
	ActionCreateProduct     = "CREATE_PRODUCT"
	ActionUpdateProduct     = "UPDATE_PRODUCT"
	ActionDeleteProduct     = "DELETE_PRODUCT"
	ActionCreateAccount     = "CREATE_ACCOUNT"
	ActionUpdateAccount     = "UPDATE_ACCOUNT"
	ActionDeleteAccount     = "DELETE_ACCOUNT"
	ActionCreateTransaction = "CREATE_TRANSACTION"
	ActionUpdateTransaction = "UPDATE_TRANSACTION"
	ActionDeleteTransaction = "DELETE_TRANSACTION"
	ActionCreateSacco       = "CREATE_SACCO"
	ActionUpdateSacco       = "UPDATE_SACCO"
	ActionDeleteSacco       = "DELETE_SACCO"
	ActionCreateRole        = "CREATE_ROLE"
	ActionUpdateRole        = "UPDATE_ROLE"
	ActionChangeStatus      = "CHANGE_STATUS"
	ActionOnboardAccounts   = "ONBOARD_ACCOUNTS"
)

// AuditLog tracks Who, What, and When for critical system changes. Logs are
// append-only; no write surface exists beyond the services recording them.
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated job
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	Module     string     `gorm:"type:varchar(50);index" json:"module"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
