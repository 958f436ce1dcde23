package model

import (
	"time"

	"github.com/google/uuid"
)

// Role statuses. Roles are soft-disabled, never hard-deleted.
const (
	RoleActive   = "Active"
	RoleInactive = "Inactive"
)

// Role carries a display name and a permission grant set stored as JSON:
// module name → action (or "canX" alias) → boolean. The grant set is resolved
// into a full permission matrix at session time, never inspected directly.
type Role struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoleID      string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"role_id"` // e.g. "ADMIN001"
	RoleName    string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"role_name"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"type:varchar(20);not null;default:'Active';index" json:"status"`
	Permissions string    `gorm:"type:jsonb;not null;default:'{}'" json:"permissions"`
	CreatedBy   string    `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	ModifiedBy  string    `gorm:"type:varchar(255)" json:"modified_by"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	IsDeleted   bool      `gorm:"not null;default:false;index" json:"-"`
}
