package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"saccosphere/internal/apperror"
	"saccosphere/internal/model"
	"saccosphere/internal/permission"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate is the row lock taken before a status flip, so two concurrent
// batch runs never review the same record at once.
func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}

// insertError classifies a failed insert. The uniqueness checks before an
// insert run without a lock, so two concurrent creations can both pass them;
// the unique index then fails the loser with gorm.ErrDuplicatedKey, which is
// a conflict for the caller, not an internal failure.
func insertError(err error, entity, conflictFormat string, args ...any) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Conflict(conflictFormat, args...)
	}
	return fmt.Errorf("failed to create %s: %w", entity, err)
}

// Actor is the authenticated operator a handler extracted from the request
// context. It travels explicitly into every service call that mutates state;
// there is no ambient session singleton.
type Actor struct {
	UserID   string
	Username string
	Role     string
	Matrix   permission.Matrix
}

// IsAdmin reports whether the actor holds the built-in administrator
// override used to reopen terminal workflow records.
func (a Actor) IsAdmin() bool {
	return permission.IsAdminRole(a.Role)
}

// writeAudit appends an audit row inside the caller's transaction so the
// trail commits or rolls back together with the mutation it records.
func writeAudit(tx *gorm.DB, actor Actor, action string, module permission.Module, entityID, entityName string, details map[string]any) error {
	var userID *uuid.UUID
	if parsed, err := uuid.Parse(actor.UserID); err == nil {
		userID = &parsed
	}

	payload, _ := json.Marshal(details)
	audit := model.AuditLog{
		UserID:     userID,
		Action:     action,
		Module:     string(module),
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	}
	if err := tx.Create(&audit).Error; err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
