package service

import (
	"errors"
	"fmt"
	"testing"

	"saccosphere/internal/apperror"

	"gorm.io/gorm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertErrorClassifiesDuplicateKey(t *testing.T) {
	err := insertError(gorm.ErrDuplicatedKey, "account",
		"account %s already exists for this member and product", "A-123456000042")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrConflict)
	assert.Contains(t, err.Error(), "A-123456000042")

	// Wrapped duplicates classify too; drivers rarely hand the sentinel back bare.
	wrapped := insertError(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), "member",
		"a member with this identification or member number already exists")
	assert.ErrorIs(t, wrapped, apperror.ErrConflict)
}

func TestInsertErrorPassesOtherFailuresThrough(t *testing.T) {
	cause := errors.New("connection reset")
	err := insertError(cause, "transaction", "transaction id %s is already taken", "T-1234567")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrConflict)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to create transaction")
}
