package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"saccosphere/internal/apperror"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, apperror.HTTPStatus(apperror.PermissionDenied("denied")))
	assert.Equal(t, http.StatusBadRequest, apperror.HTTPStatus(apperror.Validation("bad input")))
	assert.Equal(t, http.StatusConflict, apperror.HTTPStatus(apperror.Conflict("duplicate")))
	assert.Equal(t, http.StatusNotFound, apperror.HTTPStatus(apperror.NotFound("missing")))
	assert.Equal(t, http.StatusInternalServerError, apperror.HTTPStatus(errors.New("boom")))
}

func TestSentinelMatchingThroughWrapping(t *testing.T) {
	err := fmt.Errorf("change status: %w", apperror.PermissionDenied("approve not granted"))

	assert.True(t, errors.Is(err, apperror.ErrPermissionDenied))
	assert.False(t, errors.Is(err, apperror.ErrConflict))
	assert.Equal(t, http.StatusForbidden, apperror.HTTPStatus(err))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("record vanished")
	err := apperror.Wrap(apperror.KindNotFound, "member lookup", cause)

	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	assert.Contains(t, err.Error(), "member lookup")
	assert.Contains(t, err.Error(), "record vanished")
}
