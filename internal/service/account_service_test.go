package service

import (
	"testing"

	"saccosphere/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveAccountID(t *testing.T) {
	id, err := DeriveAccountID("P-123456", "M-000042")
	require.NoError(t, err)
	assert.Equal(t, "A-123456000042", id)
}

func TestDeriveAccountIDKeepsLeadingZeros(t *testing.T) {
	id, err := DeriveAccountID("P-000001", "M-000002")
	require.NoError(t, err)
	assert.Equal(t, "A-000001000002", id)
}

func TestDeriveAccountIDMalformedInputs(t *testing.T) {
	cases := []struct {
		name      string
		productID string
		memberNo  string
	}{
		{"missing product prefix", "123456", "M-000042"},
		{"missing member prefix", "P-123456", "000042"},
		{"empty product digits", "P-", "M-000042"},
		{"empty member digits", "P-123456", "M-"},
		{"letters in product digits", "P-12A456", "M-000042"},
		{"letters in member digits", "P-123456", "M-00X042"},
		{"empty product", "", "M-000042"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DeriveAccountID(tc.productID, tc.memberNo)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}
}

func TestRandomDigitsLengthAndCharset(t *testing.T) {
	for i := 0; i < 50; i++ {
		s, err := randomDigits(10)
		require.NoError(t, err)
		require.Len(t, s, 10)
		for _, r := range s {
			assert.True(t, r >= '0' && r <= '9', "unexpected rune %q in %s", r, s)
		}
	}
}
