package service

import (
	"testing"

	"saccosphere/internal/middleware"
	"saccosphere/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAccessTokenUsesSharedSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "rotating-test-secret")

	user := &model.User{
		ID:       uuid.New(),
		Username: "checker",
		Role:     "Verifier",
	}

	signed, err := signAccessToken(user)
	require.NoError(t, err)

	// The middleware verifies with the same resolution, so a token minted
	// here must round-trip through it.
	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return middleware.GetJWTSecret(), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, user.ID.String(), claims["sub"])
	assert.Equal(t, "checker", claims["username"])
	assert.Equal(t, "Verifier", claims["role"])
}
