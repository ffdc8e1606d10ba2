package crypto

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("test-secret", "ops", RoleAdmin, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Sub)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("test-secret", "ops", RoleAdmin, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	token, err := GenerateToken("test-secret", "ops", RoleAdmin, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("test-secret", token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	c := Claims{Sub: "ops", Role: RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, c).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ParseToken("test-secret", token)
	assert.Error(t, err)
}

func TestEmptySecret(t *testing.T) {
	_, err := GenerateToken("", "ops", RoleAdmin, time.Hour)
	assert.Error(t, err)

	_, err = ParseToken("", "anything")
	assert.Error(t, err)
}
