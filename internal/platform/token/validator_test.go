package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-signing-key"

func signToken(t *testing.T, key string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func TestValidateToken(t *testing.T) {
	v := NewValidator(testKey)
	userID := uuid.NewString()

	claims, err := v.ValidateToken(signToken(t, testKey, jwt.MapClaims{
		"sub":  userID,
		"role": "accountant",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}))
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID.String())
	assert.Equal(t, "accountant", claims.Role)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	v := NewValidator(testKey)

	_, err := v.ValidateToken(signToken(t, "other-key", jwt.MapClaims{
		"sub": uuid.NewString(),
	}))
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	v := NewValidator(testKey)

	_, err := v.ValidateToken(signToken(t, testKey, jwt.MapClaims{
		"sub": uuid.NewString(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}))
	assert.Error(t, err)
}

func TestValidateTokenRequiresSubject(t *testing.T) {
	v := NewValidator(testKey)

	_, err := v.ValidateToken(signToken(t, testKey, jwt.MapClaims{
		"role": "agent",
	}))
	assert.Error(t, err)
}

func TestValidateTokenRejectsNonUUIDSubject(t *testing.T) {
	v := NewValidator(testKey)

	_, err := v.ValidateToken(signToken(t, testKey, jwt.MapClaims{
		"sub": "alice",
	}))
	assert.Error(t, err)
}
