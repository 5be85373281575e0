package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTServiceGenerateAndValidate(t *testing.T) {
	svc := NewJWTService("unit_test_secret")

	token, err := svc.GenerateToken(42, "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestJWTServiceRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret_a").GenerateToken(1, "a@example.com")
	require.NoError(t, err)

	_, err = NewJWTService("secret_b").ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTServiceRejectsGarbage(t *testing.T) {
	svc := NewJWTService("unit_test_secret")

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)

	_, err = svc.ValidateToken("")
	assert.Error(t, err)
}
