package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("Password1!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "Password1!", hash)

	assert.True(t, CheckPasswordHash("Password1!", hash))
	assert.False(t, CheckPasswordHash("WrongPass1!", hash))
}

func TestCheckPasswordHashGarbage(t *testing.T) {
	assert.False(t, CheckPasswordHash("Password1!", "not-a-bcrypt-hash"))
}
