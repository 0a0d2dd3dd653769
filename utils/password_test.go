package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("pw1", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "pw1", hash)

	// Deterministic across repeated calls.
	for i := 0; i < 3; i++ {
		assert.True(t, CheckPassword(hash, "pw1"))
		assert.False(t, CheckPassword(hash, "pw2"))
		assert.False(t, CheckPassword(hash, ""))
	}
}

func TestHashPasswordCostFallback(t *testing.T) {
	// Out-of-range costs fall back to the default instead of failing.
	hash, err := HashPassword("secret", -1)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
