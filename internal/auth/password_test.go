package auth_test

import (
	"strings"
	"testing"

	"github.com/serroba/shortlinks/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestValidateUsername(t *testing.T) {
	valid := []string{"bob", "alice_01", "a-b-c", strings.Repeat("x", 30)}
	for _, username := range valid {
		assert.NoError(t, auth.ValidateUsername(username), username)
	}

	invalid := []string{"", "ab", strings.Repeat("x", 31), "has space", "dot.ted", "émile"}
	for _, username := range invalid {
		assert.ErrorIs(t, auth.ValidateUsername(username), auth.ErrInvalidUsername, username)
	}
}

func TestValidatePassword(t *testing.T) {
	t.Run("accepts a password with every character class", func(t *testing.T) {
		assert.NoError(t, auth.ValidatePassword("Secr3t!"))
	})

	cases := map[string]string{
		"too short":         "Aa1!",
		"no uppercase":      "secr3t!",
		"no lowercase":      "SECR3T!",
		"no digit":          "Secret!",
		"no special symbol": "Secr3tt",
		"too long":          "Aa1!" + strings.Repeat("x", 70),
	}

	for name, password := range cases {
		t.Run("rejects "+name, func(t *testing.T) {
			assert.ErrorIs(t, auth.ValidatePassword(password), auth.ErrWeakPassword)
		})
	}
}

func TestPasswordHasher(t *testing.T) {
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("Secr3t!")
	require.NoError(t, err)

	assert.NotEqual(t, "Secr3t!", hash)
	assert.True(t, hasher.Verify(hash, "Secr3t!"))
	assert.False(t, hasher.Verify(hash, "secr3t!"))
	assert.False(t, hasher.Verify("not-a-hash", "Secr3t!"))
}
