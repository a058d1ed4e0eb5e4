package identity

import (
	"errors"
	"strings"
	"testing"

	"github.com/heoquay/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates user with hashed password", func(t *testing.T) {
		user, err := NewUser(" tuan ", "secret1", RoleShipper)
		require.NoError(t, err)
		assert.Equal(t, "tuan", user.Username)
		assert.NotEqual(t, "secret1", user.PasswordHash)
		assert.True(t, user.VerifyPassword("secret1"))
		assert.False(t, user.VerifyPassword("secret2"))
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("defaults role to Shipper", func(t *testing.T) {
		user, err := NewUser("lan", "123456", "")
		require.NoError(t, err)
		assert.Equal(t, RoleShipper, user.Role)
		assert.False(t, user.IsAdmin())
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewUser("lan", "12345", RoleAdmin)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("rejects empty or spaced username", func(t *testing.T) {
		_, err := NewUser("", "123456", RoleAdmin)
		assert.Error(t, err)
		_, err = NewUser("ngoc hai", "123456", RoleAdmin)
		assert.Error(t, err)
		_, err = NewUser(strings.Repeat("a", 101), "123456", RoleAdmin)
		assert.Error(t, err)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewUser("lan", "123456", Role("Boss"))
		assert.Error(t, err)
	})
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	r, err = ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleShipper, r)

	_, err = ParseRole("owner")
	assert.Error(t, err)
}

func TestUser_SetPassword(t *testing.T) {
	user, err := NewUser("lan", "123456", RoleAdmin)
	require.NoError(t, err)

	require.NoError(t, user.SetPassword("abcdef"))
	assert.True(t, user.VerifyPassword("abcdef"))
	assert.False(t, user.VerifyPassword("123456"))
	assert.Error(t, user.SetPassword("abc"))
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "tuan", NormalizeUsername("  Tuan "))
}
