package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptPasswordService(t *testing.T) {
	service := NewBcryptPasswordService(bcrypt.MinCost)

	hash, err := service.HashPassword("correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	t.Run("matching password", func(t *testing.T) {
		ok, err := service.VerifyPassword("correct-horse", hash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong password", func(t *testing.T) {
		ok, err := service.VerifyPassword("battery-staple", hash)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("empty inputs", func(t *testing.T) {
		_, err := service.HashPassword("")
		assert.ErrorIs(t, err, ErrEmptyPassword)

		_, err = service.VerifyPassword("", hash)
		assert.ErrorIs(t, err, ErrEmptyPassword)

		_, err = service.VerifyPassword("correct-horse", "")
		assert.ErrorIs(t, err, ErrEmptyPassword)
	})

	t.Run("malformed hash", func(t *testing.T) {
		_, err := service.VerifyPassword("correct-horse", "not-a-bcrypt-hash")
		assert.Error(t, err)
	})

	t.Run("rehash", func(t *testing.T) {
		assert.False(t, service.NeedsRehash(hash))
		assert.True(t, NewBcryptPasswordService(bcrypt.MinCost+1).NeedsRehash(hash))
	})
}

func TestNewBcryptPasswordService_InvalidCostFallsBack(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptPasswordService(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptPasswordService(99).cost)
}
