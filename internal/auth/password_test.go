package auth

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func randomPassword(t *testing.T, n int) string {
	t.Helper()
	buf := make([]byte, n)
	_, err := rand.Read(buf)
	require.NoError(t, err)
	return hex.EncodeToString(buf)
}

func TestNewPasswordHasher(t *testing.T) {
	h, err := NewPasswordHasher(0)
	require.NoError(t, err)
	assert.Equal(t, DefaultBcryptCost, h.Cost())

	h, err = NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, h.Cost())

	_, err = NewPasswordHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	for i := 0; i < 25; i++ {
		// hex doubles the length, so samples span 8 to 104 bytes.
		password := randomPassword(t, 4+i*2)
		other := randomPassword(t, 4+i*2)

		hash, err := h.Hash(password)
		require.NoError(t, err)

		assert.NotEqual(t, password, hash)
		assert.True(t, h.Verify(hash, password))
		assert.False(t, h.Verify(hash, other))
		assert.False(t, h.Verify(hash, password+"x"))
	}
}

func TestPasswordHasher_SaltedPerHash(t *testing.T) {
	h, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	first, err := h.Hash("secret1")
	require.NoError(t, err)
	second, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Verify(first, "secret1"))
	assert.True(t, h.Verify(second, "secret1"))
}

func TestPasswordHasher_LongPasswords(t *testing.T) {
	h, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	for _, n := range []int{71, 72, 73, 80, 100, 1024} {
		password := strings.Repeat("p", n)

		hash, err := h.Hash(password)
		require.NoError(t, err, "length %d", n)

		assert.True(t, h.Verify(hash, password), "length %d", n)
		assert.False(t, h.Verify(hash, password[:n-1]), "length %d", n)
		assert.False(t, h.Verify(hash, password+"p"), "length %d", n)
	}
}

func TestPasswordHasher_LongPasswordsDifferPastLimit(t *testing.T) {
	h, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	prefix := strings.Repeat("a", 72)
	hash, err := h.Hash(prefix + "first")
	require.NoError(t, err)

	assert.True(t, h.Verify(hash, prefix+"first"))
	assert.False(t, h.Verify(hash, prefix+"other"))
}
