package cryptoutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	require.NoError(t, VerifyPassword("correct horse battery staple", hash))
}

func TestVerifyPassword_Mismatch(t *testing.T) {
	hash, err := HashPassword("right-password")
	require.NoError(t, err)

	err = VerifyPassword("wrong-password", hash)
	assert.ErrorIs(t, err, ErrHashMismatch)
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	first, err := HashPassword("same-password")
	require.NoError(t, err)
	second, err := HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	require.NoError(t, VerifyPassword("same-password", first))
	require.NoError(t, VerifyPassword("same-password", second))
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	assert.Error(t, VerifyPassword("anything", "not-a-phc-string"))
	assert.Error(t, VerifyPassword("anything", ""))
}

func TestRandomToken(t *testing.T) {
	first, err := RandomToken(32)
	require.NoError(t, err)
	second, err := RandomToken(32)
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
	// base64url output never contains padding or URL-hostile characters.
	assert.NotContains(t, first, "=")
	assert.NotContains(t, first, "+")
	assert.NotContains(t, first, "/")
}
