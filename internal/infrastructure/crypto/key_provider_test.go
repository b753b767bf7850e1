package crypto

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octanews/authcore/internal/infrastructure/monitoring"
)

func TestKeyProvider_GeneratesAndPersists(t *testing.T) {
	dir := t.TempDir()
	provider := NewFileKeyProvider(dir, monitoring.NewNopLogger())

	require.NoError(t, provider.Initialize(context.Background()))
	require.NotNil(t, provider.PrivateKey())
	require.NotNil(t, provider.PublicKey())

	// Both PEM files must exist, with the private key owner-only.
	privInfo, err := os.Stat(filepath.Join(dir, privateKeyFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), privInfo.Mode().Perm())

	_, err = os.Stat(filepath.Join(dir, publicKeyFile))
	require.NoError(t, err)
}

func TestKeyProvider_ReloadsSameKeypair(t *testing.T) {
	dir := t.TempDir()

	first := NewFileKeyProvider(dir, monitoring.NewNopLogger())
	require.NoError(t, first.Initialize(context.Background()))

	second := NewFileKeyProvider(dir, monitoring.NewNopLogger())
	require.NoError(t, second.Initialize(context.Background()))

	assert.Equal(t, first.PrivateKey().N, second.PrivateKey().N)
	assert.Equal(t, first.PublicKey().N, second.PublicKey().N)
}

func TestKeyProvider_RegeneratesOnCorruptPrivateKey(t *testing.T) {
	dir := t.TempDir()

	first := NewFileKeyProvider(dir, monitoring.NewNopLogger())
	require.NoError(t, first.Initialize(context.Background()))
	originalModulus := first.PrivateKey().N

	require.NoError(t, os.WriteFile(filepath.Join(dir, privateKeyFile), []byte("garbage"), 0o600))

	second := NewFileKeyProvider(dir, monitoring.NewNopLogger())
	require.NoError(t, second.Initialize(context.Background()))
	require.NotNil(t, second.PrivateKey())

	assert.NotEqual(t, originalModulus, second.PrivateKey().N)
}

func TestKeyProvider_RegeneratesOnMismatchedPair(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()

	providerA := NewFileKeyProvider(dirA, monitoring.NewNopLogger())
	require.NoError(t, providerA.Initialize(context.Background()))
	providerB := NewFileKeyProvider(dirB, monitoring.NewNopLogger())
	require.NoError(t, providerB.Initialize(context.Background()))

	// Swap B's public key under A's private key; the self-test must fail and
	// force a regeneration.
	pubB, err := os.ReadFile(filepath.Join(dirB, publicKeyFile))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dirA, publicKeyFile), pubB, 0o644))

	reloaded := NewFileKeyProvider(dirA, monitoring.NewNopLogger())
	require.NoError(t, reloaded.Initialize(context.Background()))

	assert.True(t, selfTest(reloaded.PrivateKey(), reloaded.PublicKey()))
	assert.NotEqual(t, providerA.PrivateKey().N, reloaded.PrivateKey().N)
}
