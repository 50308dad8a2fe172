package crypto

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "6368616e676520746869732070617373776f726420746f206120736563726574"

func newTestVault(t *testing.T) *Vault {
	t.Helper()
	v, err := NewVault(testKey, true)
	require.NoError(t, err)
	return v
}

func TestVaultRoundTrip(t *testing.T) {
	v := newTestVault(t)

	for _, plaintext := range []string{"", "a", "some-oauth-access-token", strings.Repeat("x", 4096)} {
		encrypted, err := v.Encrypt(plaintext)
		require.NoError(t, err)

		decrypted, err := v.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestVaultCiphertextFormat(t *testing.T) {
	v := newTestVault(t)

	encrypted, err := v.Encrypt("token")
	require.NoError(t, err)

	parts := strings.SplitN(encrypted, ":", 2)
	require.Len(t, parts, 2)

	nonce, err := hex.DecodeString(parts[0])
	require.NoError(t, err)
	assert.Len(t, nonce, 12)
}

func TestVaultNonceFreshness(t *testing.T) {
	v := newTestVault(t)

	first, err := v.Encrypt("same plaintext")
	require.NoError(t, err)
	second, err := v.Encrypt("same plaintext")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVaultRejectsTamperedCiphertext(t *testing.T) {
	v := newTestVault(t)

	encrypted, err := v.Encrypt("sensitive")
	require.NoError(t, err)

	// Flip one hex digit of the sealed payload.
	last := encrypted[len(encrypted)-1]
	flipped := byte('0')
	if last == '0' {
		flipped = '1'
	}
	tampered := encrypted[:len(encrypted)-1] + string(flipped)

	_, err = v.Decrypt(tampered)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestVaultRejectsGarbage(t *testing.T) {
	v := newTestVault(t)

	for _, input := range []string{"", "not-a-ciphertext", "abcd", "zz:zz", "deadbeef:"} {
		_, err := v.Decrypt(input)
		assert.ErrorIs(t, err, ErrDecryptionFailed, "input %q", input)
	}
}

func TestVaultRejectsTruncatedCiphertext(t *testing.T) {
	v := newTestVault(t)

	encrypted, err := v.Encrypt("sensitive")
	require.NoError(t, err)

	_, err = v.Decrypt(encrypted[:len(encrypted)/2])
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestNewVaultKeyValidation(t *testing.T) {
	_, err := NewVault("", true)
	assert.ErrorIs(t, err, ErrMissingKey)

	_, err = NewVault("zz", true)
	assert.Error(t, err)

	_, err = NewVault("deadbeef", true)
	assert.Error(t, err)

	// Dev mode falls back to an ephemeral key.
	v, err := NewVault("", false)
	require.NoError(t, err)

	encrypted, err := v.Encrypt("x")
	require.NoError(t, err)
	decrypted, err := v.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "x", decrypted)
}

func TestVaultKeysAreIndependent(t *testing.T) {
	v1 := newTestVault(t)
	v2, err := NewVault("", false)
	require.NoError(t, err)

	encrypted, err := v1.Encrypt("token")
	require.NoError(t, err)

	_, err = v2.Decrypt(encrypted)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}
