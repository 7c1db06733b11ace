package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	require.Len(t, salt, SaltSize)

	key, err := DeriveKey("device-secret", salt)
	require.NoError(t, err)
	require.Len(t, key, KeySize)

	plain := "eyJhbGciOiJIUzI1NiJ9.some.token"
	encoded, err := Encrypt(plain, key)
	require.NoError(t, err)
	assert.NotEqual(t, plain, encoded)

	decoded, err := Decrypt(encoded, key)
	require.NoError(t, err)
	assert.Equal(t, plain, decoded)
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)

	key, err := DeriveKey("secret-a", salt)
	require.NoError(t, err)
	other, err := DeriveKey("secret-b", salt)
	require.NoError(t, err)

	encoded, err := Encrypt("payload", key)
	require.NoError(t, err)

	_, err = Decrypt(encoded, other)
	assert.Error(t, err, "GCM must reject the wrong key")
}

func TestDeriveKeyDependsOnSalt(t *testing.T) {
	saltA, err := NewSalt()
	require.NoError(t, err)
	saltB, err := NewSalt()
	require.NoError(t, err)

	keyA, err := DeriveKey("same-secret", saltA)
	require.NoError(t, err)
	keyB, err := DeriveKey("same-secret", saltB)
	require.NoError(t, err)

	assert.NotEqual(t, keyA, keyB)
}

func TestDecryptGarbageFails(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	key, err := DeriveKey("secret", salt)
	require.NoError(t, err)

	_, err = Decrypt("not-base64!!", key)
	assert.Error(t, err)

	_, err = Decrypt("", key)
	assert.Error(t, err)
}
