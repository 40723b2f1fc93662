package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockStoreRoundTrip(t *testing.T) {
	store := NewMockStore()

	cred := &Credential{Name: CredentialDiscordToken, Secret: "s3cret"}
	require.NoError(t, store.Store(cred))
	assert.True(t, store.Exists(CredentialDiscordToken))

	got, err := store.Retrieve(CredentialDiscordToken)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got.Secret)

	require.NoError(t, store.Delete(CredentialDiscordToken))
	assert.False(t, store.Exists(CredentialDiscordToken))
}

func TestMockStoreRejectsEmptyName(t *testing.T) {
	store := NewMockStore()
	err := store.Store(&Credential{Secret: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestEncryptedFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	cred := &Credential{Name: "discord_token", Secret: "bot-token-value"}
	require.NoError(t, store.Store(cred))

	got, err := store.Retrieve("discord_token")
	require.NoError(t, err)
	assert.Equal(t, "bot-token-value", got.Secret)

	// A second store instance over the same file decrypts the same payload
	reopened, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	got, err = reopened.Retrieve("discord_token")
	require.NoError(t, err)
	assert.Equal(t, "bot-token-value", got.Secret)
}

func TestEncryptedFileStoreMissingCredential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	_, err = store.Retrieve("nope")
	assert.ErrorIs(t, err, ErrCredentialNotFound)
	assert.False(t, store.Exists("nope"))
}

func TestEnvironmentStoreRetrieve(t *testing.T) {
	t.Setenv("LIKESWATCH_DISCORD_TOKEN", "from-env")

	store := NewEnvironmentStore()
	cred, err := store.Retrieve(CredentialDiscordToken)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cred.Secret)

	assert.ErrorIs(t, store.Store(cred), ErrStoreUnavailable)
}
