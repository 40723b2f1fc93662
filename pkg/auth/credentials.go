package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Credential names used by the watcher
const (
	CredentialDiscordToken = "discord_token"
)

// Credential is one stored secret
type Credential struct {
	Name         string    `json:"name"`
	Secret       string    `json:"secret"`
	LastModified time.Time `json:"last_modified"`
}

// Store errors
var (
	ErrInvalidCredential   = errors.New("invalid credential")
	ErrCredentialNotFound  = errors.New("credential not found")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
	ErrStoreNotInitialized = errors.New("credential store not initialized")
)

// CredentialStore is the interface for storing and retrieving secrets
type CredentialStore interface {
	// Store saves a credential
	Store(cred *Credential) error

	// Retrieve gets a credential by name
	Retrieve(name string) (*Credential, error)

	// Delete removes a credential by name
	Delete(name string) error

	// Exists checks if a credential exists
	Exists(name string) bool
}

// Manager handles credential storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a new credential manager with appropriate storage backends.
// Keyring is preferred; an encrypted file and environment variables are fallbacks.
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	keyringStore, err := NewKeyringStore()
	if err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err == nil {
		stores = append(stores, encryptedStore)
	}

	stores = append(stores, NewEnvironmentStore())

	if len(stores) == 0 {
		return nil, ErrStoreUnavailable
	}
	return &Manager{stores: stores}, nil
}

// Store saves a credential to the first store that accepts it
func (m *Manager) Store(cred *Credential) error {
	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(cred); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return ErrStoreUnavailable
}

// Retrieve gets a credential from the first store that has it
func (m *Manager) Retrieve(name string) (*Credential, error) {
	for _, store := range m.stores {
		cred, err := store.Retrieve(name)
		if err == nil {
			return cred, nil
		}
	}
	return nil, ErrCredentialNotFound
}

// Delete removes a credential from every store that holds it
func (m *Manager) Delete(name string) error {
	deleted := false
	for _, store := range m.stores {
		if store.Exists(name) {
			if err := store.Delete(name); err == nil {
				deleted = true
			}
		}
	}
	if !deleted {
		return ErrCredentialNotFound
	}
	return nil
}

// Exists checks if any store holds the credential
func (m *Manager) Exists(name string) bool {
	for _, store := range m.stores {
		if store.Exists(name) {
			return true
		}
	}
	return false
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "likeswatch")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}
