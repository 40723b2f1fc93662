package auth

import (
	"os"
	"strings"
	"time"
)

// EnvironmentStore implements CredentialStore using environment variables.
// Read-only; provided so containerized deployments can skip the keyring.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func envKey(name string) string {
	return "LIKESWATCH_" + strings.ToUpper(name)
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(*Credential) error {
	return ErrStoreUnavailable
}

// Retrieve gets a credential from the environment
func (e *EnvironmentStore) Retrieve(name string) (*Credential, error) {
	if name == "" {
		return nil, ErrInvalidCredential
	}
	secret := os.Getenv(envKey(name))
	if secret == "" {
		return nil, ErrCredentialNotFound
	}
	return &Credential{
		Name:         name,
		Secret:       secret,
		LastModified: time.Now(),
	}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(string) error {
	return ErrStoreUnavailable
}

// Exists checks if the environment variable is set
func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv(envKey(name)) != ""
}
