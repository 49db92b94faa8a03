package auth

import (
	"os"
	"time"
)

// EnvironmentStore implements CredentialStore over the TWITTER_* environment
// variables. Read-only; Store and Delete are unsupported.
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(creds *Credentials) error {
	return ErrStoreUnavailable
}

// Retrieve builds a credential set from the environment
func (e *EnvironmentStore) Retrieve(label string) (*Credentials, error) {
	bearer := os.Getenv("TWITTER_BEARER_TOKEN")
	clientID := os.Getenv("TWITTER_CLIENT_ID")
	clientSecret := os.Getenv("TWITTER_CLIENT_SECRET")

	if bearer == "" && (clientID == "" || clientSecret == "") {
		return nil, ErrCredentialsNotFound
	}

	if label == "" {
		label = "default"
	}

	return &Credentials{
		Label:        label,
		BearerToken:  bearer,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		LastModified: time.Now(),
	}, nil
}

// List returns the environment credential set when present
func (e *EnvironmentStore) List() ([]*Credentials, error) {
	creds, err := e.Retrieve("")
	if err != nil {
		return []*Credentials{}, nil
	}
	return []*Credentials{creds}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(label string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials are set
func (e *EnvironmentStore) Exists(label string) bool {
	_, err := e.Retrieve(label)
	return err == nil
}
