package auth

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"xfollowers/pkg/errors"
)

// Credentials holds the Twitter API secrets for one credential set
type Credentials struct {
	Label        string    `json:"label"`
	BearerToken  string    `json:"bearer_token,omitempty"`
	ClientID     string    `json:"client_id,omitempty"`
	ClientSecret string    `json:"client_secret,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Operation names an API capability that requires certain credentials
type Operation string

const (
	// OpRead covers read-only lookups, served by a bearer token or OAuth pair
	OpRead Operation = "read"
	// OpFollowers covers the followers endpoint, which needs a user context
	// and therefore the OAuth client pair
	OpFollowers Operation = "followers"
)

// Validate checks whether the credentials can serve the given operation.
// The error names every missing variable so the user can fix all of them
// in one pass.
func (c *Credentials) Validate(op Operation) error {
	hasOAuthPair := c.ClientID != "" && c.ClientSecret != ""

	switch op {
	case OpRead:
		if c.BearerToken != "" || hasOAuthPair {
			return nil
		}
		return errors.New(errors.ErrorTypeMissingCredentials,
			"no credentials: set TWITTER_BEARER_TOKEN, or TWITTER_CLIENT_ID and TWITTER_CLIENT_SECRET")
	case OpFollowers:
		if hasOAuthPair {
			return nil
		}
		var missing []string
		if c.ClientID == "" {
			missing = append(missing, "TWITTER_CLIENT_ID")
		}
		if c.ClientSecret == "" {
			missing = append(missing, "TWITTER_CLIENT_SECRET")
		}
		return errors.Newf(errors.ErrorTypeMissingCredentials,
			"fetching followers requires OAuth user context: %s not set", strings.Join(missing, " and "))
	default:
		return errors.Newf(errors.ErrorTypeMissingCredentials, "unknown operation: %s", op)
	}
}

// CredentialStore is the interface for storing and retrieving credential sets
type CredentialStore interface {
	// Store saves a credential set under its label
	Store(creds *Credentials) error

	// Retrieve gets the credential set with the given label
	Retrieve(label string) (*Credentials, error)

	// List returns all stored credential sets
	List() ([]*Credentials, error)

	// Delete removes the credential set with the given label
	Delete(label string) error

	// Exists checks if a credential set exists for a label
	Exists(label string) bool
}

// Manager handles credential storage with fallback across backends
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a credential manager with the available backends:
// system keychain, then encrypted file, then environment variables.
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over explicit backends, for tests
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves a credential set using the first store that accepts it
func (m *Manager) Store(creds *Credentials) error {
	if creds.Label == "" {
		return ErrInvalidCredentials
	}
	if creds.BearerToken == "" && (creds.ClientID == "" || creds.ClientSecret == "") {
		return ErrInvalidCredentials
	}

	creds.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(creds); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return stderrors.New("no available credential stores")
}

// Retrieve gets a credential set from the first store that has it
func (m *Manager) Retrieve(label string) (*Credentials, error) {
	for _, store := range m.stores {
		if creds, err := store.Retrieve(label); err == nil && creds != nil {
			return creds, nil
		}
	}
	return nil, fmt.Errorf("credentials not found: %s", label)
}

// RetrieveDefault gets the environment credential set when present,
// falling back to the first stored set
func (m *Manager) RetrieveDefault() (*Credentials, error) {
	if envStore, ok := m.stores[len(m.stores)-1].(*EnvironmentStore); ok {
		if creds, err := envStore.Retrieve(""); err == nil && creds != nil {
			return creds, nil
		}
	}

	sets, err := m.List()
	if err == nil && len(sets) > 0 {
		return sets[0], nil
	}

	return nil, ErrCredentialsNotFound
}

// List returns all stored credential sets, newest version per label
func (m *Manager) List() ([]*Credentials, error) {
	byLabel := make(map[string]*Credentials)

	for _, store := range m.stores {
		sets, err := store.List()
		if err != nil {
			continue
		}
		for _, creds := range sets {
			if existing, ok := byLabel[creds.Label]; !ok || creds.LastModified.After(existing.LastModified) {
				byLabel[creds.Label] = creds
			}
		}
	}

	var result []*Credentials
	for _, creds := range byLabel {
		result = append(result, creds)
	}

	return result, nil
}

// Delete removes a credential set from every store that holds it
func (m *Manager) Delete(label string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(label); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("credentials not found: %s", label)
	}

	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "xfollowers")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "xfollowers")
	default: // Linux and others
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "xfollowers")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "xfollowers")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// Sanitize creates a copy of the credentials with secrets masked, for display
func Sanitize(creds *Credentials) *Credentials {
	if creds == nil {
		return nil
	}

	return &Credentials{
		Label:        creds.Label,
		BearerToken:  maskString(creds.BearerToken),
		ClientID:     creds.ClientID,
		ClientSecret: maskString(creds.ClientSecret),
		LastModified: creds.LastModified,
	}
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrCredentialsNotFound = stderrors.New("credentials not found")
	ErrInvalidCredentials  = stderrors.New("invalid credentials")
	ErrStoreUnavailable    = stderrors.New("credential store unavailable")
)
