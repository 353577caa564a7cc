// Package auth keeps the Instagram session cookies the client sends.
//
// Sessions live in the system keychain when one is available, and in an
// AES-GCM encrypted file otherwise. IGAPI_SESSION_ID and IGAPI_CSRF_TOKEN
// are read as a read-only source of last resort.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"igapi/pkg/config"
)

// Session is the cookie pair of one logged-in Instagram account
type Session struct {
	Username     string    `json:"username"`
	SessionID    string    `json:"session_id"`
	CSRFToken    string    `json:"csrf_token"`
	UserAgent    string    `json:"user_agent,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore persists sessions by username
type CredentialStore interface {
	Store(session *Session) error
	Retrieve(username string) (*Session, error)
	List() ([]*Session, error)
	Delete(username string) error
	Exists(username string) bool
}

var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)

// Manager reads from its stores in order and writes to the first one that
// accepts the session.
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a Manager over explicit stores
func NewManager(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// DefaultManager uses the keychain if it works, the encrypted file under
// ConfigDir, and the environment.
func DefaultManager() (*Manager, error) {
	var stores []CredentialStore

	if ks, err := NewKeyringStore(); err == nil {
		stores = append(stores, ks)
	}

	dir, err := ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	fs, err := NewEncryptedFileStore(filepath.Join(dir, "sessions.enc"), "")
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, fs, NewEnvironmentStore())

	return NewManager(stores...), nil
}

// Store validates and saves a session
func (m *Manager) Store(session *Session) error {
	switch {
	case session == nil || session.Username == "":
		return errors.New("username is required")
	case session.SessionID == "":
		return errors.New("session ID is required")
	case session.CSRFToken == "":
		return errors.New("CSRF token is required")
	}

	session.LastModified = time.Now()

	var errs []error
	for _, store := range m.stores {
		err := store.Store(session)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return ErrStoreUnavailable
	}
	return fmt.Errorf("failed to store credentials: %w", errors.Join(errs...))
}

// Retrieve returns the session of username from the first store holding it
func (m *Manager) Retrieve(username string) (*Session, error) {
	for _, store := range m.stores {
		if s, err := store.Retrieve(username); err == nil && s != nil {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w for user: %s", ErrCredentialsNotFound, username)
}

// RetrieveDefault prefers environment credentials, then the first stored
// session by username.
func (m *Manager) RetrieveDefault() (*Session, error) {
	for _, store := range m.stores {
		if env, ok := store.(*EnvironmentStore); ok {
			if s, err := env.Retrieve(""); err == nil {
				return s, nil
			}
		}
	}

	sessions, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrCredentialsNotFound
	}
	return sessions[0], nil
}

// List merges every store, keeping the newest copy of each username
func (m *Manager) List() ([]*Session, error) {
	byName := make(map[string]*Session)
	for _, store := range m.stores {
		sessions, err := store.List()
		if err != nil {
			continue
		}
		for _, s := range sessions {
			if existing, ok := byName[s.Username]; !ok || s.LastModified.After(existing.LastModified) {
				byName[s.Username] = s
			}
		}
	}

	result := make([]*Session, 0, len(byName))
	for _, s := range byName {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

// Delete removes username from every store that has it
func (m *Manager) Delete(username string) error {
	deleted := false
	for _, store := range m.stores {
		if err := store.Delete(username); err == nil {
			deleted = true
		}
	}
	if !deleted {
		return fmt.Errorf("%w for user: %s", ErrCredentialsNotFound, username)
	}
	return nil
}

// Resolve fills in the session cookies of cfg from the stores. A session
// already present in cfg wins; a named account must exist.
func (m *Manager) Resolve(cfg *config.InstagramConfig) error {
	if cfg.SessionID != "" {
		return nil
	}

	var (
		s   *Session
		err error
	)
	if cfg.Account != "" {
		s, err = m.Retrieve(cfg.Account)
	} else {
		s, err = m.RetrieveDefault()
	}
	if err != nil {
		return err
	}

	cfg.SessionID = s.SessionID
	cfg.CSRFToken = s.CSRFToken
	if s.UserAgent != "" {
		cfg.UserAgent = s.UserAgent
	}
	return nil
}

// ConfigDir is the per-user directory holding igapi state
func ConfigDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "igapi"), nil
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "igapi"), nil
	}

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "igapi"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "igapi"), nil
}

// Masked returns a copy safe to print
func (s *Session) Masked() *Session {
	return &Session{
		Username:     s.Username,
		SessionID:    mask(s.SessionID),
		CSRFToken:    mask(s.CSRFToken),
		UserAgent:    s.UserAgent,
		LastModified: s.LastModified,
	}
}

func mask(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
