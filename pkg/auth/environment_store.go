package auth

import "os"

// EnvironmentStore reads a single session from IGAPI_SESSION_ID,
// IGAPI_CSRF_TOKEN and IGAPI_USER_AGENT. It cannot be written.
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Store(*Session) error {
	return ErrStoreUnavailable
}

// EnvUsername names the environment session in listings
const EnvUsername = "env"

// Retrieve answers for an empty username or EnvUsername only
func (e *EnvironmentStore) Retrieve(username string) (*Session, error) {
	if username != "" && username != EnvUsername {
		return nil, ErrCredentialsNotFound
	}
	sessionID := os.Getenv("IGAPI_SESSION_ID")
	csrfToken := os.Getenv("IGAPI_CSRF_TOKEN")
	if sessionID == "" || csrfToken == "" {
		return nil, ErrCredentialsNotFound
	}

	return &Session{
		Username:  EnvUsername,
		SessionID: sessionID,
		CSRFToken: csrfToken,
		UserAgent: os.Getenv("IGAPI_USER_AGENT"),
	}, nil
}

func (e *EnvironmentStore) List() ([]*Session, error) {
	s, err := e.Retrieve("")
	if err != nil {
		return []*Session{}, nil
	}
	return []*Session{s}, nil
}

func (e *EnvironmentStore) Delete(string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(string) bool {
	return os.Getenv("IGAPI_SESSION_ID") != "" && os.Getenv("IGAPI_CSRF_TOKEN") != ""
}
