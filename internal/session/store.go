package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/callmeback/callbackd/internal/model"
)

// Change describes a credential transition: a non-empty token means a session
// began (or was restored), an empty token means logout.
type Change struct {
	Token string
}

// Store is the session provider: it owns the auth token and user profile and
// is the only component allowed to mutate them. Consumers such as the poller
// read the token and react to Changes().
type Store struct {
	mu      sync.RWMutex
	token   string
	user    model.User
	path    string
	changes chan Change
}

type persistedSession struct {
	Token string `json:"token"`
	User  struct {
		ID            string     `json:"id"`
		Name          string     `json:"name"`
		Email         string     `json:"email"`
		PlanType      string     `json:"plan_type"`
		PlanExpiry    *time.Time `json:"plan_expiry,omitempty"`
		ReminderCount int        `json:"reminder_count"`
	} `json:"user"`
}

// NewStore creates a session store persisting to path. An empty path keeps
// the session in memory only.
func NewStore(path string) *Store {
	return &Store{
		path:    strings.TrimSpace(path),
		changes: make(chan Change, 4),
	}
}

// Load restores a previously persisted session. A missing or empty file is
// not an error; it simply leaves the store unauthenticated.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil
	}
	var stored persistedSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return err
	}
	if strings.TrimSpace(stored.Token) == "" {
		return nil
	}

	s.mu.Lock()
	s.token = stored.Token
	s.user = model.User{
		ID:            stored.User.ID,
		Name:          stored.User.Name,
		Email:         stored.User.Email,
		PlanType:      model.PlanType(stored.User.PlanType),
		PlanExpiry:    stored.User.PlanExpiry,
		ReminderCount: stored.User.ReminderCount,
	}
	s.mu.Unlock()

	s.signal(Change{Token: stored.Token})
	return nil
}

// SetCredentials installs a new session and persists it.
func (s *Store) SetCredentials(token string, user model.User) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("session: token is required")
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	s.signal(Change{Token: token})
	return s.persist()
}

// SetUser refreshes the cached profile without touching the token.
func (s *Store) SetUser(user model.User) error {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return errors.New("session: no active session")
	}
	s.user = user
	s.mu.Unlock()
	return s.persist()
}

// Clear logs out: the token is dropped, the persisted file removed, and a
// zero-token Change emitted so the poller stops.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.token = ""
	s.user = model.User{}
	s.mu.Unlock()

	s.signal(Change{})
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Token returns the current bearer token, or "" when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.token != ""
}

// Changes delivers credential transitions. The channel is buffered; when a
// consumer lags, intermediate transitions collapse to the latest state read
// via Token().
func (s *Store) Changes() <-chan Change {
	return s.changes
}

func (s *Store) signal(c Change) {
	select {
	case s.changes <- c:
	default:
	}
}

func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}

	s.mu.RLock()
	stored := persistedSession{Token: s.token}
	stored.User.ID = s.user.ID
	stored.User.Name = s.user.Name
	stored.User.Email = s.user.Email
	stored.User.PlanType = string(s.user.PlanType)
	stored.User.PlanExpiry = s.user.PlanExpiry
	stored.User.ReminderCount = s.user.ReminderCount
	s.mu.RUnlock()

	dir := filepath.Dir(s.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	payload, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
