package hive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hivescope/witnessboard/pkg/clock"
)

// MaxSavedSessions caps the saved-session history; the least recently used
// entry is evicted on overflow.
const MaxSavedSessions = 10

// Persisted key names, kept compatible with the browser local-storage layout.
const (
	keyCurrentUser  = "hive_current_user"
	keySavedUsers   = "hive_saved_users"
	keyViewOnlyMode = "hive_view_only_mode"
)

// ErrSessionStore wraps session persistence failures
var ErrSessionStore = errors.New("session store failure")

// SavedSession is one remembered user: the last composed snapshot plus the
// profile image and when it was last seen.
type SavedSession struct {
	Username     string       `json:"username"`
	Snapshot     UserSnapshot `json:"snapshot"`
	ProfileImage string       `json:"profile_image"`
	SeenAt       time.Time    `json:"seen_at"`
}

// SessionStore holds the current session, the view-only flag and an MRU
// history of up to MaxSavedSessions users, persisted to a JSON file.
type SessionStore struct {
	mu       sync.Mutex
	path     string
	clock    Clock
	current  *SavedSession
	viewOnly bool
	recent   *lru.Cache[string, SavedSession]
}

// SessionOption configures the SessionStore
type SessionOption func(*SessionStore)

// WithSessionClock injects a custom Clock (e.g., for testing)
func WithSessionClock(c Clock) SessionOption {
	return func(s *SessionStore) { s.clock = c }
}

// NewSessionStore creates a store persisting to path, loading any previous
// state. A missing file is a fresh store, not an error.
func NewSessionStore(path string, opts ...SessionOption) (*SessionStore, error) {
	recent, err := lru.New[string, SavedSession](MaxSavedSessions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionStore, err)
	}

	s := &SessionStore{
		path:   path,
		clock:  clock.SystemClock{},
		recent: recent,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Remember records a session in the MRU history and persists. Adding an
// 11th distinct user evicts the least recently used one.
func (s *SessionStore) Remember(sess SavedSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.SeenAt = s.clock.Now()
	s.recent.Add(sess.Username, sess)
	return s.persist()
}

// SetCurrent replaces the active session and records it in history.
func (s *SessionStore) SetCurrent(sess SavedSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess.SeenAt = s.clock.Now()
	s.current = &sess
	s.recent.Add(sess.Username, sess)
	return s.persist()
}

// Current returns the active session, if any.
func (s *SessionStore) Current() (SavedSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return SavedSession{}, false
	}
	return *s.current, true
}

// ClearCurrent logs the active session out without touching history.
func (s *SessionStore) ClearCurrent() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	return s.persist()
}

// SetViewOnly toggles view-only mode, which skips the signing flow.
func (s *SessionStore) SetViewOnly(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.viewOnly = on
	return s.persist()
}

// ViewOnly reports whether view-only mode is on.
func (s *SessionStore) ViewOnly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewOnly
}

// Saved returns the session history, most recently used first.
func (s *SessionStore) Saved() []SavedSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savedLocked()
}

// savedLocked lists history newest-first; lru keys come oldest-first.
func (s *SessionStore) savedLocked() []SavedSession {
	keys := s.recent.Keys()
	slices.Reverse(keys)

	out := make([]SavedSession, 0, len(keys))
	for _, key := range keys {
		if sess, ok := s.recent.Peek(key); ok {
			out = append(out, sess)
		}
	}
	return out
}

// persistedState is the on-disk layout, mirroring the browser storage keys.
type persistedState struct {
	CurrentUser *SavedSession  `json:"hive_current_user"`
	SavedUsers  []SavedSession `json:"hive_saved_users"`
	ViewOnly    bool           `json:"hive_view_only_mode"`
}

func (s *SessionStore) persist() error {
	// Stored oldest-first so reloading re-adds in recency order.
	saved := s.savedLocked()
	slices.Reverse(saved)

	state := persistedState{
		CurrentUser: s.current,
		SavedUsers:  saved,
		ViewOnly:    s.viewOnly,
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSessionStore, err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionStore, err)
	}
	return nil
}

func (s *SessionStore) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSessionStore, err)
	}

	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionStore, err)
	}

	for _, sess := range state.SavedUsers {
		s.recent.Add(sess.Username, sess)
	}
	s.current = state.CurrentUser
	s.viewOnly = state.ViewOnly
	return nil
}
