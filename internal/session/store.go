// Package session keeps per-browser board state: GM unlock, the selected
// hex, and the fog overlay toggle.
package session

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the view state of one browser session.
type State struct {
	IsGM        bool `json:"is_gm"`
	SelectedHex *int `json:"selected_hex"`
	ShowFog     bool `json:"show_fog"`
}

func newState() *State {
	return &State{ShowFog: true}
}

// FlagStore persists the GM unlock flag across restarts.
type FlagStore interface {
	SetGMFlag(sessionID string, on bool) error
	GMFlag(sessionID string) (bool, error)
}

const (
	// DefaultMaxSessions caps how many sessions are held in memory.
	DefaultMaxSessions = 10000
	// DefaultIdleTimeout is how long an unused session is kept.
	DefaultIdleTimeout = 24 * time.Hour
)

// Store holds session state in memory, backed by a FlagStore for the GM flag.
// At most maxSessions are held; idle sessions expire and, when the store is
// still full, the least recently seen are dropped. A dropped session reopens
// with its persisted GM flag.
type Store struct {
	gmKey string
	flags FlagStore

	maxSessions int
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	state State
	seen  time.Time
}

// NewStore creates a session store. An empty gmKey disables GM unlock.
func NewStore(gmKey string, flags FlagStore) *Store {
	if flags == nil {
		flags = NewMemoryFlags()
	}
	return &Store{
		gmKey:       gmKey,
		flags:       flags,
		maxSessions: DefaultMaxSessions,
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
		sessions:    make(map[string]*entry),
	}
}

// UnlockEnabled reports whether a GM key is configured.
func (s *Store) UnlockEnabled() bool {
	return s.gmKey != ""
}

// Len returns the number of sessions held in memory.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Open returns the session for id, creating it when id is empty, malformed,
// or unknown. The returned id is the one the caller should keep using.
// A known id that is not in memory picks up its persisted GM flag.
func (s *Store) Open(id string) (string, State) {
	fresh := false
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
		fresh = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.sessions[id]
	if !ok {
		e = &entry{state: *newState()}
		if !fresh {
			on, err := s.flags.GMFlag(id)
			if err != nil {
				slog.Warn("load gm flag failed", "session", id, "error", err)
			}
			e.state.IsGM = on
		}
		s.evict(now)
		s.sessions[id] = e
	}
	e.seen = now
	return id, e.state
}

// evict makes room for one more session. Callers hold mu.
func (s *Store) evict(now time.Time) {
	if len(s.sessions) < s.maxSessions {
		return
	}
	for id, e := range s.sessions {
		if now.Sub(e.seen) > s.idleTimeout {
			delete(s.sessions, id)
		}
	}
	if len(s.sessions) < s.maxSessions {
		return
	}

	// Still full: drop the oldest tenth so a burst of new sessions
	// does not rescan the map on every request.
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return s.sessions[ids[i]].seen.Before(s.sessions[ids[j]].seen)
	})
	drop := len(ids) - s.maxSessions + 1 + s.maxSessions/10
	if drop > len(ids) {
		drop = len(ids)
	}
	for _, id := range ids[:drop] {
		delete(s.sessions, id)
	}
	slog.Debug("sessions evicted", "dropped", drop, "held", len(s.sessions))
}

// Get returns a copy of the session state.
func (s *Store) Get(id string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return State{}, false
	}
	return e.state, true
}

// UnlockGM grants GM mode when key matches the configured key.
// Returns false for a wrong key or when unlock is disabled.
func (s *Store) UnlockGM(id, key string) (bool, error) {
	if s.gmKey == "" {
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(s.gmKey)) != 1 {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return false, fmt.Errorf("unknown session %q", id)
	}
	if err := s.flags.SetGMFlag(id, true); err != nil {
		return false, fmt.Errorf("persist gm flag: %w", err)
	}
	e.state.IsGM = true
	return true, nil
}

// ResetGM drops GM mode and the persisted flag.
func (s *Store) ResetGM(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[id]; ok {
		e.state.IsGM = false
	}
	if err := s.flags.SetGMFlag(id, false); err != nil {
		return fmt.Errorf("clear gm flag: %w", err)
	}
	return nil
}

// SetSelectedHex records the selected spiral index. nil clears the selection.
func (s *Store) SetSelectedHex(id string, index *int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return false
	}
	if index == nil {
		e.state.SelectedHex = nil
		return true
	}
	v := *index
	e.state.SelectedHex = &v
	return true
}

// ToggleFog flips the fog overlay and returns the new setting.
func (s *Store) ToggleFog(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return false
	}
	e.state.ShowFog = !e.state.ShowFog
	return e.state.ShowFog
}

// MemoryFlags is an in-process FlagStore.
type MemoryFlags struct {
	mu    sync.Mutex
	flags map[string]bool
}

// NewMemoryFlags creates an empty MemoryFlags.
func NewMemoryFlags() *MemoryFlags {
	return &MemoryFlags{flags: make(map[string]bool)}
}

// SetGMFlag implements FlagStore.
func (m *MemoryFlags) SetGMFlag(sessionID string, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if on {
		m.flags[sessionID] = true
	} else {
		delete(m.flags, sessionID)
	}
	return nil
}

// GMFlag implements FlagStore.
func (m *MemoryFlags) GMFlag(sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flags[sessionID], nil
}
