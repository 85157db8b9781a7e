package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const ReadStateVersion = 1

// ReadState records which conversations have been opened. Segments of one
// conversation share a marker.
type ReadState struct {
	Version       int                  `json:"version"`
	Conversations map[string]time.Time `json:"conversations"`
}

func (r ReadState) IsRead(conversationID string) bool {
	_, ok := r.Conversations[strings.TrimSpace(conversationID)]
	return ok
}

// MarkRead reports whether the marker was newly added.
func (r *ReadState) MarkRead(conversationID string, at time.Time) bool {
	id := strings.TrimSpace(conversationID)
	if id == "" {
		return false
	}
	if r.Conversations == nil {
		r.Conversations = map[string]time.Time{}
	}
	if _, ok := r.Conversations[id]; ok {
		return false
	}
	r.Conversations[id] = at.UTC()
	return true
}

func (r *ReadState) MarkUnread(conversationID string) bool {
	id := strings.TrimSpace(conversationID)
	if _, ok := r.Conversations[id]; !ok {
		return false
	}
	delete(r.Conversations, id)
	return true
}

// Toggle flips the marker and returns the new state.
func (r *ReadState) Toggle(conversationID string, at time.Time) bool {
	if r.IsRead(conversationID) {
		r.MarkUnread(conversationID)
		return false
	}
	return r.MarkRead(conversationID, at)
}

func (r *ReadState) Clear() int {
	n := len(r.Conversations)
	r.Conversations = map[string]time.Time{}
	return n
}

func (r ReadState) IDs() []string {
	ids := make([]string, 0, len(r.Conversations))
	for id := range r.Conversations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r ReadState) ReadAt(conversationID string) (time.Time, bool) {
	at, ok := r.Conversations[strings.TrimSpace(conversationID)]
	return at, ok
}

type ReadStateStore struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

func ReadStatePath(configPathOverride string) (string, error) {
	path := configPathOverride
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return "", err
		}
		path = p
	}
	return filepath.Join(filepath.Dir(path), "read_state.json"), nil
}

func NewReadStateStore(configPathOverride string) (*ReadStateStore, error) {
	path, err := ReadStatePath(configPathOverride)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	return &ReadStateStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (s *ReadStateStore) Path() string { return s.path }

func (s *ReadStateStore) Load() (ReadState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return ReadState{}, fmt.Errorf("lock read state: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	return s.loadUnlocked()
}

func (s *ReadStateStore) Update(fn func(*ReadState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock read state: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	state, err := s.loadUnlocked()
	if err != nil {
		return err
	}
	if err := fn(&state); err != nil {
		return err
	}
	return s.saveUnlocked(state)
}

func (s *ReadStateStore) loadUnlocked() (ReadState, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ReadState{Version: ReadStateVersion, Conversations: map[string]time.Time{}}, nil
		}
		return ReadState{}, fmt.Errorf("read read state: %w", err)
	}

	var state ReadState
	if err := json.Unmarshal(b, &state); err != nil {
		return ReadState{}, fmt.Errorf("parse read state: %w", err)
	}
	if state.Version == 0 {
		state.Version = ReadStateVersion
	}
	if state.Version != ReadStateVersion {
		return ReadState{}, fmt.Errorf("unsupported read state version %d (expected %d)", state.Version, ReadStateVersion)
	}
	if state.Conversations == nil {
		state.Conversations = map[string]time.Time{}
	}
	return state, nil
}

func (s *ReadStateStore) saveUnlocked(state ReadState) error {
	if state.Version == 0 {
		state.Version = ReadStateVersion
	}
	if state.Version != ReadStateVersion {
		return fmt.Errorf("refuse to write read state version %d (expected %d)", state.Version, ReadStateVersion)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal read state: %w", err)
	}
	b = append(b, '\n')

	if err := atomicWriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("atomic write read state: %w", err)
	}
	return nil
}
