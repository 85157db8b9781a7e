package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

const appDir = "chat-explorer"

func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, appDir, "config.yaml"), nil
}

type Store struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

func NewStore(pathOverride string) (*Store, error) {
	path := pathOverride
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return Settings{}, fmt.Errorf("lock config: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	return s.loadUnlocked()
}

func (s *Store) Save(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	return s.saveUnlocked(settings)
}

func (s *Store) Update(fn func(*Settings) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	settings, err := s.loadUnlocked()
	if err != nil {
		return err
	}
	if err := fn(&settings); err != nil {
		return err
	}
	return s.saveUnlocked(settings)
}

func (s *Store) loadUnlocked() (Settings, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return Settings{}, fmt.Errorf("read config: %w", err)
	}

	settings := Settings{GapMinutes: DefaultGapMinutes}
	if err := yaml.Unmarshal(b, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse config %s: %w", s.path, err)
	}
	settings.fill()
	if err := settings.Validate(); err != nil {
		return Settings{}, fmt.Errorf("config %s: %w", s.path, err)
	}
	return settings, nil
}

func (s *Store) saveUnlocked(settings Settings) error {
	settings.fill()
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("refuse to write config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	b, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := atomicWriteFile(s.path, b, 0o600); err != nil {
		return fmt.Errorf("atomic write config: %w", err)
	}
	return nil
}
