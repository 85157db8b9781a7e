package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestReadStatePath(t *testing.T) {
	dir := t.TempDir()
	path, err := ReadStatePath(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("ReadStatePath error: %v", err)
	}
	if want := filepath.Join(dir, "read_state.json"); path != want {
		t.Fatalf("expected %q, got %q", want, path)
	}
}

func TestReadStatePathDefault(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	path, err := ReadStatePath("")
	if err != nil {
		t.Fatalf("ReadStatePath error: %v", err)
	}
	if filepath.Base(path) != "read_state.json" || filepath.Base(filepath.Dir(path)) != "chat-explorer" {
		t.Fatalf("unexpected path %q", path)
	}
}

func TestReadStateMarkers(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	var state ReadState

	if state.IsRead("c1") {
		t.Fatalf("empty state should not report read")
	}
	if !state.MarkRead("c1", now) {
		t.Fatalf("expected first MarkRead to add")
	}
	if state.MarkRead(" c1 ", now.Add(time.Hour)) {
		t.Fatalf("expected second MarkRead to be a no-op")
	}
	if at, ok := state.ReadAt("c1"); !ok || !at.Equal(now) {
		t.Fatalf("ReadAt=%v,%v", at, ok)
	}
	if state.MarkRead("", now) {
		t.Fatalf("empty id must not be marked")
	}
	if state.Toggle("c2", now) != true || !state.IsRead("c2") {
		t.Fatalf("Toggle should mark c2 read")
	}
	if state.Toggle("c2", now) != false || state.IsRead("c2") {
		t.Fatalf("Toggle should mark c2 unread")
	}
	state.MarkRead("a0", now)
	if got := fmt.Sprint(state.IDs()); got != "[a0 c1]" {
		t.Fatalf("IDs=%s", got)
	}
	if !state.MarkUnread("a0") || state.MarkUnread("a0") {
		t.Fatalf("MarkUnread should remove once")
	}
	if n := state.Clear(); n != 1 || len(state.IDs()) != 0 {
		t.Fatalf("Clear removed %d, left %v", n, state.IDs())
	}
}

func TestReadStateStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewReadStateStore(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("NewReadStateStore error: %v", err)
	}

	state, err := store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if state.Version != ReadStateVersion || len(state.Conversations) != 0 {
		t.Fatalf("unexpected default state: %#v", state)
	}

	now := time.Now()
	if err := store.Update(func(s *ReadState) error {
		s.MarkRead("c1", now)
		s.MarkRead("c2", now)
		return nil
	}); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	state, err = store.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !state.IsRead("c1") || !state.IsRead("c2") || state.IsRead("c3") {
		t.Fatalf("unexpected markers: %v", state.IDs())
	}
	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("stat read state: %v", err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		t.Fatalf("read state should be private, got %o", info.Mode().Perm())
	}
}

func TestReadStateLoadErrors(t *testing.T) {
	cases := map[string]string{
		"invalid json":     "{invalid json",
		"version mismatch": `{"version": 99, "conversations": {}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "read_state.json")
			if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
				t.Fatalf("write read state: %v", err)
			}
			store := &ReadStateStore{path: path}
			if _, err := store.loadUnlocked(); err == nil {
				t.Fatalf("expected loadUnlocked to fail")
			}
		})
	}
}

func TestReadStateLoadUpgradesVersionZero(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "read_state.json")
	if err := os.WriteFile(path, []byte(`{"version":0}`), 0o600); err != nil {
		t.Fatalf("write read state: %v", err)
	}
	store := &ReadStateStore{path: path}
	state, err := store.loadUnlocked()
	if err != nil {
		t.Fatalf("loadUnlocked error: %v", err)
	}
	if state.Version != ReadStateVersion || state.Conversations == nil {
		t.Fatalf("unexpected state: %#v", state)
	}
}

func TestReadStateUpdateReturnsCallbackError(t *testing.T) {
	dir := t.TempDir()
	store, err := NewReadStateStore(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("NewReadStateStore error: %v", err)
	}
	if err := store.Update(func(*ReadState) error {
		return fmt.Errorf("boom")
	}); err == nil {
		t.Fatalf("expected callback error")
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Fatalf("failed update must not write, stat err=%v", err)
	}
}

func TestReadStateUpdateIsSerialized(t *testing.T) {
	dir := t.TempDir()
	store, err := NewReadStateStore(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("NewReadStateStore error: %v", err)
	}

	const n = 20
	var wg sync.WaitGroup
	errCh := make(chan error, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			errCh <- store.Update(func(s *ReadState) error {
				s.MarkRead(fmt.Sprintf("c%02d", i), time.Now())
				return nil
			})
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	state, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(state.IDs()) != n {
		t.Fatalf("IDs len=%d want %d", len(state.IDs()), n)
	}
}
