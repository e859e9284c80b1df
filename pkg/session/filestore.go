package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const stateFileName = "session.json"

// FileStore persists values as a single JSON object on disk. Storage
// failures are swallowed: reads report the value as absent and writes
// silently do nothing, so callers on a read-only or missing directory keep
// working with an empty session.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file-backed store rooted at dir. An empty dir
// falls back to ~/.smartcal.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".smartcal")
		}
	}
	return &FileStore{path: filepath.Join(dir, stateFileName)}
}

func (f *FileStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	state := f.read()
	state[key] = value
	f.write(state)
	return nil
}

func (f *FileStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.read()[key]
	if !ok || value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

func (f *FileStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	state := f.read()
	for _, key := range keys {
		delete(state, key)
	}
	f.write(state)
	return nil
}

func (f *FileStore) read() map[string]string {
	state := map[string]string{}
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return state
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return map[string]string{}
	}
	return state
}

func (f *FileStore) write(state map[string]string) {
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return
	}
	// Best effort: a failed write leaves the previous state in place.
	_ = os.WriteFile(f.path, raw, 0o600)
}
