package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const seenFileName = "seen.json"

// seenFile is the on-disk layout of the file backend
type seenFile struct {
	Attempts  map[string]string `json:"attempts"`
	UpdatedAt string            `json:"updated_at"`
}

// FileStore keeps the seen-set in a single JSON file
type FileStore struct {
	mu      sync.Mutex
	path    string
	entries map[string]string
}

// NewFileStore opens (or creates) the seen-set file in dataDir
func NewFileStore(dataDir string) (*FileStore, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &FileStore{path: filepath.Join(dataDir, seenFileName)}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the location of the seen-set file
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// Nothing announced yet
			s.entries = make(map[string]string)
			return nil
		}
		return fmt.Errorf("reading seen-set: %w", err)
	}

	var file seenFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing seen-set: %w", err)
	}
	if file.Attempts == nil {
		file.Attempts = make(map[string]string)
	}
	s.entries = file.Attempts
	return nil
}

// save rewrites the file through a temp file so a crash never leaves it half written
func (s *FileStore) save() error {
	file := seenFile{
		Attempts:  s.entries,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding seen-set: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing seen-set: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing seen-set: %w", err)
	}
	return nil
}

// Get implements Store
func (s *FileStore) Get(ctx context.Context, id string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entries[id]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

// Put implements Store. The file is rewritten on every call.
func (s *FileStore) Put(ctx context.Context, id string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; ok {
		return nil
	}
	s.entries[id] = string(value)
	if err := s.save(); err != nil {
		delete(s.entries, id)
		return err
	}
	return nil
}

// Close implements Store
func (s *FileStore) Close() error { return nil }
