package worldstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"colonyworld/internal/world"
)

// FileStore keeps the world record in a single JSON file. Writes go through
// a temp-file rename so an interrupted process never leaves a partial record.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at path. The parent directory is
// created if needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Load(_ context.Context) (*world.State, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	state, err := decodeState(data)
	if err != nil {
		slog.Warn("discarding malformed world state file", "path", s.path, "error", err)
		return nil, nil
	}
	return state, nil
}

func (s *FileStore) Save(_ context.Context, state *world.State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	return atomicWrite(s.path, data, 0644)
}

func (s *FileStore) Mode() string {
	return "file"
}

// atomicWrite writes data to a temp file then renames it to the target path.
// This prevents partial or empty files if the process is interrupted.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		if removeErr := os.Remove(tmp); removeErr != nil {
			slog.Warn("failed to remove temp file after rename failure", "path", tmp, "error", removeErr)
		}
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
