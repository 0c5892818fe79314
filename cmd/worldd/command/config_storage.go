package command

import (
	"fmt"

	"github.com/pixil98/go-errors"

	"colonyworld/internal/world"
	"colonyworld/internal/worldstore"
)

type StorageBackend string

const (
	BackendMemory StorageBackend = "memory"
	BackendFile   StorageBackend = "file"
	BackendSqlite StorageBackend = "sqlite"
)

type StorageConfig struct {
	Backend StorageBackend `json:"backend"`
	Path    string         `json:"path"`
}

func (c *StorageConfig) Validate() error {
	el := errors.NewErrorList()

	switch c.Backend {
	case "", BackendMemory:
	case BackendFile, BackendSqlite:
		if c.Path == "" {
			el.Add(fmt.Errorf("storage: path is required for backend %q", c.Backend))
		}
	default:
		el.Add(fmt.Errorf("storage: unknown backend %q", c.Backend))
	}

	return el.Err()
}

// BuildStore returns the configured durable store, or nil for memory-only
// operation.
func (c *StorageConfig) BuildStore() (world.Store, error) {
	switch c.Backend {
	case "", BackendMemory:
		return nil, nil
	case BackendFile:
		store, err := worldstore.NewFileStore(c.Path)
		if err != nil {
			return nil, fmt.Errorf("creating file store: %w", err)
		}
		return store, nil
	case BackendSqlite:
		store, err := worldstore.NewSqliteStore(c.Path)
		if err != nil {
			return nil, fmt.Errorf("creating sqlite store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.Backend)
	}
}
