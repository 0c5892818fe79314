package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// eventAsset is the on-disk envelope for overlay event files. It mirrors the
// shape of the rest of the project's asset files: a version, an id, and the
// spec payload.
type eventAsset struct {
	Version    uint   `json:"version"`
	Identifier string `json:"id"`
	Spec       *Event `json:"spec"`
}

func (a *eventAsset) validate() error {
	if a.Version == 0 {
		return fmt.Errorf("version must be set")
	}
	if a.Identifier == "" {
		return fmt.Errorf("id must be set")
	}
	if a.Spec == nil {
		return fmt.Errorf("spec must be set")
	}
	if a.Spec.ID != "" && a.Spec.ID != a.Identifier {
		return fmt.Errorf("spec id %q does not match asset id %q", a.Spec.ID, a.Identifier)
	}
	return a.Spec.Validate()
}

// LoadDir reads every .json event asset under path and returns the events
// combined with the built-in set. Duplicate ids across files or against the
// built-ins are an error.
func LoadDir(path string) (*Catalog, error) {
	events := make([]*Event, 0, len(builtinEvents))
	events = append(events, builtinEvents...)

	err := filepath.Walk(path, func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() || filepath.Ext(p) != ".json" {
			return nil
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		var asset eventAsset
		if err := json.Unmarshal(data, &asset); err != nil {
			return fmt.Errorf("unmarshalling %s: %w", filepath.Base(p), err)
		}
		if err := asset.validate(); err != nil {
			return fmt.Errorf("validating %s: %w", filepath.Base(p), err)
		}

		asset.Spec.ID = asset.Identifier
		events = append(events, asset.Spec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return New(events)
}
