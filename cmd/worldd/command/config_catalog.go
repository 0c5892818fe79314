package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"golang.org/x/text/language"

	"colonyworld/internal/catalog"
)

// CatalogConfig points at an optional directory of extra event definitions
// layered over the built-in set, plus the announcement locale.
type CatalogConfig struct {
	Path   string `json:"path"`
	Locale string `json:"locale"`
}

func (c *CatalogConfig) Validate() error {
	el := errors.NewErrorList()

	if c.Path != "" {
		if _, err := os.Stat(c.Path); err != nil {
			el.Add(fmt.Errorf("catalog: invalid path %q: %w", c.Path, err))
		}
	}
	if c.Locale != "" {
		if _, err := language.Parse(c.Locale); err != nil {
			el.Add(fmt.Errorf("catalog: invalid locale %q: %w", c.Locale, err))
		}
	}

	return el.Err()
}

func (c *CatalogConfig) BuildCatalog() (*catalog.Catalog, error) {
	if c.Path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.LoadDir(c.Path)
	if err != nil {
		return nil, fmt.Errorf("loading event catalog: %w", err)
	}
	return cat, nil
}

// BuildLocale returns the announcement locale, defaulting to Korean to match
// the built-in event text.
func (c *CatalogConfig) BuildLocale() language.Tag {
	if c.Locale == "" {
		return language.Korean
	}
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Korean
	}
	return tag
}
