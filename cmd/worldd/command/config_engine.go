package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"

	"colonyworld/internal/world"
)

// EngineConfig tunes the simulation. Every field is optional; zero values
// fall back to the production defaults.
type EngineConfig struct {
	TurnLength      string `json:"turn_length"`
	RefillInterval  string `json:"refill_interval"`
	MaxStoredPoints int    `json:"max_stored_points"`
	TurnSpendCap    int    `json:"turn_spend_cap"`
	MaxDays         int    `json:"max_days"`
	SeasonLength    string `json:"season_length"`
	HistoryLimit    int    `json:"history_limit"`
}

func (c *EngineConfig) Validate() error {
	el := errors.NewErrorList()

	for _, f := range []struct {
		name  string
		value string
	}{
		{"turn_length", c.TurnLength},
		{"refill_interval", c.RefillInterval},
		{"season_length", c.SeasonLength},
	} {
		if f.value == "" {
			continue
		}
		d, err := time.ParseDuration(f.value)
		if err != nil {
			el.Add(fmt.Errorf("parsing %s: %w", f.name, err))
		} else if d <= 0 {
			el.Add(fmt.Errorf("%s must be positive", f.name))
		}
	}

	if c.MaxStoredPoints < 0 {
		el.Add(fmt.Errorf("max_stored_points must not be negative"))
	}
	if c.TurnSpendCap < 0 {
		el.Add(fmt.Errorf("turn_spend_cap must not be negative"))
	}
	if c.MaxDays < 0 {
		el.Add(fmt.Errorf("max_days must not be negative"))
	}
	if c.HistoryLimit < 0 {
		el.Add(fmt.Errorf("history_limit must not be negative"))
	}

	return el.Err()
}

// BuildConfig merges the configured overrides over the defaults.
func (c *EngineConfig) BuildConfig() (world.Config, error) {
	cfg := world.DefaultConfig()

	if c.TurnLength != "" {
		d, err := time.ParseDuration(c.TurnLength)
		if err != nil {
			return cfg, fmt.Errorf("parsing turn_length: %w", err)
		}
		cfg.TurnLength = d
	}
	if c.RefillInterval != "" {
		d, err := time.ParseDuration(c.RefillInterval)
		if err != nil {
			return cfg, fmt.Errorf("parsing refill_interval: %w", err)
		}
		cfg.RefillInterval = d
	}
	if c.SeasonLength != "" {
		d, err := time.ParseDuration(c.SeasonLength)
		if err != nil {
			return cfg, fmt.Errorf("parsing season_length: %w", err)
		}
		cfg.SeasonLength = d
	}
	if c.MaxStoredPoints > 0 {
		cfg.MaxStoredPoints = c.MaxStoredPoints
	}
	if c.TurnSpendCap > 0 {
		cfg.TurnSpendCap = c.TurnSpendCap
	}
	if c.MaxDays > 0 {
		cfg.MaxDays = c.MaxDays
	}
	if c.HistoryLimit > 0 {
		cfg.HistoryLimit = c.HistoryLimit
	}

	return cfg, nil
}
