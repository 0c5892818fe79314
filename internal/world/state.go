// Package world implements the shared colony simulation: a season-scoped,
// turn-based state machine where many users pool voting points on a choice
// and the server resolves each turn deterministically when its window closes.
package world

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"colonyworld/internal/catalog"
	"colonyworld/internal/clock"
)

// Status is the lifecycle of a season. Transitions are one-way: running is
// the only non-terminal state.
type Status string

const (
	StatusRunning       Status = "running"
	StatusSuccess       Status = "success"
	StatusDead          Status = "dead"
	StatusSeasonTimeout Status = "season_timeout"
)

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
	return s != StatusRunning
}

// Valid reports whether s is one of the known status values.
func (s Status) Valid() bool {
	switch s {
	case StatusRunning, StatusSuccess, StatusDead, StatusSeasonTimeout:
		return true
	}
	return false
}

// Resource clamp bounds. The engine's clamp is authoritative; display layers
// may rescale but never see values outside these ranges.
const (
	MaxHP       = 20
	MaxFood     = 30
	MaxMeds     = 30
	MaxMoney    = 30
	upkeepMeals = 1
)

// Resources is the colony's stockpile. All fields stay within their bounds.
type Resources struct {
	HP    int `json:"hp"`
	Food  int `json:"food"`
	Meds  int `json:"meds"`
	Money int `json:"money"`
}

// StartResources is the stockpile a fresh season begins with.
var StartResources = Resources{HP: 10, Food: 5, Meds: 2, Money: 5}

// Vote records one user's accumulated spend on a single turn. The choice is
// locked at first vote; later votes may only add points to it.
type Vote struct {
	ChoiceID string `json:"choiceId"`
	Points   int    `json:"points"`
}

// Turn is one open voting window. At most one turn exists at a time.
type Turn struct {
	ID          string          `json:"id"`
	Day         int             `json:"day"`
	Event       *catalog.Event  `json:"event"`
	StartedAt   time.Time       `json:"startedAt"`
	EndsAt      time.Time       `json:"endsAt"`
	VoteTotals  map[string]int  `json:"voteTotals"`
	VotesByUser map[string]Vote `json:"votesByUser"`

	// Set during resolution, just before the turn is folded into history.
	ResolvedChoiceID string `json:"resolvedChoiceId,omitempty"`
	ResolvedReason   Reason `json:"resolvedReason,omitempty"`
}

// TotalPoints sums all points cast on the turn so far.
func (t *Turn) TotalPoints() int {
	total := 0
	for _, p := range t.VoteTotals {
		total += p
	}
	return total
}

// PlayerCharge is a per-user voting-point wallet with passive refill.
type PlayerCharge struct {
	Points       int       `json:"points"`
	LastRefillAt time.Time `json:"lastRefillAt"`
}

// Refill applies the lazy time-based refill: one point per full interval
// elapsed since LastRefillAt, capped at max. LastRefillAt advances only by
// whole intervals consumed so the remainder keeps accruing.
func (c PlayerCharge) Refill(now time.Time, interval time.Duration, max int) PlayerCharge {
	elapsed := now.Sub(c.LastRefillAt)
	if elapsed <= 0 {
		return c
	}

	gained := int(elapsed / interval)
	if gained <= 0 {
		return c
	}

	return PlayerCharge{
		Points:       clampInt(c.Points+gained, 0, max),
		LastRefillAt: c.LastRefillAt.Add(time.Duration(gained) * interval),
	}
}

// HistoryEntry is the immutable record of one resolved turn.
type HistoryEntry struct {
	Day                 int                   `json:"day"`
	TurnID              string                `json:"turnId"`
	EventID             string                `json:"eventId"`
	SelectedChoiceID    string                `json:"selectedChoiceId"`
	SelectedChoiceLabel catalog.LocalizedText `json:"selectedChoiceLabel"`
	Reason              Reason                `json:"reason"`
	Before              Resources             `json:"before"`
	After               Resources             `json:"after"`
	Delta               catalog.Delta         `json:"delta"`
	ResolvedAt          time.Time             `json:"resolvedAt"`
}

// State is the whole mutable world: one season's simulation plus the vote
// and wallet ledgers. It is owned exclusively by the Engine, which serializes
// all access; State itself carries no locking.
type State struct {
	SeasonID        string                  `json:"seasonId"`
	SeasonStartedAt time.Time               `json:"seasonStartedAt"`
	SeasonEndsAt    time.Time               `json:"seasonEndsAt"`
	Status          Status                  `json:"status"`
	Day             int                     `json:"day"`
	Resources       Resources               `json:"resources"`
	CurrentTurn     *Turn                   `json:"currentTurn"`
	History         []HistoryEntry          `json:"history"`
	Players         map[string]PlayerCharge `json:"players"`
	UpdatedAt       time.Time               `json:"updatedAt"`
}

// NewState creates a fresh season starting at now.
func NewState(now time.Time, cfg Config) *State {
	return &State{
		SeasonID:        buildSeasonID(now),
		SeasonStartedAt: now,
		SeasonEndsAt:    now.Add(cfg.SeasonLength),
		Status:          StatusRunning,
		Day:             0,
		Resources:       StartResources,
		History:         []HistoryEntry{},
		Players:         map[string]PlayerCharge{},
		UpdatedAt:       now,
	}
}

// Validate checks the structural invariants a loaded state must satisfy.
func (s *State) Validate() error {
	if s.SeasonID == "" {
		return fmt.Errorf("seasonId must be set")
	}
	if !s.Status.Valid() {
		return fmt.Errorf("invalid status %q", s.Status)
	}
	if s.Day < 0 {
		return fmt.Errorf("day must not be negative")
	}
	if s.Players == nil {
		return fmt.Errorf("players must be set")
	}
	if s.History == nil {
		return fmt.Errorf("history must be set")
	}
	return nil
}

func buildSeasonID(now time.Time) string {
	kst := clock.ToKST(now)
	return fmt.Sprintf("season-%04d%02d%02d-%02d%02d",
		kst.Year(), kst.Month(), kst.Day(), kst.Hour(), kst.Minute())
}

func newTurn(s *State, ev *catalog.Event, now time.Time, turnLength time.Duration) *Turn {
	totals := make(map[string]int, len(ev.Choices))
	for _, c := range ev.Choices {
		totals[c.ID] = 0
	}

	return &Turn{
		ID:          fmt.Sprintf("turn-%s-%d-%s", s.SeasonID, s.Day+1, uuid.NewString()[:8]),
		Day:         s.Day + 1,
		Event:       ev,
		StartedAt:   now,
		EndsAt:      now.Add(turnLength),
		VoteTotals:  totals,
		VotesByUser: map[string]Vote{},
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Config carries the simulation's tunables. Defaults match the live game.
type Config struct {
	TurnLength      time.Duration
	RefillInterval  time.Duration
	MaxStoredPoints int
	TurnSpendCap    int
	MaxDays         int
	SeasonLength    time.Duration
	HistoryLimit    int
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		TurnLength:      30 * time.Minute,
		RefillInterval:  10 * time.Minute,
		MaxStoredPoints: 5,
		TurnSpendCap:    3,
		MaxDays:         60,
		SeasonLength:    7 * 24 * time.Hour,
		HistoryLimit:    120,
	}
}
