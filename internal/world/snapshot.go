package world

import (
	"time"

	"colonyworld/internal/catalog"
	"colonyworld/internal/clock"
)

// PublicSnapshot is the sanitized, read-only projection returned by both
// engine operations. It never exposes which user voted for which choice.
type PublicSnapshot struct {
	Config    SnapshotConfig `json:"config"`
	ServerNow time.Time      `json:"serverNow"`
	HotTime   HotTimeInfo    `json:"hotTime"`
	Season    SeasonInfo     `json:"season"`
	Game      GameInfo       `json:"game"`
	Turn      *TurnInfo      `json:"turn"`
	Viewer    *ViewerInfo    `json:"viewer"`
	Storage   StorageInfo    `json:"storage"`
	Message   string         `json:"message,omitempty"`
}

// SnapshotConfig echoes the engine tuning so clients can render countdowns
// and caps without hardcoding them.
type SnapshotConfig struct {
	TurnMinutes        int             `json:"turnMinutes"`
	PointRefillMinutes int             `json:"pointRefillMinutes"`
	MaxStoredPoints    int             `json:"maxStoredPoints"`
	TurnSpendCap       int             `json:"turnSpendCap"`
	HotWindow          HotWindowConfig `json:"hotWindow"`
	MaxDays            int             `json:"maxDays"`
	SeasonDays         int             `json:"seasonDays"`
}

type HotWindowConfig struct {
	Timezone  string `json:"timezone"`
	StartHour int    `json:"startHour"`
	EndHour   int    `json:"endHour"`
}

type HotTimeInfo struct {
	IsActive            bool       `json:"isActive"`
	CanVote             bool       `json:"canVote"`
	CanOpenTurn         bool       `json:"canOpenTurn"`
	CurrentWindowEndsAt *time.Time `json:"currentWindowEndsAt"`
	NextWindowStartsAt  time.Time  `json:"nextWindowStartsAt"`
}

type SeasonInfo struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"startedAt"`
	EndsAt    time.Time `json:"endsAt"`
	Status    Status    `json:"status"`
}

type GameInfo struct {
	Day          int           `json:"day"`
	Resources    Resources     `json:"resources"`
	MaxDays      int           `json:"maxDays"`
	HistoryCount int           `json:"historyCount"`
	LastResult   *HistoryEntry `json:"lastResult"`
}

type TurnInfo struct {
	ID               string        `json:"id"`
	Day              int           `json:"day"`
	StartedAt        time.Time     `json:"startedAt"`
	EndsAt           time.Time     `json:"endsAt"`
	Event            EventInfo     `json:"event"`
	TotalPoints      int           `json:"totalPoints"`
	LeadingChoiceIDs []string      `json:"leadingChoiceIds"`
	Choices          []ChoiceVotes `json:"choices"`
}

type EventInfo struct {
	ID          string                `json:"id"`
	Title       catalog.LocalizedText `json:"title"`
	Description catalog.LocalizedText `json:"description"`
}

// ChoiceVotes is a choice plus its public vote tally.
type ChoiceVotes struct {
	ID          string                `json:"id"`
	Label       catalog.LocalizedText `json:"label"`
	Description catalog.LocalizedText `json:"description"`
	Delta       catalog.Delta         `json:"delta"`
	Points      int                   `json:"points"`
	Ratio       float64               `json:"ratio"`
}

// ViewerInfo is the per-caller vote state: wallet, spend, lock, and a
// pre-computed answer to "can I vote right now, and if not, why not".
type ViewerInfo struct {
	AccountID         string     `json:"accountId"`
	Points            int        `json:"points"`
	SpentThisTurn     int        `json:"spentThisTurn"`
	SelectedChoiceID  string     `json:"selectedChoiceId,omitempty"`
	NextRefillAt      *time.Time `json:"nextRefillAt"`
	TurnSpendCap      int        `json:"turnSpendCap"`
	CanVote           bool       `json:"canVote"`
	VoteBlockedReason VoteReason `json:"voteBlockedReason,omitempty"`
}

type StorageInfo struct {
	Mode         string `json:"mode"`
	IsPersistent bool   `json:"isPersistent"`
	Message      string `json:"message,omitempty"`
}

// buildSnapshot projects the current state. Caller must hold the engine lock.
func (e *Engine) buildSnapshot(now time.Time, accountID string) *PublicSnapshot {
	state := e.state

	var windowEnd *time.Time
	if end, ok := clock.CurrentHotWindowEnd(now); ok {
		windowEnd = &end
	}
	hotActive := clock.IsHotTime(now)

	return &PublicSnapshot{
		Config: SnapshotConfig{
			TurnMinutes:        int(e.cfg.TurnLength / time.Minute),
			PointRefillMinutes: int(e.cfg.RefillInterval / time.Minute),
			MaxStoredPoints:    e.cfg.MaxStoredPoints,
			TurnSpendCap:       e.cfg.TurnSpendCap,
			HotWindow: HotWindowConfig{
				Timezone:  clock.Timezone,
				StartHour: clock.HotStartHour,
				EndHour:   clock.HotEndHour,
			},
			MaxDays:    e.cfg.MaxDays,
			SeasonDays: int(e.cfg.SeasonLength / (24 * time.Hour)),
		},
		ServerNow: now,
		HotTime: HotTimeInfo{
			IsActive:            hotActive,
			CanVote:             hotActive,
			CanOpenTurn:         clock.CanOpenTurn(now, e.cfg.TurnLength),
			CurrentWindowEndsAt: windowEnd,
			NextWindowStartsAt:  clock.NextHotWindowStart(now),
		},
		Season: SeasonInfo{
			ID:        state.SeasonID,
			StartedAt: state.SeasonStartedAt,
			EndsAt:    state.SeasonEndsAt,
			Status:    state.Status,
		},
		Game: GameInfo{
			Day:          state.Day,
			Resources:    state.Resources,
			MaxDays:      e.cfg.MaxDays,
			HistoryCount: len(state.History),
			LastResult:   lastResult(state),
		},
		Turn:    e.buildTurnInfo(state.CurrentTurn),
		Viewer:  e.buildViewerInfo(now, accountID),
		Storage: StorageInfo{
			Mode:         e.storageMod,
			IsPersistent: e.storageMod != StorageModeMemory,
			Message:      e.storageMsg,
		},
		Message: stateMessage(state.Status),
	}
}

func lastResult(state *State) *HistoryEntry {
	if len(state.History) == 0 {
		return nil
	}
	entry := state.History[0]
	return &entry
}

func (e *Engine) buildTurnInfo(turn *Turn) *TurnInfo {
	if turn == nil {
		return nil
	}

	total := turn.TotalPoints()

	maxPoints := 0
	if total > 0 {
		for _, p := range turn.VoteTotals {
			if p > maxPoints {
				maxPoints = p
			}
		}
	}

	var leading []string
	choices := make([]ChoiceVotes, 0, len(turn.Event.Choices))
	for _, c := range turn.Event.Choices {
		points := turn.VoteTotals[c.ID]
		if total > 0 && points == maxPoints {
			leading = append(leading, c.ID)
		}

		ratio := 0.0
		if total > 0 {
			ratio = float64(points) / float64(total)
		}
		choices = append(choices, ChoiceVotes{
			ID:          c.ID,
			Label:       c.Label,
			Description: c.Description,
			Delta:       c.Delta,
			Points:      points,
			Ratio:       ratio,
		})
	}

	return &TurnInfo{
		ID:               turn.ID,
		Day:              turn.Day,
		StartedAt:        turn.StartedAt,
		EndsAt:           turn.EndsAt,
		Event: EventInfo{
			ID:          turn.Event.ID,
			Title:       turn.Event.Title,
			Description: turn.Event.Description,
		},
		TotalPoints:      total,
		LeadingChoiceIDs: leading,
		Choices:          choices,
	}
}

// buildViewerInfo computes the caller's wallet view on a refilled copy; the
// stored charge is not mutated by reads.
func (e *Engine) buildViewerInfo(now time.Time, accountID string) *ViewerInfo {
	if accountID == "" {
		return nil
	}

	state := e.state
	charge := e.chargeFor(accountID, now)

	var spent int
	var selected string
	if state.CurrentTurn != nil {
		if vote, ok := state.CurrentTurn.VotesByUser[accountID]; ok {
			spent = vote.Points
			selected = vote.ChoiceID
		}
	}

	var nextRefill *time.Time
	if charge.Points < e.cfg.MaxStoredPoints {
		t := charge.LastRefillAt.Add(e.cfg.RefillInterval)
		nextRefill = &t
	}

	var blocked VoteReason
	switch {
	case state.Status != StatusRunning:
		blocked = VoteSeasonNotRunning
	case state.CurrentTurn == nil:
		blocked = VoteTurnNotOpen
	case !clock.IsHotTime(now):
		blocked = VoteOutsideHotTime
	case spent >= e.cfg.TurnSpendCap:
		blocked = VoteSpendCapReached
	case charge.Points <= 0:
		blocked = VoteNotEnoughPoints
	}

	return &ViewerInfo{
		AccountID:         accountID,
		Points:            charge.Points,
		SpentThisTurn:     spent,
		SelectedChoiceID:  selected,
		NextRefillAt:      nextRefill,
		TurnSpendCap:      e.cfg.TurnSpendCap,
		CanVote:           blocked == "",
		VoteBlockedReason: blocked,
	}
}

func stateMessage(status Status) string {
	switch status {
	case StatusSuccess:
		return "max_days_reached"
	case StatusDead:
		return "colony_dead"
	case StatusSeasonTimeout:
		return "season_timeout"
	}
	return ""
}
