package world

import (
	"time"

	"colonyworld/internal/catalog"
)

// Reason records how a turn's winning choice was selected.
type Reason string

const (
	ReasonMostVoted    Reason = "most_voted"
	ReasonTieSafety    Reason = "tie_safety"
	ReasonNoVoteSafety Reason = "no_vote_safety"
)

// Safety-score weights. HP dominates by construction so that an unattended
// colony leans toward survival; the exact constants are tuning, not contract.
const (
	safetyHPWeight       = 1000
	safetyResourceWeight = 8
)

// ApplyDelta applies a choice delta plus the mandatory daily upkeep to a
// resource snapshot. A food deficit after upkeep converts into HP loss before
// clamping. The returned applied delta is after−before component-wise, which
// can differ from the nominal delta because of upkeep and clamping.
func ApplyDelta(before Resources, d catalog.Delta) (after Resources, applied catalog.Delta) {
	hp := before.HP + d.HP
	food := before.Food + d.Food
	meds := before.Meds + d.Meds
	money := before.Money + d.Money

	food -= upkeepMeals
	if food < 0 {
		// Starvation: the deficit comes out of HP.
		hp += food
		food = 0
	}

	after = Resources{
		HP:    clampInt(hp, 0, MaxHP),
		Food:  clampInt(food, 0, MaxFood),
		Meds:  clampInt(meds, 0, MaxMeds),
		Money: clampInt(money, 0, MaxMoney),
	}
	applied = catalog.Delta{
		HP:    after.HP - before.HP,
		Food:  after.Food - before.Food,
		Meds:  after.Meds - before.Meds,
		Money: after.Money - before.Money,
	}
	return after, applied
}

// safetyScore ranks a choice by the resources it would leave behind.
func safetyScore(before Resources, c *catalog.Choice) int {
	after, _ := ApplyDelta(before, c.Delta)
	return after.HP*safetyHPWeight + (after.Food+after.Meds+after.Money)*safetyResourceWeight
}

// safestChoice picks the choice with the highest safety score. Ties keep the
// earliest choice in event order, so the result is fully deterministic.
func safestChoice(choices []*catalog.Choice, before Resources) *catalog.Choice {
	best := choices[0]
	bestScore := safetyScore(before, best)
	for _, c := range choices[1:] {
		if score := safetyScore(before, c); score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best
}

// selectWinner decides a turn's outcome from its vote totals. It never
// consults a random source: the no-vote and tie cases fall back to the
// deterministic safety score.
func selectWinner(turn *Turn, resources Resources) (*catalog.Choice, Reason) {
	all := make([]*catalog.Choice, len(turn.Event.Choices))
	for i := range turn.Event.Choices {
		all[i] = &turn.Event.Choices[i]
	}

	if turn.TotalPoints() <= 0 {
		return safestChoice(all, resources), ReasonNoVoteSafety
	}

	maxPoints := 0
	for _, c := range all {
		if p := turn.VoteTotals[c.ID]; p > maxPoints {
			maxPoints = p
		}
	}

	var leaders []*catalog.Choice
	for _, c := range all {
		if turn.VoteTotals[c.ID] == maxPoints {
			leaders = append(leaders, c)
		}
	}

	if len(leaders) == 1 {
		return leaders[0], ReasonMostVoted
	}
	return safestChoice(leaders, resources), ReasonTieSafety
}

// resolveTurn applies the winning choice to the state: resources are updated
// through ApplyDelta, the day advances to the turn's day, a history entry is
// prepended, and a terminal status is entered if the colony died or reached
// the final day. The caller clears CurrentTurn.
func (s *State) resolveTurn(turn *Turn, winner *catalog.Choice, reason Reason, now time.Time, cfg Config) HistoryEntry {
	before := s.Resources
	after, applied := ApplyDelta(before, winner.Delta)

	entry := HistoryEntry{
		Day:                 turn.Day,
		TurnID:              turn.ID,
		EventID:             turn.Event.ID,
		SelectedChoiceID:    winner.ID,
		SelectedChoiceLabel: winner.Label,
		Reason:              reason,
		Before:              before,
		After:               after,
		Delta:               applied,
		ResolvedAt:          now,
	}

	s.Resources = after
	s.Day = turn.Day
	s.History = append([]HistoryEntry{entry}, s.History...)
	if len(s.History) > cfg.HistoryLimit {
		s.History = s.History[:cfg.HistoryLimit]
	}
	turn.ResolvedChoiceID = winner.ID
	turn.ResolvedReason = reason

	if after.HP <= 0 {
		s.Status = StatusDead
	} else if s.Day >= cfg.MaxDays {
		s.Status = StatusSuccess
	}

	return entry
}
