package world

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"

	"colonyworld/internal/catalog"
)

// hotInstant is 16:00 KST, well inside the voting window.
var hotInstant = time.Date(2026, time.March, 10, 7, 0, 0, 0, time.UTC)

// coldInstant is 10:00 KST, outside the voting window.
var coldInstant = time.Date(2026, time.March, 10, 1, 0, 0, 0, time.UTC)

type fakeStore struct {
	state   *State
	loadErr error
	saveErr error
	saves   int
}

func (f *fakeStore) Load(_ context.Context) (*State, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.state, nil
}

func (f *fakeStore) Save(_ context.Context, s *State) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.state = s
	f.saves++
	return nil
}

func (f *fakeStore) Mode() string { return "test" }

type fakeAnnouncer struct {
	opened   int
	resolved int
	ended    int
}

func (f *fakeAnnouncer) TurnOpened(*Turn)          { f.opened++ }
func (f *fakeAnnouncer) TurnResolved(HistoryEntry) { f.resolved++ }
func (f *fakeAnnouncer) SeasonEnded(Status)        { f.ended++ }

// testEngine builds an engine on a mutable clock. Move *now to drive the
// tick state machine.
func testEngine(now *time.Time, opts ...EngineOpt) *Engine {
	opts = append([]EngineOpt{
		WithClock(func() time.Time { return *now }),
		WithRand(rand.New(rand.NewSource(1))),
	}, opts...)
	return NewEngine(DefaultConfig(), catalog.Default(), opts...)
}

func TestEngine_SnapshotOpensTurn(t *testing.T) {
	now := hotInstant
	e := testEngine(&now)

	snap, err := e.Snapshot(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Turn == nil {
		t.Fatal("expected an open turn during hot time")
	}
	testutil.AssertEqual(t, "turn day", snap.Turn.Day, 1)
	testutil.AssertEqual(t, "turn ends", snap.Turn.EndsAt, hotInstant.Add(30*time.Minute))
	testutil.AssertEqual(t, "season status", snap.Season.Status, StatusRunning)
	testutil.AssertEqual(t, "hot active", snap.HotTime.IsActive, true)
	testutil.AssertEqual(t, "storage mode", snap.Storage.Mode, "memory")
	testutil.AssertEqual(t, "persistent", snap.Storage.IsPersistent, false)
	if snap.Viewer != nil {
		t.Error("expected nil viewer without accountId")
	}
	testutil.AssertEqual(t, "choice count", len(snap.Turn.Choices), 3)
	testutil.AssertEqual(t, "total points", snap.Turn.TotalPoints, 0)
}

func TestEngine_SnapshotColdTime(t *testing.T) {
	now := coldInstant
	e := testEngine(&now)

	snap, err := e.Snapshot(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Turn != nil {
		t.Error("expected no turn outside hot time")
	}
	testutil.AssertEqual(t, "hot active", snap.HotTime.IsActive, false)
	testutil.AssertEqual(t, "can open", snap.HotTime.CanOpenTurn, false)
	testutil.AssertEqual(t, "next window", snap.HotTime.NextWindowStartsAt, time.Date(2026, time.March, 10, 6, 0, 0, 0, time.UTC))
}

func TestEngine_NoTurnNearWindowEnd(t *testing.T) {
	// 03:45 KST: hot, but a 30 minute turn no longer fits before 04:00.
	now := time.Date(2026, time.March, 10, 18, 45, 0, 0, time.UTC)
	e := testEngine(&now)

	snap, err := e.Snapshot(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "hot active", snap.HotTime.IsActive, true)
	if snap.Turn != nil {
		t.Error("expected no turn when it cannot resolve inside the window")
	}
}

func TestEngine_VoteFlow(t *testing.T) {
	now := hotInstant
	e := testEngine(&now)

	open, err := e.Snapshot(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if open.Turn == nil {
		t.Fatal("expected an open turn")
	}
	choiceID := open.Turn.Choices[0].ID
	otherID := open.Turn.Choices[1].ID

	testutil.AssertEqual(t, "initial points", open.Viewer.Points, 5)
	testutil.AssertEqual(t, "initial can vote", open.Viewer.CanVote, true)

	snap, err := e.SubmitVote(context.Background(), VoteRequest{AccountID: "alice", ChoiceID: choiceID, Points: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "points after vote", snap.Viewer.Points, 3)
	testutil.AssertEqual(t, "spent", snap.Viewer.SpentThisTurn, 2)
	testutil.AssertEqual(t, "selected", snap.Viewer.SelectedChoiceID, choiceID)
	testutil.AssertEqual(t, "total points", snap.Turn.TotalPoints, 2)
	testutil.AssertEqual(t, "leading", fmt.Sprint(snap.Turn.LeadingChoiceIDs), fmt.Sprint([]string{choiceID}))

	// The first vote locks the choice for the rest of the turn.
	_, err = e.SubmitVote(context.Background(), VoteRequest{AccountID: "alice", ChoiceID: otherID, Points: 1})
	assertVoteError(t, err, VoteChoiceLocked)

	// Asking for more than remains under the cap spends only the remainder.
	snap, err = e.SubmitVote(context.Background(), VoteRequest{AccountID: "alice", ChoiceID: choiceID, Points: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "spent at cap", snap.Viewer.SpentThisTurn, 3)
	testutil.AssertEqual(t, "points at cap", snap.Viewer.Points, 2)

	_, err = e.SubmitVote(context.Background(), VoteRequest{AccountID: "alice", ChoiceID: choiceID, Points: 1})
	assertVoteError(t, err, VoteSpendCapReached)
}

func TestEngine_VoteRejections(t *testing.T) {
	t.Run("missing account", func(t *testing.T) {
		now := hotInstant
		e := testEngine(&now)
		_, err := e.SubmitVote(context.Background(), VoteRequest{AccountID: "  ", ChoiceID: "maintain", Points: 1})
		assertVoteError(t, err, VoteMissingAccount)
	})

	t.Run("invalid choice", func(t *testing.T) {
		now := hotInstant
		e := testEngine(&now)
		_, err := e.SubmitVote(context.Background(), VoteRequest{AccountID: "alice", ChoiceID: "no_such_choice", Points: 1})
		assertVoteError(t, err, VoteInvalidChoice)
	})

	t.Run("no open turn", func(t *testing.T) {
		now := coldInstant
		e := testEngine(&now)
		_, err := e.SubmitVote(context.Background(), VoteRequest{AccountID: "alice", ChoiceID: "maintain", Points: 1})
		assertVoteError(t, err, VoteTurnNotOpen)
	})

	t.Run("season not running", func(t *testing.T) {
		now := hotInstant
		state := NewState(hotInstant.Add(-time.Hour), DefaultConfig())
		state.Status = StatusDead
		e := testEngine(&now, WithStore(&fakeStore{state: state}))
		_, err := e.SubmitVote(context.Background(), VoteRequest{AccountID: "alice", ChoiceID: "maintain", Points: 1})
		assertVoteError(t, err, VoteSeasonNotRunning)
	})

	t.Run("outside hot time", func(t *testing.T) {
		// A persisted state can carry an open turn into cold time, for
		// example after an operator changes the turn length.
		now := coldInstant
		state := stateWithOpenTurn(t, coldInstant.Add(-time.Minute), time.Hour)
		e := testEngine(&now, WithStore(&fakeStore{state: state}))
		_, err := e.SubmitVote(context.Background(), VoteRequest{AccountID: "alice", ChoiceID: "maintain", Points: 1})
		assertVoteError(t, err, VoteOutsideHotTime)
	})

	t.Run("not enough points", func(t *testing.T) {
		now := hotInstant
		cfg := DefaultConfig()
		cfg.MaxStoredPoints = 2
		cfg.TurnSpendCap = 10
		e := NewEngine(cfg, catalog.Default(),
			WithClock(func() time.Time { return now }),
			WithRand(rand.New(rand.NewSource(1))))

		open, err := e.Snapshot(context.Background(), "alice")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		choiceID := open.Turn.Choices[0].ID

		_, err = e.SubmitVote(context.Background(), VoteRequest{AccountID: "alice", ChoiceID: choiceID, Points: 2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_, err = e.SubmitVote(context.Background(), VoteRequest{AccountID: "alice", ChoiceID: choiceID, Points: 1})
		assertVoteError(t, err, VoteNotEnoughPoints)
	})
}

func TestEngine_WalletRefill(t *testing.T) {
	now := hotInstant
	e := testEngine(&now)

	open, err := e.Snapshot(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	choiceID := open.Turn.Choices[0].ID

	_, err = e.SubmitVote(context.Background(), VoteRequest{AccountID: "alice", ChoiceID: choiceID, Points: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Two refill intervals pass while the turn is still open.
	now = hotInstant.Add(20 * time.Minute)
	snap, err := e.Snapshot(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "points", snap.Viewer.Points, 4)
	testutil.AssertEqual(t, "spent", snap.Viewer.SpentThisTurn, 3)
	if snap.Viewer.NextRefillAt == nil {
		t.Fatal("expected a next refill time below the cap")
	}
	testutil.AssertEqual(t, "next refill", *snap.Viewer.NextRefillAt, hotInstant.Add(30*time.Minute))
}

func TestEngine_SnapshotDoesNotSpendRefill(t *testing.T) {
	now := hotInstant
	e := testEngine(&now)

	if _, err := e.Snapshot(context.Background(), "alice"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Repeated reads at the same instant must agree: viewing the wallet
	// never consumes the partial interval.
	now = hotInstant.Add(15 * time.Minute)
	for i := 0; i < 3; i++ {
		snap, err := e.Snapshot(context.Background(), "alice")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testutil.AssertEqual(t, "points", snap.Viewer.Points, 5)
	}
}

func TestEngine_TurnResolution(t *testing.T) {
	now := hotInstant
	announcer := &fakeAnnouncer{}
	e := testEngine(&now, WithAnnouncer(announcer))

	open, err := e.Snapshot(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	choiceID := open.Turn.Choices[0].ID

	_, err = e.SubmitVote(context.Background(), VoteRequest{AccountID: "alice", ChoiceID: choiceID, Points: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = hotInstant.Add(30 * time.Minute)
	snap, err := e.Snapshot(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "day", snap.Game.Day, 1)
	testutil.AssertEqual(t, "history count", snap.Game.HistoryCount, 1)
	if snap.Game.LastResult == nil {
		t.Fatal("expected a last result")
	}
	testutil.AssertEqual(t, "winner", snap.Game.LastResult.SelectedChoiceID, choiceID)
	testutil.AssertEqual(t, "reason", snap.Game.LastResult.Reason, ReasonMostVoted)

	// A fresh turn opens immediately in the same tick.
	if snap.Turn == nil {
		t.Fatal("expected the next turn to open")
	}
	testutil.AssertEqual(t, "next day", snap.Turn.Day, 2)
	testutil.AssertEqual(t, "spent reset", snap.Viewer.SpentThisTurn, 0)

	testutil.AssertEqual(t, "opened announcements", announcer.opened, 2)
	testutil.AssertEqual(t, "resolved announcements", announcer.resolved, 1)
	testutil.AssertEqual(t, "ended announcements", announcer.ended, 0)
}

func TestEngine_NoVoteResolution(t *testing.T) {
	now := hotInstant
	e := testEngine(&now)

	if _, err := e.Snapshot(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = hotInstant.Add(30 * time.Minute)
	snap, err := e.Snapshot(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Game.LastResult == nil {
		t.Fatal("expected a last result")
	}
	testutil.AssertEqual(t, "reason", snap.Game.LastResult.Reason, ReasonNoVoteSafety)
}

func TestEngine_SeasonTimeout(t *testing.T) {
	now := hotInstant
	announcer := &fakeAnnouncer{}
	cfg := DefaultConfig()
	cfg.SeasonLength = time.Hour
	e := NewEngine(cfg, catalog.Default(),
		WithClock(func() time.Time { return now }),
		WithRand(rand.New(rand.NewSource(1))),
		WithAnnouncer(announcer))

	if _, err := e.Snapshot(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = hotInstant.Add(2 * time.Hour)
	snap, err := e.Snapshot(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "status", snap.Season.Status, StatusSeasonTimeout)
	testutil.AssertEqual(t, "message", snap.Message, "season_timeout")
	if snap.Turn != nil {
		t.Error("expected no turn after timeout")
	}
	testutil.AssertEqual(t, "ended announcements", announcer.ended, 1)

	// Terminal state is stable across further ticks.
	now = now.Add(time.Hour)
	snap, err = e.Snapshot(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "status stays", snap.Season.Status, StatusSeasonTimeout)
}

func TestEngine_PersistsThroughStore(t *testing.T) {
	now := hotInstant
	store := &fakeStore{}
	e := testEngine(&now, WithStore(store))

	snap, err := e.Snapshot(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "storage mode", snap.Storage.Mode, "test")
	testutil.AssertEqual(t, "persistent", snap.Storage.IsPersistent, true)
	if store.saves == 0 {
		t.Error("expected the opened turn to be persisted")
	}
	if store.state == nil || store.state.CurrentTurn == nil {
		t.Error("expected the persisted state to carry the open turn")
	}
}

func TestEngine_ResumesFromStore(t *testing.T) {
	saved := NewState(hotInstant.Add(-24*time.Hour), DefaultConfig())
	saved.Day = 5
	saved.Resources = Resources{HP: 7, Food: 3, Meds: 1, Money: 9}

	now := coldInstant
	e := testEngine(&now, WithStore(&fakeStore{state: saved}))

	snap, err := e.Snapshot(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "season id", snap.Season.ID, saved.SeasonID)
	testutil.AssertEqual(t, "day", snap.Game.Day, 5)
	testutil.AssertEqual(t, "resources", snap.Game.Resources, saved.Resources)
}

func TestEngine_LoadFailureFallsBackToMemory(t *testing.T) {
	now := coldInstant
	store := &fakeStore{loadErr: errors.New("connection refused")}
	e := testEngine(&now, WithStore(store))

	snap, err := e.Snapshot(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "storage mode", snap.Storage.Mode, StorageModeMemory)
	testutil.AssertEqual(t, "persistent", snap.Storage.IsPersistent, false)
	if !strings.Contains(snap.Storage.Message, "memory") {
		t.Errorf("expected fallback message, got %q", snap.Storage.Message)
	}
	testutil.AssertEqual(t, "season status", snap.Season.Status, StatusRunning)
}

func TestEngine_SaveFailureDegradesMode(t *testing.T) {
	now := hotInstant
	store := &fakeStore{saveErr: errors.New("disk full")}
	e := testEngine(&now, WithStore(store))

	snap, err := e.Snapshot(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The turn still opened in memory; only the durability claim degrades.
	if snap.Turn == nil {
		t.Fatal("expected an open turn")
	}
	testutil.AssertEqual(t, "storage mode", snap.Storage.Mode, StorageModeMemory)
	if !strings.Contains(snap.Storage.Message, "memory") {
		t.Errorf("expected degradation message, got %q", snap.Storage.Message)
	}
}

func TestEngine_TerminalStateOpensNoTurn(t *testing.T) {
	state := NewState(hotInstant.Add(-time.Hour), DefaultConfig())
	state.Status = StatusDead

	now := hotInstant
	e := testEngine(&now, WithStore(&fakeStore{state: state}))

	snap, err := e.Snapshot(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "status", snap.Season.Status, StatusDead)
	testutil.AssertEqual(t, "message", snap.Message, "colony_dead")
	if snap.Turn != nil {
		t.Error("expected no turn in a terminal season")
	}
}

func assertVoteError(t *testing.T, err error, reason VoteReason) {
	t.Helper()
	var voteErr *VoteError
	if !errors.As(err, &voteErr) {
		t.Fatalf("expected a vote error, got %v", err)
	}
	testutil.AssertEqual(t, "reason", voteErr.Reason, reason)
}

func stateWithOpenTurn(t *testing.T, startedAt time.Time, length time.Duration) *State {
	t.Helper()

	ev, ok := catalog.Default().Get("quiet_maintenance")
	if !ok {
		t.Fatal("expected quiet_maintenance event")
	}

	state := NewState(startedAt, DefaultConfig())
	state.CurrentTurn = newTurn(state, ev, startedAt, length)
	return state
}
