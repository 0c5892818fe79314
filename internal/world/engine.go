package world

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/pixil98/go-log"

	"colonyworld/internal/catalog"
	"colonyworld/internal/clock"
)

// Store is the durable backing for the world state: a single named record.
// Load returns (nil, nil) when no record exists or the stored payload is
// malformed; only I/O failures surface as errors.
type Store interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, s *State) error
	Mode() string
}

// Announcer receives notifications after state transitions commit. All
// methods are best-effort; the engine ignores their failures.
type Announcer interface {
	TurnOpened(t *Turn)
	TurnResolved(e HistoryEntry)
	SeasonEnded(s Status)
}

// StorageModeMemory is reported while no durable store is attached or the
// attached store is failing.
const StorageModeMemory = "memory"

// VoteRequest is the input to SubmitVote.
type VoteRequest struct {
	AccountID string
	ChoiceID  string
	Points    int
}

// Engine owns the world state and exposes the two public operations. A single
// mutex serializes both of them end to end, durable-storage I/O included:
// correctness comes from strict one-at-a-time execution, not fine-grained
// locking. Call volume is human voting cadence, so storage latency on the
// critical path is acceptable.
type Engine struct {
	mu sync.Mutex

	cfg     Config
	catalog *catalog.Catalog
	store   Store
	rand    *rand.Rand
	now     func() time.Time

	announcer Announcer

	state      *State
	loaded     bool
	storageMod string
	storageMsg string
}

// EngineOpt configures an Engine.
type EngineOpt func(*Engine)

// WithStore attaches a durable store. Without one the engine runs memory-only.
func WithStore(s Store) EngineOpt {
	return func(e *Engine) { e.store = s }
}

// WithRand injects the random source used for event selection.
func WithRand(r *rand.Rand) EngineOpt {
	return func(e *Engine) { e.rand = r }
}

// WithClock injects the time source. Tests use this to drive the tick state
// machine across turn and season boundaries.
func WithClock(now func() time.Time) EngineOpt {
	return func(e *Engine) { e.now = now }
}

// WithAnnouncer attaches a transition announcer.
func WithAnnouncer(a Announcer) EngineOpt {
	return func(e *Engine) { e.announcer = a }
}

// NewEngine creates an engine with the given tuning and event catalog.
func NewEngine(cfg Config, cat *catalog.Catalog, opts ...EngineOpt) *Engine {
	e := &Engine{
		cfg:        cfg,
		catalog:    cat,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:        time.Now,
		storageMod: StorageModeMemory,
		storageMsg: "durable store not configured; state is memory only",
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Snapshot runs the tick state machine and returns the public projection of
// the world, including viewer-specific vote state when accountID is set.
// It never fails on storage trouble; persistence problems degrade the
// snapshot's storage block instead.
func (e *Engine) Snapshot(ctx context.Context, accountID string) (*PublicSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.ensureLoaded(ctx, now)

	if changed := e.tick(ctx, now); changed {
		e.persist(ctx)
	}

	return e.buildSnapshot(now, accountID), nil
}

// SubmitVote validates and applies one vote, then returns the same snapshot
// shape as Snapshot. Rejections are returned as *VoteError with a stable
// reason; the world state is left untouched by a rejected vote except for
// tick-driven transitions, which always run.
func (e *Engine) SubmitVote(ctx context.Context, req VoteRequest) (*PublicSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	e.ensureLoaded(ctx, now)
	changed := e.tick(ctx, now)

	// Tick-driven transitions commit even when the vote itself is rejected.
	reject := func(err *VoteError) (*PublicSnapshot, error) {
		if changed {
			e.persist(ctx)
		}
		return nil, err
	}

	state := e.state
	if state.Status != StatusRunning {
		return reject(voteErr(VoteSeasonNotRunning, "season is not running"))
	}
	if state.CurrentTurn == nil {
		return reject(voteErr(VoteTurnNotOpen, "no active turn to vote on"))
	}
	if !clock.IsHotTime(now) {
		return reject(voteErr(VoteOutsideHotTime,
			fmt.Sprintf("voting is available only during hot time (KST %02d:00~%02d:00)", clock.HotStartHour, clock.HotEndHour)))
	}
	accountID := strings.TrimSpace(req.AccountID)
	if accountID == "" {
		return reject(voteErr(VoteMissingAccount, "accountId is required"))
	}

	turn := state.CurrentTurn
	choice, ok := turn.Event.Choice(req.ChoiceID)
	if !ok {
		return reject(voteErr(VoteInvalidChoice, fmt.Sprintf("choice %q is not part of the current turn", req.ChoiceID)))
	}

	charge := e.chargeFor(accountID, now)
	if charge != state.Players[accountID] {
		changed = true
	}
	state.Players[accountID] = charge

	vote, voted := turn.VotesByUser[accountID]
	if voted && vote.ChoiceID != choice.ID {
		return reject(voteErr(VoteChoiceLocked, "choice is locked for this turn; points can only be added to the first selection"))
	}

	spent := vote.Points
	if spent >= e.cfg.TurnSpendCap {
		return reject(voteErr(VoteSpendCapReached, fmt.Sprintf("turn spend cap reached (%d)", e.cfg.TurnSpendCap)))
	}
	if charge.Points <= 0 {
		return reject(voteErr(VoteNotEnoughPoints, "not enough voting points"))
	}

	requested := clampInt(req.Points, 1, e.cfg.TurnSpendCap)
	spendable := min(requested, charge.Points, e.cfg.TurnSpendCap-spent)
	if spendable <= 0 {
		return reject(voteErr(VoteNotEnoughPoints, "no spendable points left for this turn"))
	}

	turn.VotesByUser[accountID] = Vote{ChoiceID: choice.ID, Points: spent + spendable}
	turn.VoteTotals[choice.ID] += spendable
	charge.Points -= spendable
	state.Players[accountID] = charge

	// Re-tick so a vote arriving exactly on a boundary behaves the same as a
	// snapshot request would.
	e.tick(ctx, now)
	e.persist(ctx)

	return e.buildSnapshot(now, accountID), nil
}

// tick runs the state machine in its fixed order: season timeout, then turn
// resolution, then turn opening. Every step is idempotent and a no-op once
// the season is terminal. Returns whether state changed.
func (e *Engine) tick(ctx context.Context, now time.Time) bool {
	state := e.state
	changed := false

	// Season timeout.
	if state.Status == StatusRunning && !now.Before(state.SeasonEndsAt) {
		state.Status = StatusSeasonTimeout
		state.CurrentTurn = nil
		changed = true
		log.GetLogger(ctx).Infof("season %s timed out on day %d", state.SeasonID, state.Day)
		if e.announcer != nil {
			e.announcer.SeasonEnded(state.Status)
		}
	}

	// Turn resolution.
	if turn := state.CurrentTurn; turn != nil && !now.Before(turn.EndsAt) {
		winner, reason := selectWinner(turn, state.Resources)
		entry := state.resolveTurn(turn, winner, reason, now, e.cfg)
		state.CurrentTurn = nil
		changed = true
		log.GetLogger(ctx).Infof("day %d resolved: %s (%s)", entry.Day, entry.SelectedChoiceID, entry.Reason)
		if e.announcer != nil {
			e.announcer.TurnResolved(entry)
			if state.Status.Terminal() {
				e.announcer.SeasonEnded(state.Status)
			}
		}
	}

	// Turn opening.
	if state.Status == StatusRunning && state.CurrentTurn == nil && clock.CanOpenTurn(now, e.cfg.TurnLength) {
		turn := newTurn(state, e.catalog.Pick(e.rand), now, e.cfg.TurnLength)
		state.CurrentTurn = turn
		changed = true
		log.GetLogger(ctx).Infof("day %d turn opened: event %s", turn.Day, turn.Event.ID)
		if e.announcer != nil {
			e.announcer.TurnOpened(turn)
		}
	}

	state.UpdatedAt = now
	return changed
}

// ensureLoaded lazily loads the state on first access. A load failure never
// blocks the request: the engine falls back to a fresh in-memory season and
// records the degradation in the storage diagnostics.
func (e *Engine) ensureLoaded(ctx context.Context, now time.Time) {
	if e.loaded {
		return
	}

	if e.store != nil {
		loaded, err := e.store.Load(ctx)
		switch {
		case err != nil:
			e.storageMod = StorageModeMemory
			e.storageMsg = fmt.Sprintf("durable store unavailable, falling back to memory state: %v", err)
			log.GetLogger(ctx).WithError(err).Error("loading world state")
		case loaded != nil:
			e.state = loaded
			e.storageMod = e.store.Mode()
			e.storageMsg = ""
		default:
			// Store is reachable but empty; a fresh season will be
			// persisted on the first mutating tick.
			e.storageMod = e.store.Mode()
			e.storageMsg = ""
		}
	}

	if e.state == nil {
		e.state = NewState(now, e.cfg)
		log.GetLogger(ctx).Infof("started season %s", e.state.SeasonID)
	}
	e.loaded = true
}

// persist writes the current state through the store. Failures degrade the
// storage mode but never roll back the in-memory mutation: the running
// process is the source of truth and durable storage only exists to survive
// restarts.
func (e *Engine) persist(ctx context.Context) {
	if e.store == nil {
		e.storageMod = StorageModeMemory
		if e.storageMsg == "" {
			e.storageMsg = "durable store not configured; state is memory only"
		}
		return
	}

	if err := e.store.Save(ctx, e.state); err != nil {
		e.storageMod = StorageModeMemory
		e.storageMsg = fmt.Sprintf("durable store unavailable, continuing with memory state: %v", err)
		log.GetLogger(ctx).WithError(err).Error("saving world state")
		return
	}

	e.storageMod = e.store.Mode()
	e.storageMsg = ""
}

// chargeFor returns the user's wallet with the lazy refill applied. Unknown
// users start with a full wallet.
func (e *Engine) chargeFor(accountID string, now time.Time) PlayerCharge {
	charge, ok := e.state.Players[accountID]
	if !ok {
		charge = PlayerCharge{Points: e.cfg.MaxStoredPoints, LastRefillAt: now}
	}
	return charge.Refill(now, e.cfg.RefillInterval, e.cfg.MaxStoredPoints)
}
