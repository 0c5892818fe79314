package world

// VoteReason is the stable machine-readable cause of a vote rejection.
type VoteReason string

const (
	VoteSeasonNotRunning VoteReason = "season_not_running"
	VoteTurnNotOpen      VoteReason = "turn_not_open"
	VoteOutsideHotTime   VoteReason = "outside_hot_time"
	VoteMissingAccount   VoteReason = "missing_account"
	VoteInvalidChoice    VoteReason = "invalid_choice"
	VoteChoiceLocked     VoteReason = "choice_locked"
	VoteSpendCapReached  VoteReason = "turn_spend_cap_reached"
	VoteNotEnoughPoints  VoteReason = "not_enough_points"
)

// VoteError is a caller-facing rejection, not a system failure. The message
// is safe to show to users; the reason is for programmatic handling.
type VoteError struct {
	Reason  VoteReason
	Message string
}

func (e *VoteError) Error() string {
	return e.Message
}

func voteErr(reason VoteReason, msg string) *VoteError {
	return &VoteError{Reason: reason, Message: msg}
}
