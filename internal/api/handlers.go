package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pixil98/go-log"

	"colonyworld/internal/world"
)

// snapshotResponse wraps successful responses from both endpoints.
type snapshotResponse struct {
	OK       bool                  `json:"ok"`
	Snapshot *world.PublicSnapshot `json:"snapshot"`
}

// errorResponse carries a stable machine-readable reason next to the
// human-readable message.
type errorResponse struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

type voteBody struct {
	AccountID string `json:"accountId"`
	ChoiceID  string `json:"choiceId"`
	Points    int    `json:"points"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.engine.Snapshot(r.Context(), r.URL.Query().Get("accountId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSnapshot(w, snapshot)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var body voteBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "invalid request body",
			Reason: "bad_request",
		})
		return
	}

	snapshot, err := s.engine.SubmitVote(r.Context(), world.VoteRequest{
		AccountID: body.AccountID,
		ChoiceID:  body.ChoiceID,
		Points:    body.Points,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSnapshot(w, snapshot)
}

func writeSnapshot(w http.ResponseWriter, snapshot *world.PublicSnapshot) {
	writeJSON(w, http.StatusOK, snapshotResponse{OK: true, Snapshot: snapshot})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var voteErr *world.VoteError
	if errors.As(err, &voteErr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:  voteErr.Message,
			Reason: string(voteErr.Reason),
		})
		return
	}

	log.GetLogger(r.Context()).WithError(err).Error("handling request")
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error: "internal error",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
