// Package worldstore provides durable single-record backends for the world
// state. The contract is deliberately small: load-or-empty, save, and a mode
// name for diagnostics. Both backends share one codec that validates the
// stored payload structurally before trusting it; anything malformed loads as
// "empty" so a corrupt record can never wedge the game.
package worldstore

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"colonyworld/internal/world"
)

// recordID keys the singleton world record in every backend.
const recordID = "global"

const stateSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": [
    "seasonId", "seasonStartedAt", "seasonEndsAt", "status",
    "day", "resources", "history", "players", "updatedAt"
  ],
  "properties": {
    "seasonId": {"type": "string", "minLength": 1},
    "seasonStartedAt": {"type": "string"},
    "seasonEndsAt": {"type": "string"},
    "status": {"enum": ["running", "success", "dead", "season_timeout"]},
    "day": {"type": "integer", "minimum": 0},
    "resources": {
      "type": "object",
      "required": ["hp", "food", "meds", "money"],
      "properties": {
        "hp": {"type": "integer"},
        "food": {"type": "integer"},
        "meds": {"type": "integer"},
        "money": {"type": "integer"}
      }
    },
    "currentTurn": {"type": ["object", "null"]},
    "history": {"type": "array"},
    "players": {"type": "object"},
    "updatedAt": {"type": "string"}
  }
}`

var stateSchema = jsonschema.MustCompileString("world-state.schema.json", stateSchemaJSON)

// encodeState serializes a state for storage.
func encodeState(s *world.State) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshalling world state: %w", err)
	}
	return data, nil
}

// decodeState parses and validates a stored payload. An error here means the
// payload is malformed; callers treat that as an empty store, not a failure.
func decodeState(data []byte) (*world.State, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing payload: %w", err)
	}
	if err := stateSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validating payload: %w", err)
	}

	var state world.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("unmarshalling payload: %w", err)
	}
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("validating state: %w", err)
	}

	return &state, nil
}
