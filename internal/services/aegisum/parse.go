package aegisum

import (
	"encoding/json"
	"errors"
	"strings"
)

// MiningInfo is an immutable snapshot of node-reported mining state, replaced
// wholesale on each successful poll.
type MiningInfo struct {
	Blocks             int64   `json:"blocks"`
	CurrentBlockWeight int64   `json:"currentblockweight"`
	Difficulty         float64 `json:"difficulty"`
	NetworkHashPS      float64 `json:"networkhashps"`
	PooledTx           int64   `json:"pooledtx"`
	Chain              string  `json:"chain"`
	Warnings           string  `json:"warnings"`
}

// miningInfoWire distinguishes absent fields from zero values.
type miningInfoWire struct {
	Blocks             *int64   `json:"blocks"`
	CurrentBlockWeight *int64   `json:"currentblockweight"`
	Difficulty         *float64 `json:"difficulty"`
	NetworkHashPS      *float64 `json:"networkhashps"`
	PooledTx           *int64   `json:"pooledtx"`
	Chain              *string  `json:"chain"`
	Warnings           *string  `json:"warnings"`
}

// ParseMiningInfo decodes a getmininginfo response. The input is only ever
// treated as data; required fields that are absent or of the wrong type yield
// a *MalformedResponseError. Unknown fields are tolerated so newer node
// versions keep working.
func ParseMiningInfo(raw string) (MiningInfo, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return MiningInfo{}, &MalformedResponseError{Command: "getmininginfo", Reason: "empty response"}
	}

	var wire miningInfoWire
	decoder := json.NewDecoder(strings.NewReader(raw))
	if err := decoder.Decode(&wire); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return MiningInfo{}, &MalformedResponseError{
				Command: "getmininginfo",
				Reason:  "field " + typeErr.Field + " has wrong type",
				Err:     err,
			}
		}
		return MiningInfo{}, &MalformedResponseError{Command: "getmininginfo", Reason: "invalid JSON", Err: err}
	}

	missing := missingFields(wire)
	if len(missing) > 0 {
		return MiningInfo{}, &MalformedResponseError{
			Command: "getmininginfo",
			Reason:  "missing required fields: " + strings.Join(missing, ", "),
		}
	}

	return MiningInfo{
		Blocks:             *wire.Blocks,
		CurrentBlockWeight: *wire.CurrentBlockWeight,
		Difficulty:         *wire.Difficulty,
		NetworkHashPS:      *wire.NetworkHashPS,
		PooledTx:           *wire.PooledTx,
		Chain:              *wire.Chain,
		Warnings:           *wire.Warnings,
	}, nil
}

func missingFields(wire miningInfoWire) []string {
	var missing []string
	if wire.Blocks == nil {
		missing = append(missing, "blocks")
	}
	if wire.CurrentBlockWeight == nil {
		missing = append(missing, "currentblockweight")
	}
	if wire.Difficulty == nil {
		missing = append(missing, "difficulty")
	}
	if wire.NetworkHashPS == nil {
		missing = append(missing, "networkhashps")
	}
	if wire.PooledTx == nil {
		missing = append(missing, "pooledtx")
	}
	if wire.Chain == nil {
		missing = append(missing, "chain")
	}
	if wire.Warnings == nil {
		missing = append(missing, "warnings")
	}
	return missing
}
