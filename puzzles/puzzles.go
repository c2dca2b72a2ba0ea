/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package puzzles holds the handler implementations for every puzzle type
// the engine can run. Each handler owns its state and payload shapes; the
// engine only round-trips the opaque state token between calls.
package puzzles

import (
	"encoding/json"

	"github.com/go-viper/mapstructure/v2"

	"github.com/Seednode/puzzlebox/game"
)

// Type tags, matched against the "type" field of puzzle configs.
const (
	TypeLetterCapture   = "letter_capture"
	TypeRhythmMatch     = "rhythm_match"
	TypeCircuitSwitches = "circuit_switches"
	TypeCipherDecode    = "cipher_decode"
	TypeGridAssembly    = "grid_assembly"
)

// RegisterAll populates the registry with every built-in handler. Called
// once at startup, before any room can start a game.
func RegisterAll(reg *game.Registry) {
	reg.Register(TypeLetterCapture, &letterCaptureHandler{})
	reg.Register(TypeRhythmMatch, &rhythmMatchHandler{})
	reg.Register(TypeCircuitSwitches, &circuitSwitchesHandler{})
	reg.Register(TypeCipherDecode, &cipherDecodeHandler{})
	reg.Register(TypeGridAssembly, &gridAssemblyHandler{})
}

// decodeConfig unpacks a puzzle's type-specific data bag into the handler's
// config struct. Weak typing tolerates YAML's int/string looseness.
func decodeConfig(cfg *game.PuzzleConfig, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(cfg.Data)
}

// decodePayload unpacks an action payload. A malformed payload is treated
// the same as an unknown action: the caller must no-op.
func decodePayload(raw json.RawMessage, out any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// penalty picks the configured corruption magnitude, falling back to the
// handler's default when the level omits it.
func penalty(cfg *game.PuzzleConfig, fallback float64) float64 {
	if cfg.GlitchPenalty > 0 {
		return cfg.GlitchPenalty
	}
	return fallback
}

func baseView(state *game.PuzzleState, playerID, role string, cfg *game.PuzzleConfig) game.PlayerView {
	return game.PlayerView{
		PlayerID:    playerID,
		Role:        role,
		PuzzleID:    state.PuzzleID,
		PuzzleType:  state.Type,
		PuzzleTitle: cfg.Title,
	}
}
