/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package puzzles

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/puzzlebox/game"
)

func rhythmState(t *testing.T, roundsToWin int) (*rhythmMatchHandler, *game.PuzzleState) {
	t.Helper()

	h := &rhythmMatchHandler{}
	cfg := &game.PuzzleConfig{
		ID:   "rhythm",
		Type: TypeRhythmMatch,
		Data: map[string]any{
			"sequences": [][]string{
				{"red", "blue"},
				{"green", "red", "blue"},
			},
			"rounds_to_win": roundsToWin,
		},
	}

	state, err := h.Init(twoPlayers(), cfg)
	require.NoError(t, err)
	return h, state
}

func TestRhythmRoundResolvesOnlyWhenAllSubmit(t *testing.T) {
	h, state := rhythmState(t, 1)
	data := state.Data.(*rhythmMatchData)

	h.HandleAction(state, "p1", "submit_taps", payload(t, submitTapsPayload{Taps: []string{"red", "blue"}}))
	assert.Empty(t, data.RoundResults)
	assert.True(t, data.PlayerReady["p1"])

	h.HandleAction(state, "p2", "submit_taps", payload(t, submitTapsPayload{Taps: []string{"red", "blue"}}))
	require.Len(t, data.RoundResults, 1)
	assert.True(t, data.RoundResults[0])
	assert.True(t, h.CheckWin(state))
}

func TestRhythmWrongTapsPenalizeAndAdvance(t *testing.T) {
	h, state := rhythmState(t, 2)
	data := state.Data.(*rhythmMatchData)

	h.HandleAction(state, "p1", "submit_taps", payload(t, submitTapsPayload{Taps: []string{"red", "blue"}}))
	delta := h.HandleAction(state, "p2", "submit_taps", payload(t, submitTapsPayload{Taps: []string{"blue", "red"}}))

	// Default penalty scales with the roster size.
	assert.Equal(t, 6.0, delta)
	require.Len(t, data.RoundResults, 1)
	assert.False(t, data.RoundResults[0])
	assert.False(t, h.CheckWin(state))

	// The round advances either way, and the buffers reset.
	assert.Equal(t, 1, data.CurrentRound)
	assert.Equal(t, []string{"green", "red", "blue"}, data.CurrentSequence)
	assert.False(t, data.PlayerReady["p1"])
	assert.Empty(t, data.PlayerTaps["p1"])
}

func TestRhythmSequencesWrapAround(t *testing.T) {
	h, state := rhythmState(t, 3)
	data := state.Data.(*rhythmMatchData)

	submitAll := func(taps []string) {
		h.HandleAction(state, "p1", "submit_taps", payload(t, submitTapsPayload{Taps: taps}))
		h.HandleAction(state, "p2", "submit_taps", payload(t, submitTapsPayload{Taps: taps}))
	}

	submitAll([]string{"red", "blue"})
	submitAll([]string{"green", "red", "blue"})

	// Round three reuses the first sequence again.
	assert.Equal(t, []string{"red", "blue"}, data.CurrentSequence)

	submitAll([]string{"red", "blue"})
	assert.True(t, h.CheckWin(state))
}

func TestRhythmIgnoresUnknownPlayers(t *testing.T) {
	h, state := rhythmState(t, 1)
	data := state.Data.(*rhythmMatchData)

	delta := h.HandleAction(state, "ghost", "submit_taps", payload(t, submitTapsPayload{Taps: []string{"red", "blue"}}))
	assert.Zero(t, delta)
	assert.Empty(t, data.RoundResults)
	_, known := data.PlayerReady["ghost"]
	assert.False(t, known)
}

func TestRhythmViewAsymmetry(t *testing.T) {
	h, state := rhythmState(t, 1)
	cfg := &game.PuzzleConfig{ID: "rhythm", Type: TypeRhythmMatch}

	conductor := h.PlayerView(state, "p1", RoleConductor, cfg)
	performer := h.PlayerView(state, "p2", "Performer", cfg)

	cv, ok := conductor.View.(conductorRhythmView)
	require.True(t, ok)
	assert.Equal(t, []string{"red", "blue"}, cv.CurrentSequence)

	pv, ok := performer.View.(performerRhythmView)
	require.True(t, ok)
	assert.Equal(t, 2, pv.SequenceLength)

	raw, err := json.Marshal(pv)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "currentSequence")
}
