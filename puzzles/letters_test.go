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

func twoPlayers() []game.Player {
	return []game.Player{
		{ID: "p1", Name: "ann", Connected: true},
		{ID: "p2", Name: "ben", Connected: true},
	}
}

func payload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func letterState(t *testing.T, words []string) (*letterCaptureHandler, *game.PuzzleState, *game.PuzzleConfig) {
	t.Helper()

	h := &letterCaptureHandler{}
	cfg := &game.PuzzleConfig{
		ID:    "letters",
		Type:  TypeLetterCapture,
		Title: "Memory Banks",
		Data: map[string]any{
			"solution_words": words,
		},
	}

	state, err := h.Init(twoPlayers(), cfg)
	require.NoError(t, err)
	return h, state, cfg
}

func TestLetterCaptureInitUppercasesWords(t *testing.T) {
	_, state, _ := letterState(t, []string{"llama"})

	data := state.Data.(*letterCaptureData)
	assert.Equal(t, []string{"LLAMA"}, data.SolutionWords)
	assert.Equal(t, []string{"_", "_", "_", "_", "_"}, data.CapturedLetters)
}

func TestLetterCaptureInitRejectsEmptyConfig(t *testing.T) {
	h := &letterCaptureHandler{}
	cfg := &game.PuzzleConfig{ID: "letters", Data: map[string]any{}}

	_, err := h.Init(twoPlayers(), cfg)
	assert.Error(t, err)
}

func TestDuplicateLettersFillFirstOpenSlot(t *testing.T) {
	h, state, _ := letterState(t, []string{"llama"})
	data := state.Data.(*letterCaptureData)

	delta := h.HandleAction(state, "p1", "capture_letter", payload(t, captureLetterPayload{Letter: "l"}))
	assert.Zero(t, delta)
	assert.Equal(t, []string{"L", "_", "_", "_", "_"}, data.CapturedLetters)

	delta = h.HandleAction(state, "p2", "capture_letter", payload(t, captureLetterPayload{Letter: "L"}))
	assert.Zero(t, delta)
	assert.Equal(t, []string{"L", "L", "_", "_", "_"}, data.CapturedLetters)

	assert.Equal(t, "p1", data.CapturedBy["0-0"])
	assert.Equal(t, "p2", data.CapturedBy["0-1"])
}

func TestWrongLetterAddsGlitch(t *testing.T) {
	h, state, _ := letterState(t, []string{"cat"})
	data := state.Data.(*letterCaptureData)

	delta := h.HandleAction(state, "p1", "capture_letter", payload(t, captureLetterPayload{Letter: "z"}))
	assert.Equal(t, 5.0, delta)
	assert.Equal(t, 1, data.WrongCaptures)
	assert.Equal(t, []string{"_", "_", "_"}, data.CapturedLetters)
}

func TestCompletingEveryWordWins(t *testing.T) {
	h, state, _ := letterState(t, []string{"cat"})

	for _, letter := range []string{"c", "a", "t"} {
		h.HandleAction(state, "p1", "capture_letter", payload(t, captureLetterPayload{Letter: letter}))
	}

	data := state.Data.(*letterCaptureData)
	assert.Equal(t, []string{"CAT"}, data.CompletedWords)
	assert.True(t, h.CheckWin(state))

	// Captures after the last word are ignored.
	delta := h.HandleAction(state, "p1", "capture_letter", payload(t, captureLetterPayload{Letter: "c"}))
	assert.Zero(t, delta)
}

func TestLetterCaptureViewAsymmetry(t *testing.T) {
	h, state, cfg := letterState(t, []string{"cat"})

	caller := h.PlayerView(state, "p1", RoleCaller, cfg)
	catcher := h.PlayerView(state, "p2", "Catcher", cfg)

	callerView, ok := caller.View.(callerLetterView)
	require.True(t, ok)
	assert.Equal(t, []string{"CAT"}, callerView.SolutionWords)

	catcherView, ok := catcher.View.(catcherLetterView)
	require.True(t, ok)
	assert.Equal(t, 3, catcherView.CurrentWordLength)

	// The catcher projection must never leak the words themselves.
	raw, err := json.Marshal(catcherView)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "CAT")
}
