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

func cipherState(t *testing.T) (*cipherDecodeHandler, *game.PuzzleState, *game.PuzzleConfig) {
	t.Helper()

	h := &cipherDecodeHandler{}
	cfg := &game.PuzzleConfig{
		ID:   "cipher",
		Type: TypeCipherDecode,
		Data: map[string]any{
			"cipher_key": map[string]string{"a": "k", "e": "w"},
			"sentences": []map[string]any{
				{"encrypted": "vhw cqrw", "decoded": "the core", "hint": "A noun."},
				{"encrypted": "xz zvkblw", "decoded": "is stable", "hint": "A verb."},
			},
		},
	}

	state, err := h.Init(twoPlayers(), cfg)
	require.NoError(t, err)
	return h, state, cfg
}

func TestCipherAcceptsCaseAndWhitespaceVariants(t *testing.T) {
	h, state, _ := cipherState(t)
	data := state.Data.(*cipherDecodeData)

	delta := h.HandleAction(state, "p2", "submit_decode", payload(t, submitDecodePayload{Text: "  The CORE  "}))
	assert.Zero(t, delta)
	assert.Equal(t, 1, data.Completed)
	assert.Equal(t, 1, data.CurrentIndex)
}

func TestCipherWrongGuessPenalizesAndTracksAttempts(t *testing.T) {
	h, state, _ := cipherState(t)
	data := state.Data.(*cipherDecodeData)

	delta := h.HandleAction(state, "p2", "submit_decode", payload(t, submitDecodePayload{Text: "the car"}))
	assert.Equal(t, 5.0, delta)
	assert.Equal(t, 1, data.WrongSubmissions)
	assert.Equal(t, []string{"the car"}, data.Attempts["p2"])

	// Solving the sentence clears the attempt history for the next one.
	h.HandleAction(state, "p2", "submit_decode", payload(t, submitDecodePayload{Text: "the core"}))
	assert.Empty(t, data.Attempts)
}

func TestCipherWinsAfterAllSentences(t *testing.T) {
	h, state, _ := cipherState(t)

	h.HandleAction(state, "p2", "submit_decode", payload(t, submitDecodePayload{Text: "the core"}))
	assert.False(t, h.CheckWin(state))

	h.HandleAction(state, "p1", "submit_decode", payload(t, submitDecodePayload{Text: "is stable"}))
	assert.True(t, h.CheckWin(state))

	// Submissions past the end are ignored.
	delta := h.HandleAction(state, "p1", "submit_decode", payload(t, submitDecodePayload{Text: "extra"}))
	assert.Zero(t, delta)
}

func TestCipherViewAsymmetry(t *testing.T) {
	h, state, cfg := cipherState(t)

	h.HandleAction(state, "p2", "submit_decode", payload(t, submitDecodePayload{Text: "wrong guess"}))

	keyholder := h.PlayerView(state, "p1", RoleKeyholder, cfg)
	scribe := h.PlayerView(state, "p2", "Scribe", cfg)

	kv, ok := keyholder.View.(keyholderCipherView)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"a": "k", "e": "w"}, kv.CipherKey)
	assert.Equal(t, "vhw cqrw", kv.CurrentEncrypted)

	sv, ok := scribe.View.(scribeCipherView)
	require.True(t, ok)
	assert.Equal(t, []string{"wrong guess"}, sv.MyAttempts)

	raw, err := json.Marshal(sv)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "cipherKey")
}
