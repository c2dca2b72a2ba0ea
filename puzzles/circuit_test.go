/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package puzzles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/puzzlebox/game"
)

// A 2x2 grid with two switches: switch 0 feeds both columns, switch 1 feeds
// only column 1. The unique solution is switch 0 on, switch 1 off.
func circuitState(t *testing.T) (*circuitSwitchesHandler, *game.PuzzleState) {
	t.Helper()

	h := &circuitSwitchesHandler{}
	cfg := &game.PuzzleConfig{
		ID:   "circuit",
		Type: TypeCircuitSwitches,
		Data: map[string]any{
			"grid_size":           2,
			"switches_per_player": 1,
			"solution_matrix": [][]bool{
				{true, true},
				{false, true},
			},
		},
	}

	state, err := h.Init(twoPlayers(), cfg)
	require.NoError(t, err)
	return h, state
}

func TestCircuitSwitchAssignmentsCoverAllSwitches(t *testing.T) {
	_, state := circuitState(t)
	data := state.Data.(*circuitSwitchesData)

	assert.Equal(t, []int{0}, data.SwitchAssignments["p1"])
	assert.Equal(t, []int{1}, data.SwitchAssignments["p2"])
}

func TestCircuitXORLighting(t *testing.T) {
	h, state := circuitState(t)
	data := state.Data.(*circuitSwitchesData)

	h.HandleAction(state, "p1", "toggle_switch", payload(t, toggleSwitchPayload{SwitchIndex: 0}))
	assert.Equal(t, []bool{true, true}, data.ColumnsLit)

	// A second active switch wired to column 1 cancels it back out.
	h.HandleAction(state, "p2", "toggle_switch", payload(t, toggleSwitchPayload{SwitchIndex: 1}))
	assert.Equal(t, []bool{true, false}, data.ColumnsLit)

	h.HandleAction(state, "p2", "toggle_switch", payload(t, toggleSwitchPayload{SwitchIndex: 1}))
	assert.Equal(t, []bool{true, true}, data.ColumnsLit)
}

func TestCircuitRejectsForeignSwitch(t *testing.T) {
	h, state := circuitState(t)
	data := state.Data.(*circuitSwitchesData)

	delta := h.HandleAction(state, "p1", "toggle_switch", payload(t, toggleSwitchPayload{SwitchIndex: 1}))
	assert.Zero(t, delta)
	assert.Equal(t, []bool{false, false}, data.SwitchStates)
}

func TestCircuitCheckSolution(t *testing.T) {
	h, state := circuitState(t)
	data := state.Data.(*circuitSwitchesData)

	// An unsolved board costs glitch.
	delta := h.HandleAction(state, "p1", "check_solution", nil)
	assert.Equal(t, 4.0, delta)
	assert.Equal(t, 1, data.Attempts)
	assert.False(t, h.CheckWin(state))

	h.HandleAction(state, "p1", "toggle_switch", payload(t, toggleSwitchPayload{SwitchIndex: 0}))

	delta = h.HandleAction(state, "p1", "check_solution", nil)
	assert.Zero(t, delta)
	assert.Equal(t, 1, data.BoardsSolved)
	assert.True(t, h.CheckWin(state))
}

func TestCircuitMultiRoundResetsBoard(t *testing.T) {
	h := &circuitSwitchesHandler{}
	cfg := &game.PuzzleConfig{
		ID:   "circuit",
		Type: TypeCircuitSwitches,
		Data: map[string]any{
			"grid_size":           1,
			"switches_per_player": 1,
			"rounds_to_play":      2,
			"solution_matrices": [][][]bool{
				{{true}, {false}},
				{{true}, {false}},
			},
		},
	}

	state, err := h.Init(twoPlayers(), cfg)
	require.NoError(t, err)
	data := state.Data.(*circuitSwitchesData)

	h.HandleAction(state, "p1", "toggle_switch", payload(t, toggleSwitchPayload{SwitchIndex: 0}))
	h.HandleAction(state, "p1", "check_solution", nil)

	require.Equal(t, 1, data.BoardsSolved)
	assert.False(t, h.CheckWin(state))

	// The next round starts with every switch off again.
	assert.Equal(t, []bool{false, false}, data.SwitchStates)
	assert.Equal(t, 1, data.CurrentRound)

	h.HandleAction(state, "p1", "toggle_switch", payload(t, toggleSwitchPayload{SwitchIndex: 0}))
	h.HandleAction(state, "p1", "check_solution", nil)
	assert.True(t, h.CheckWin(state))
}

func TestCircuitRoundsClampToConfiguredMatrices(t *testing.T) {
	h := &circuitSwitchesHandler{}
	cfg := &game.PuzzleConfig{
		ID:   "circuit",
		Type: TypeCircuitSwitches,
		Data: map[string]any{
			"grid_size":           1,
			"switches_per_player": 1,
			"rounds_to_play":      5,
			"solution_matrices": [][][]bool{
				{{true}, {false}},
				{{true}, {false}},
			},
		},
	}

	state, err := h.Init(twoPlayers(), cfg)
	require.NoError(t, err)

	// Asking for more rounds than there are boards plays every board once.
	data := state.Data.(*circuitSwitchesData)
	assert.Equal(t, 2, data.RoundsToPlay)
	assert.Len(t, data.Matrices, 2)
}

func TestCircuitViewHidesWiringMatrix(t *testing.T) {
	h, state := circuitState(t)
	cfg := &game.PuzzleConfig{ID: "circuit", Type: TypeCircuitSwitches}

	view := h.PlayerView(state, "p1", "Operator", cfg)
	cv, ok := view.View.(circuitView)
	require.True(t, ok)

	assert.Equal(t, []int{0}, cv.MySwitches)
	assert.Len(t, cv.ColumnsLit, 2)
}
