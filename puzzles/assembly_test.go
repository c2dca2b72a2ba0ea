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

func assemblyState(t *testing.T) (*gridAssemblyHandler, *game.PuzzleState) {
	t.Helper()

	h := &gridAssemblyHandler{}
	cfg := &game.PuzzleConfig{
		ID:   "assembly",
		Type: TypeGridAssembly,
		Data: map[string]any{
			"grid_cols": 2,
			"grid_rows": 2,
		},
	}

	state, err := h.Init(twoPlayers(), cfg)
	require.NoError(t, err)
	return h, state
}

func TestAssemblyDealsPiecesRoundRobin(t *testing.T) {
	_, state := assemblyState(t)
	data := state.Data.(*gridAssemblyData)

	require.Len(t, data.Pieces, 4)
	assert.Equal(t, "p1", data.Pieces[0].OwnerID)
	assert.Equal(t, "p2", data.Pieces[1].OwnerID)
	assert.Equal(t, "p1", data.Pieces[2].OwnerID)
	assert.Equal(t, "p2", data.Pieces[3].OwnerID)

	for _, p := range data.Pieces {
		assert.Contains(t, []int{0, 90, 180, 270}, p.CorrectRot)
	}
}

func TestAssemblyPlacementNeedsPositionAndRotation(t *testing.T) {
	h, state := assemblyState(t)
	data := state.Data.(*gridAssemblyData)
	piece := data.Pieces[0]

	wrongRot := (piece.CorrectRot + 90) % 360
	delta := h.HandleAction(state, "p1", "place_piece", payload(t, placePiecePayload{
		PieceID:  piece.ID,
		Col:      piece.CorrectCol,
		Row:      piece.CorrectRow,
		Rotation: wrongRot,
	}))
	assert.Equal(t, 2.0, delta)
	assert.Equal(t, 1, data.WrongPlacements)
	assert.False(t, data.Pieces[0].IsPlaced)

	delta = h.HandleAction(state, "p1", "place_piece", payload(t, placePiecePayload{
		PieceID:  piece.ID,
		Col:      piece.CorrectCol,
		Row:      piece.CorrectRow,
		Rotation: piece.CorrectRot,
	}))
	assert.Zero(t, delta)
	assert.True(t, data.Pieces[0].IsPlaced)
	assert.Equal(t, 1, data.PlacedCorrectly)
}

func TestAssemblyOnlyOwnerMayPlace(t *testing.T) {
	h, state := assemblyState(t)
	data := state.Data.(*gridAssemblyData)
	piece := data.Pieces[0] // owned by p1

	delta := h.HandleAction(state, "p2", "place_piece", payload(t, placePiecePayload{
		PieceID:  piece.ID,
		Col:      piece.CorrectCol,
		Row:      piece.CorrectRow,
		Rotation: piece.CorrectRot,
	}))
	assert.Zero(t, delta)
	assert.False(t, data.Pieces[0].IsPlaced)
	assert.Zero(t, data.WrongPlacements)
}

func TestAssemblyRemovePiece(t *testing.T) {
	h, state := assemblyState(t)
	data := state.Data.(*gridAssemblyData)
	piece := data.Pieces[0]

	h.HandleAction(state, "p1", "place_piece", payload(t, placePiecePayload{
		PieceID:  piece.ID,
		Col:      piece.CorrectCol,
		Row:      piece.CorrectRow,
		Rotation: piece.CorrectRot,
	}))
	require.Equal(t, 1, data.PlacedCorrectly)

	h.HandleAction(state, "p1", "remove_piece", payload(t, removePiecePayload{PieceID: piece.ID}))
	assert.False(t, data.Pieces[0].IsPlaced)
	assert.Equal(t, 0, data.PlacedCorrectly)
}

func TestAssemblyWinWhenAllPiecesPlaced(t *testing.T) {
	h, state := assemblyState(t)
	data := state.Data.(*gridAssemblyData)

	for _, piece := range data.Pieces {
		h.HandleAction(state, piece.OwnerID, "place_piece", payload(t, placePiecePayload{
			PieceID:  piece.ID,
			Col:      piece.CorrectCol,
			Row:      piece.CorrectRow,
			Rotation: piece.CorrectRot,
		}))
	}

	assert.True(t, h.CheckWin(state))
}

func TestAssemblyViewAsymmetry(t *testing.T) {
	h, state := assemblyState(t)
	cfg := &game.PuzzleConfig{ID: "assembly", Type: TypeGridAssembly}

	architect := h.PlayerView(state, "p1", RoleArchitect, cfg)
	builder := h.PlayerView(state, "p2", "Builder", cfg)

	av, ok := architect.View.(architectAssemblyView)
	require.True(t, ok)
	assert.Len(t, av.Blueprint, 4)

	bv, ok := builder.View.(builderAssemblyView)
	require.True(t, ok)

	// Builders only see their own unplaced pieces and the public board.
	assert.Len(t, bv.MyPieces, 2)
	assert.Empty(t, bv.PlacedPieces)

	raw, err := json.Marshal(bv)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "correctCol")
	assert.NotContains(t, string(raw), "blueprint")
}
