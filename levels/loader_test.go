/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package levels

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/puzzlebox/game"
)

const sampleLevel = `
id: test-level
title: Test Level
min_players: 2
timer_seconds: 600
glitch_max: 100
puzzles:
  - id: first
    type: stub
    title: First Puzzle
    briefing: Do the thing.
    glitch_penalty: 5
    layout:
      roles:
        - name: Lead
          count: "1"
        - name: Crew
          count: remaining
    data:
      answer: 42
`

func writeLevel(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoaderParsesLevelFiles(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "test.yml", sampleLevel)

	loader := NewLoader(dir, "", zerolog.Nop())
	require.NoError(t, loader.Load())

	level, ok := loader.GetLevel("test-level")
	require.True(t, ok)

	assert.Equal(t, "Test Level", level.Title)
	assert.Equal(t, 2, level.MinPlayers)
	assert.Equal(t, 600, level.TimerSeconds)
	assert.Equal(t, 100.0, level.GlitchMax)

	require.Len(t, level.Puzzles, 1)
	puzzle := level.Puzzles[0]
	assert.Equal(t, "stub", puzzle.Type)
	assert.Equal(t, 5.0, puzzle.GlitchPenalty)

	require.Len(t, puzzle.Layout.Roles, 2)
	assert.Equal(t, game.RoleCount("1"), puzzle.Layout.Roles[0].Count)
	assert.True(t, puzzle.Layout.Roles[1].Count.Remaining())

	assert.EqualValues(t, 42, puzzle.Data["answer"])
}

func TestLoaderIgnoresNonLevelFiles(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "test.yaml", sampleLevel)
	writeLevel(t, dir, "README.md", "not a level")

	loader := NewLoader(dir, "", zerolog.Nop())
	require.NoError(t, loader.Load())

	assert.Equal(t, []string{"test-level"}, loader.IDs())
}

func TestLoaderRejectsEmptyDirectory(t *testing.T) {
	loader := NewLoader(t.TempDir(), "", zerolog.Nop())
	assert.Error(t, loader.Load())
}

func TestLoaderRejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "a.yml", sampleLevel)
	writeLevel(t, dir, "b.yml", sampleLevel)

	loader := NewLoader(dir, "", zerolog.Nop())
	assert.Error(t, loader.Load())
}

func TestLoaderRejectsLevelWithoutPuzzles(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "bad.yml", "id: empty-level\ntitle: Empty\n")

	loader := NewLoader(dir, "", zerolog.Nop())
	assert.Error(t, loader.Load())
}

func TestDefaultLevelFallsBackToFirstSorted(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "b.yml", "id: beta\npuzzles:\n  - id: p\n    type: stub\n")
	writeLevel(t, dir, "a.yml", "id: alpha\npuzzles:\n  - id: p\n    type: stub\n")

	loader := NewLoader(dir, "", zerolog.Nop())
	require.NoError(t, loader.Load())

	level, ok := loader.DefaultLevel()
	require.True(t, ok)
	assert.Equal(t, "alpha", level.ID)

	configured := NewLoader(dir, "beta", zerolog.Nop())
	require.NoError(t, configured.Load())

	level, ok = configured.DefaultLevel()
	require.True(t, ok)
	assert.Equal(t, "beta", level.ID)
}

type stubHandler struct{}

func (stubHandler) Init(players []game.Player, cfg *game.PuzzleConfig) (*game.PuzzleState, error) {
	return &game.PuzzleState{}, nil
}

func (stubHandler) HandleAction(state *game.PuzzleState, playerID, action string, payload json.RawMessage) float64 {
	return 0
}

func (stubHandler) CheckWin(state *game.PuzzleState) bool {
	return false
}

func (stubHandler) PlayerView(state *game.PuzzleState, playerID, role string, cfg *game.PuzzleConfig) game.PlayerView {
	return game.PlayerView{}
}

func (stubHandler) NewData() any {
	return &struct{}{}
}

func TestValidateAgainstRegistry(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "test.yml", sampleLevel)

	loader := NewLoader(dir, "", zerolog.Nop())
	require.NoError(t, loader.Load())

	registry := game.NewRegistry(zerolog.Nop())
	assert.Error(t, loader.Validate(registry))

	registry.Register("stub", stubHandler{})
	assert.NoError(t, loader.Validate(registry))
}
