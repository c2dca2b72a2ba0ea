/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "strconv"

// RoleCount is either a positive integer or the literal "remaining". A level
// file may use either form; the loader normalizes both to a string.
type RoleCount string

const CountRemaining RoleCount = "remaining"

func (c RoleCount) Remaining() bool {
	return c == CountRemaining
}

// Fixed returns the explicit slot count, or 0 for "remaining" or malformed
// values.
func (c RoleCount) Fixed() int {
	n, err := strconv.Atoi(string(c))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// PuzzleRole is one role slot definition from a puzzle's layout.
type PuzzleRole struct {
	Name        string    `json:"name" mapstructure:"name"`
	Count       RoleCount `json:"count" mapstructure:"count"`
	Description string    `json:"description" mapstructure:"description"`
}

// PuzzleLayout groups the role definitions for a puzzle.
type PuzzleLayout struct {
	Roles []PuzzleRole `json:"roles" mapstructure:"roles"`
}

// PuzzleConfig describes one puzzle inside a level. Data is the type-specific
// bag consumed by the matching handler's Init; the engine never inspects it.
type PuzzleConfig struct {
	ID            string         `json:"id" mapstructure:"id"`
	Type          string         `json:"type" mapstructure:"type"`
	Title         string         `json:"title" mapstructure:"title"`
	Briefing      string         `json:"briefing" mapstructure:"briefing"`
	GlitchPenalty float64        `json:"glitchPenalty" mapstructure:"glitch_penalty"`
	Layout        PuzzleLayout   `json:"layout" mapstructure:"layout"`
	Data          map[string]any `json:"data" mapstructure:"data"`
}

// AudioCues are opaque asset references forwarded to clients.
type AudioCues struct {
	Intro      string `json:"intro" mapstructure:"intro"`
	Background string `json:"background" mapstructure:"background"`
}

// LevelConfig is one playable level definition.
type LevelConfig struct {
	ID              string         `json:"id" mapstructure:"id"`
	Title           string         `json:"title" mapstructure:"title"`
	Story           string         `json:"story" mapstructure:"story"`
	MinPlayers      int            `json:"minPlayers" mapstructure:"min_players"`
	MaxPlayers      int            `json:"maxPlayers" mapstructure:"max_players"`
	TimerSeconds    int            `json:"timerSeconds" mapstructure:"timer_seconds"`
	GlitchMax       float64        `json:"glitchMax" mapstructure:"glitch_max"`
	GlitchDecayRate float64        `json:"glitchDecayRate" mapstructure:"glitch_decay_rate"`
	ThemeCSS        []string       `json:"themeCss" mapstructure:"theme_css"`
	AudioCues       AudioCues      `json:"audioCues" mapstructure:"audio_cues"`
	Puzzles         []PuzzleConfig `json:"puzzles" mapstructure:"puzzles"`
}

// Puzzle returns the puzzle at index, or nil when the index is past the end
// of the level. The absence of a next puzzle is the victory signal.
func (l *LevelConfig) Puzzle(index int) *PuzzleConfig {
	if index < 0 || index >= len(l.Puzzles) {
		return nil
	}
	return &l.Puzzles[index]
}

// LevelResolver is the level-definition collaborator consumed by the engine.
type LevelResolver interface {
	GetLevel(id string) (*LevelConfig, bool)
	DefaultLevel() (*LevelConfig, bool)
}
