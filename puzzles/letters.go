/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package puzzles

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"github.com/Seednode/puzzlebox/game"
)

// The Caller sees the target words and capture progress; Catchers see only
// the masked buffer and act on the Caller's spoken instructions.
const RoleCaller = "Caller"

type letterCaptureConfig struct {
	SolutionWords []string `mapstructure:"solution_words"`
	RoundsToPlay  int      `mapstructure:"rounds_to_play"`

	// Client pacing, passed through untouched.
	SpawnIntervalMS  int     `mapstructure:"spawn_interval_ms"`
	LetterLifetimeMS int     `mapstructure:"letter_lifetime_ms"`
	DecoyRatio       float64 `mapstructure:"decoy_ratio"`
}

type letterCaptureData struct {
	SolutionWords    []string          `json:"solutionWords"`
	CurrentWordIndex int               `json:"currentWordIndex"`
	CapturedLetters  []string          `json:"capturedLetters"`
	CapturedBy       map[string]string `json:"capturedBy"`
	WrongCaptures    int               `json:"wrongCaptures"`
	CompletedWords   []string          `json:"completedWords"`
	Penalty          float64           `json:"penalty"`

	SpawnIntervalMS  int     `json:"spawnIntervalMs"`
	LetterLifetimeMS int     `json:"letterLifetimeMs"`
	DecoyRatio       float64 `json:"decoyRatio"`
}

type letterCaptureHandler struct{}

func (h *letterCaptureHandler) NewData() any {
	return &letterCaptureData{}
}

func (h *letterCaptureHandler) Init(players []game.Player, cfg *game.PuzzleConfig) (*game.PuzzleState, error) {
	var c letterCaptureConfig
	if err := decodeConfig(cfg, &c); err != nil {
		return nil, err
	}
	if len(c.SolutionWords) == 0 {
		return nil, fmt.Errorf("puzzle %q: no solution words configured", cfg.ID)
	}

	words := make([]string, len(c.SolutionWords))
	for i, w := range c.SolutionWords {
		words[i] = strings.ToUpper(w)
	}
	rand.Shuffle(len(words), func(i, j int) {
		words[i], words[j] = words[j], words[i]
	})

	if c.RoundsToPlay > 0 && c.RoundsToPlay < len(words) {
		words = words[:c.RoundsToPlay]
	}

	data := &letterCaptureData{
		SolutionWords:    words,
		CapturedLetters:  emptyMask(words[0]),
		CapturedBy:       make(map[string]string),
		CompletedWords:   []string{},
		Penalty:          penalty(cfg, 5),
		SpawnIntervalMS:  withDefault(c.SpawnIntervalMS, 800),
		LetterLifetimeMS: withDefault(c.LetterLifetimeMS, 4000),
		DecoyRatio:       withDefaultFloat(c.DecoyRatio, 0.3),
	}

	return &game.PuzzleState{
		PuzzleID: cfg.ID,
		Type:     TypeLetterCapture,
		Status:   "active",
		Data:     data,
	}, nil
}

func emptyMask(word string) []string {
	mask := make([]string, len(word))
	for i := range mask {
		mask[i] = "_"
	}
	return mask
}

func withDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func withDefaultFloat(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

type captureLetterPayload struct {
	Letter string `json:"letter"`
}

func (h *letterCaptureHandler) HandleAction(state *game.PuzzleState, playerID, action string, payload json.RawMessage) float64 {
	data, ok := state.Data.(*letterCaptureData)
	if !ok || action != "capture_letter" {
		return 0
	}

	var p captureLetterPayload
	if !decodePayload(payload, &p) || p.Letter == "" {
		return 0
	}
	letter := strings.ToUpper(p.Letter)

	if data.CurrentWordIndex >= len(data.SolutionWords) {
		return 0
	}
	word := data.SolutionWords[data.CurrentWordIndex]

	// Duplicate letters fill left to right: the first unfilled position
	// whose target character matches wins, regardless of which instance the
	// player clicked.
	insert := -1
	for i := 0; i < len(word); i++ {
		if string(word[i]) == letter && data.CapturedLetters[i] == "_" {
			insert = i
			break
		}
	}

	if insert == -1 {
		data.WrongCaptures++
		return data.Penalty
	}

	data.CapturedLetters[insert] = letter
	data.CapturedBy[fmt.Sprintf("%d-%d", data.CurrentWordIndex, insert)] = playerID

	complete := true
	for _, c := range data.CapturedLetters {
		if c == "_" {
			complete = false
			break
		}
	}

	if complete {
		data.CompletedWords = append(data.CompletedWords, word)
		data.CurrentWordIndex++
		if data.CurrentWordIndex < len(data.SolutionWords) {
			data.CapturedLetters = emptyMask(data.SolutionWords[data.CurrentWordIndex])
		} else {
			data.CapturedLetters = []string{}
		}
	}

	return 0
}

func (h *letterCaptureHandler) CheckWin(state *game.PuzzleState) bool {
	data, ok := state.Data.(*letterCaptureData)
	if !ok {
		return false
	}
	return len(data.CompletedWords) == len(data.SolutionWords)
}

type callerLetterView struct {
	SolutionWords    []string `json:"solutionWords"`
	CurrentWordIndex int      `json:"currentWordIndex"`
	CapturedLetters  []string `json:"capturedLetters"`
	CompletedWords   []string `json:"completedWords"`
	TotalWords       int      `json:"totalWords"`
	SpawnIntervalMS  int      `json:"spawnIntervalMs"`
	LetterLifetimeMS int      `json:"letterLifetimeMs"`
	DecoyRatio       float64  `json:"decoyRatio"`
}

type catcherLetterView struct {
	CurrentWordLength int      `json:"currentWordLength"`
	CapturedLetters   []string `json:"capturedLetters"`
	CapturedCount     int      `json:"capturedCount"`
	CompletedWords    int      `json:"completedWords"`
	TotalWords        int      `json:"totalWords"`
	SpawnIntervalMS   int      `json:"spawnIntervalMs"`
	LetterLifetimeMS  int      `json:"letterLifetimeMs"`
	DecoyRatio        float64  `json:"decoyRatio"`
}

func (h *letterCaptureHandler) PlayerView(state *game.PuzzleState, playerID, role string, cfg *game.PuzzleConfig) game.PlayerView {
	view := baseView(state, playerID, role, cfg)
	data, ok := state.Data.(*letterCaptureData)
	if !ok {
		return view
	}

	if role == RoleCaller {
		view.View = callerLetterView{
			SolutionWords:    data.SolutionWords,
			CurrentWordIndex: data.CurrentWordIndex,
			CapturedLetters:  data.CapturedLetters,
			CompletedWords:   data.CompletedWords,
			TotalWords:       len(data.SolutionWords),
			SpawnIntervalMS:  data.SpawnIntervalMS,
			LetterLifetimeMS: data.LetterLifetimeMS,
			DecoyRatio:       data.DecoyRatio,
		}
		return view
	}

	// Catchers never see the words themselves.
	captured := 0
	for _, c := range data.CapturedLetters {
		if c != "_" {
			captured++
		}
	}

	wordLen := 0
	if data.CurrentWordIndex < len(data.SolutionWords) {
		wordLen = len(data.SolutionWords[data.CurrentWordIndex])
	}

	view.View = catcherLetterView{
		CurrentWordLength: wordLen,
		CapturedLetters:   data.CapturedLetters,
		CapturedCount:     captured,
		CompletedWords:    len(data.CompletedWords),
		TotalWords:        len(data.SolutionWords),
		SpawnIntervalMS:   data.SpawnIntervalMS,
		LetterLifetimeMS:  data.LetterLifetimeMS,
		DecoyRatio:        data.DecoyRatio,
	}
	return view
}
