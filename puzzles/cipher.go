/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package puzzles

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Seednode/puzzlebox/game"
)

// The Keyholder sees the substitution map; Scribes see only ciphertext and a
// hint, and must submit free-text guesses.
const RoleKeyholder = "Keyholder"

type cipherSentence struct {
	Encrypted string `json:"encrypted" mapstructure:"encrypted"`
	Decoded   string `json:"decoded" mapstructure:"decoded"`
	Hint      string `json:"hint" mapstructure:"hint"`
}

type cipherDecodeConfig struct {
	CipherKey map[string]string `mapstructure:"cipher_key"`
	Sentences []cipherSentence  `mapstructure:"sentences"`
}

type cipherDecodeData struct {
	CipherKey        map[string]string   `json:"cipherKey"`
	Sentences        []cipherSentence    `json:"sentences"`
	CurrentIndex     int                 `json:"currentIndex"`
	Completed        int                 `json:"completed"`
	WrongSubmissions int                 `json:"wrongSubmissions"`
	Attempts         map[string][]string `json:"attempts"`
	Penalty          float64             `json:"penalty"`
}

type cipherDecodeHandler struct{}

func (h *cipherDecodeHandler) NewData() any {
	return &cipherDecodeData{}
}

func (h *cipherDecodeHandler) Init(players []game.Player, cfg *game.PuzzleConfig) (*game.PuzzleState, error) {
	var c cipherDecodeConfig
	if err := decodeConfig(cfg, &c); err != nil {
		return nil, err
	}
	if len(c.Sentences) == 0 {
		return nil, fmt.Errorf("puzzle %q: no sentences configured", cfg.ID)
	}

	data := &cipherDecodeData{
		CipherKey: c.CipherKey,
		Sentences: c.Sentences,
		Attempts:  make(map[string][]string),
		Penalty:   penalty(cfg, 5),
	}

	return &game.PuzzleState{
		PuzzleID: cfg.ID,
		Type:     TypeCipherDecode,
		Status:   "active",
		Data:     data,
	}, nil
}

type submitDecodePayload struct {
	Text string `json:"text"`
}

func (h *cipherDecodeHandler) HandleAction(state *game.PuzzleState, playerID, action string, payload json.RawMessage) float64 {
	data, ok := state.Data.(*cipherDecodeData)
	if !ok || action != "submit_decode" {
		return 0
	}

	var p submitDecodePayload
	if !decodePayload(payload, &p) {
		return 0
	}

	if data.CurrentIndex >= len(data.Sentences) {
		return 0
	}
	sentence := data.Sentences[data.CurrentIndex]

	submission := strings.TrimSpace(p.Text)
	data.Attempts[playerID] = append(data.Attempts[playerID], submission)

	// Guesses are compared case-insensitively after trimming.
	if strings.EqualFold(submission, strings.TrimSpace(sentence.Decoded)) {
		data.Completed++
		data.CurrentIndex++
		data.Attempts = make(map[string][]string)
		return 0
	}

	data.WrongSubmissions++
	return data.Penalty
}

func (h *cipherDecodeHandler) CheckWin(state *game.PuzzleState) bool {
	data, ok := state.Data.(*cipherDecodeData)
	if !ok {
		return false
	}
	return data.Completed >= len(data.Sentences)
}

type keyholderCipherView struct {
	CipherKey        map[string]string `json:"cipherKey"`
	CurrentEncrypted string            `json:"currentEncrypted"`
	Hint             string            `json:"hint"`
	Completed        int               `json:"completedSentences"`
	TotalSentences   int               `json:"totalSentences"`
	CurrentIndex     int               `json:"currentSentenceIndex"`
}

type scribeCipherView struct {
	CurrentEncrypted string   `json:"currentEncrypted"`
	Hint             string   `json:"hint"`
	Completed        int      `json:"completedSentences"`
	TotalSentences   int      `json:"totalSentences"`
	CurrentIndex     int      `json:"currentSentenceIndex"`
	MyAttempts       []string `json:"myAttempts"`
}

func (h *cipherDecodeHandler) PlayerView(state *game.PuzzleState, playerID, role string, cfg *game.PuzzleConfig) game.PlayerView {
	view := baseView(state, playerID, role, cfg)
	data, ok := state.Data.(*cipherDecodeData)
	if !ok {
		return view
	}

	encrypted, hint := "", ""
	if data.CurrentIndex < len(data.Sentences) {
		encrypted = data.Sentences[data.CurrentIndex].Encrypted
		hint = data.Sentences[data.CurrentIndex].Hint
	}

	if role == RoleKeyholder {
		view.View = keyholderCipherView{
			CipherKey:        data.CipherKey,
			CurrentEncrypted: encrypted,
			Hint:             hint,
			Completed:        data.Completed,
			TotalSentences:   len(data.Sentences),
			CurrentIndex:     data.CurrentIndex,
		}
		return view
	}

	attempts := data.Attempts[playerID]
	if attempts == nil {
		attempts = []string{}
	}

	view.View = scribeCipherView{
		CurrentEncrypted: encrypted,
		Hint:             hint,
		Completed:        data.Completed,
		TotalSentences:   len(data.Sentences),
		CurrentIndex:     data.CurrentIndex,
		MyAttempts:       attempts,
	}
	return view
}
