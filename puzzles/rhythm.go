/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package puzzles

import (
	"encoding/json"
	"fmt"

	"github.com/Seednode/puzzlebox/game"
)

// The Conductor sees the target sequence; Performers only see their own tap
// buffer and must follow the Conductor's count.
const RoleConductor = "Conductor"

type rhythmMatchConfig struct {
	Sequences   [][]string `mapstructure:"sequences"`
	RoundsToWin int        `mapstructure:"rounds_to_win"`

	ToleranceMS     int `mapstructure:"tolerance_ms"`
	PlaybackSpeedMS int `mapstructure:"playback_speed_ms"`
}

type rhythmMatchData struct {
	Sequences       [][]string          `json:"sequences"`
	CurrentRound    int                 `json:"currentRound"`
	RoundsToWin     int                 `json:"roundsToWin"`
	PlayerTaps      map[string][]string `json:"playerTaps"`
	PlayerReady     map[string]bool     `json:"playerReady"`
	TotalPlayers    int                 `json:"totalPlayers"`
	RoundResults    []bool              `json:"roundResults"`
	CurrentSequence []string            `json:"currentSequence"`
	ShowingSequence bool                `json:"showingSequence"`
	Penalty         float64             `json:"penalty"`

	ToleranceMS     int `json:"toleranceMs"`
	PlaybackSpeedMS int `json:"playbackSpeedMs"`
}

type rhythmMatchHandler struct{}

func (h *rhythmMatchHandler) NewData() any {
	return &rhythmMatchData{}
}

func (h *rhythmMatchHandler) Init(players []game.Player, cfg *game.PuzzleConfig) (*game.PuzzleState, error) {
	var c rhythmMatchConfig
	if err := decodeConfig(cfg, &c); err != nil {
		return nil, err
	}
	if len(c.Sequences) == 0 {
		return nil, fmt.Errorf("puzzle %q: no sequences configured", cfg.ID)
	}

	roundsToWin := c.RoundsToWin
	if roundsToWin <= 0 {
		roundsToWin = len(c.Sequences)
	}

	data := &rhythmMatchData{
		Sequences:       c.Sequences,
		RoundsToWin:     roundsToWin,
		PlayerTaps:      make(map[string][]string),
		PlayerReady:     make(map[string]bool),
		TotalPlayers:    len(players),
		RoundResults:    []bool{},
		CurrentSequence: c.Sequences[0],
		ShowingSequence: true,
		Penalty:         penalty(cfg, float64(3*len(players))),
		ToleranceMS:     withDefault(c.ToleranceMS, 600),
		PlaybackSpeedMS: withDefault(c.PlaybackSpeedMS, 800),
	}

	for _, p := range players {
		data.PlayerTaps[p.ID] = []string{}
		data.PlayerReady[p.ID] = false
	}

	return &game.PuzzleState{
		PuzzleID: cfg.ID,
		Type:     TypeRhythmMatch,
		Status:   "active",
		Data:     data,
	}, nil
}

type submitTapsPayload struct {
	Taps []string `json:"taps"`
}

func (h *rhythmMatchHandler) HandleAction(state *game.PuzzleState, playerID, action string, payload json.RawMessage) float64 {
	data, ok := state.Data.(*rhythmMatchData)
	if !ok {
		return 0
	}

	switch action {
	case "sequence_watched":
		data.ShowingSequence = false
		return 0

	case "submit_taps":
		var p submitTapsPayload
		if !decodePayload(payload, &p) {
			return 0
		}
		if _, known := data.PlayerReady[playerID]; !known {
			// Not part of this round's roster.
			return 0
		}

		data.PlayerTaps[playerID] = p.Taps
		data.PlayerReady[playerID] = true

		for _, ready := range data.PlayerReady {
			if !ready {
				return 0
			}
		}
		return h.resolveRound(data)
	}

	return 0
}

// resolveRound scores the round once every player has submitted, then resets
// for the next one. Sequences wrap so the puzzle stays playable until the
// required number of clean rounds is reached.
func (h *rhythmMatchHandler) resolveRound(data *rhythmMatchData) float64 {
	seq := data.CurrentSequence
	allCorrect := true

	for _, taps := range data.PlayerTaps {
		if len(taps) != len(seq) {
			allCorrect = false
			continue
		}
		for i := range seq {
			if taps[i] != seq[i] {
				allCorrect = false
				break
			}
		}
	}

	data.RoundResults = append(data.RoundResults, allCorrect)

	var delta float64
	if !allCorrect {
		delta = data.Penalty
	}

	data.CurrentRound++
	data.CurrentSequence = data.Sequences[data.CurrentRound%len(data.Sequences)]
	data.ShowingSequence = true
	for id := range data.PlayerReady {
		data.PlayerReady[id] = false
		data.PlayerTaps[id] = []string{}
	}

	return delta
}

func (h *rhythmMatchHandler) CheckWin(state *game.PuzzleState) bool {
	data, ok := state.Data.(*rhythmMatchData)
	if !ok {
		return false
	}

	successes := 0
	for _, r := range data.RoundResults {
		if r {
			successes++
		}
	}
	return successes >= data.RoundsToWin
}

type conductorRhythmView struct {
	CurrentSequence []string `json:"currentSequence"`
	CurrentRound    int      `json:"currentRound"`
	RoundsToWin     int      `json:"roundsToWin"`
	ShowingSequence bool     `json:"showingSequence"`
	PlayersReady    int      `json:"playersReady"`
	TotalPlayers    int      `json:"totalPlayers"`
	RoundResults    []bool   `json:"roundResults"`
	ToleranceMS     int      `json:"toleranceMs"`
	PlaybackSpeedMS int      `json:"playbackSpeedMs"`
}

type performerRhythmView struct {
	SequenceLength  int    `json:"sequenceLength"`
	CurrentRound    int    `json:"currentRound"`
	RoundsToWin     int    `json:"roundsToWin"`
	ShowingSequence bool   `json:"showingSequence"`
	IsReady         bool   `json:"isReady"`
	PlayersReady    int    `json:"playersReady"`
	TotalPlayers    int    `json:"totalPlayers"`
	RoundResults    []bool `json:"roundResults"`
	ToleranceMS     int    `json:"toleranceMs"`
	PlaybackSpeedMS int    `json:"playbackSpeedMs"`
}

func (h *rhythmMatchHandler) PlayerView(state *game.PuzzleState, playerID, role string, cfg *game.PuzzleConfig) game.PlayerView {
	view := baseView(state, playerID, role, cfg)
	data, ok := state.Data.(*rhythmMatchData)
	if !ok {
		return view
	}

	ready := 0
	for _, r := range data.PlayerReady {
		if r {
			ready++
		}
	}

	if role == RoleConductor {
		view.View = conductorRhythmView{
			CurrentSequence: data.CurrentSequence,
			CurrentRound:    data.CurrentRound,
			RoundsToWin:     data.RoundsToWin,
			ShowingSequence: data.ShowingSequence,
			PlayersReady:    ready,
			TotalPlayers:    data.TotalPlayers,
			RoundResults:    data.RoundResults,
			ToleranceMS:     data.ToleranceMS,
			PlaybackSpeedMS: data.PlaybackSpeedMS,
		}
		return view
	}

	view.View = performerRhythmView{
		SequenceLength:  len(data.CurrentSequence),
		CurrentRound:    data.CurrentRound,
		RoundsToWin:     data.RoundsToWin,
		ShowingSequence: data.ShowingSequence,
		IsReady:         data.PlayerReady[playerID],
		PlayersReady:    ready,
		TotalPlayers:    data.TotalPlayers,
		RoundResults:    data.RoundResults,
		ToleranceMS:     data.ToleranceMS,
		PlaybackSpeedMS: data.PlaybackSpeedMS,
	}
	return view
}
