/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package puzzles

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"slices"

	"github.com/Seednode/puzzlebox/game"
)

type circuitSwitchesConfig struct {
	GridSize          int        `mapstructure:"grid_size"`
	SwitchesPerPlayer int        `mapstructure:"switches_per_player"`
	SolutionMatrix    [][]bool   `mapstructure:"solution_matrix"`
	SolutionMatrices  [][][]bool `mapstructure:"solution_matrices"`
	RoundsToPlay      int        `mapstructure:"rounds_to_play"`
	MaxAttempts       int        `mapstructure:"max_attempts"`
}

type circuitSwitchesData struct {
	GridSize          int                 `json:"gridSize"`
	SwitchStates      []bool              `json:"switchStates"`
	Matrices          [][][]bool          `json:"matrices"`
	SolutionMatrix    [][]bool            `json:"solutionMatrix"`
	SwitchAssignments map[string][]int    `json:"switchAssignments"`
	ColumnsLit        []bool              `json:"columnsLit"`
	Attempts          int                 `json:"attempts"`
	MaxAttempts       int                 `json:"maxAttempts"`
	CurrentRound      int                 `json:"currentRound"`
	RoundsToPlay      int                 `json:"roundsToPlay"`
	BoardsSolved      int                 `json:"boardsSolved"`
	Penalty           float64             `json:"penalty"`
}

type circuitSwitchesHandler struct{}

func (h *circuitSwitchesHandler) NewData() any {
	return &circuitSwitchesData{}
}

func (h *circuitSwitchesHandler) Init(players []game.Player, cfg *game.PuzzleConfig) (*game.PuzzleState, error) {
	var c circuitSwitchesConfig
	if err := decodeConfig(cfg, &c); err != nil {
		return nil, err
	}

	matrices := c.SolutionMatrices
	if len(matrices) == 0 && len(c.SolutionMatrix) > 0 {
		matrices = [][][]bool{c.SolutionMatrix}
	}
	if len(matrices) == 0 || c.GridSize <= 0 {
		return nil, fmt.Errorf("puzzle %q: no solution matrices configured", cfg.ID)
	}

	rand.Shuffle(len(matrices), func(i, j int) {
		matrices[i], matrices[j] = matrices[j], matrices[i]
	})

	rounds := c.RoundsToPlay
	if rounds <= 0 {
		rounds = 1
	}
	if rounds > len(matrices) {
		rounds = len(matrices)
	}
	matrices = matrices[:rounds]

	initial := matrices[0]
	totalSwitches := len(initial)
	switchStates := make([]bool, totalSwitches)

	// Switches are dealt out in player order, then any leftovers round-robin,
	// so ownership is deterministic given the roster.
	assignments := make(map[string][]int)
	idx := 0
	for _, p := range players {
		for i := 0; i < c.SwitchesPerPlayer && idx < totalSwitches; i++ {
			assignments[p.ID] = append(assignments[p.ID], idx)
			idx++
		}
	}
	for idx < totalSwitches {
		p := players[idx%len(players)]
		assignments[p.ID] = append(assignments[p.ID], idx)
		idx++
	}

	data := &circuitSwitchesData{
		GridSize:          c.GridSize,
		SwitchStates:      switchStates,
		Matrices:          matrices,
		SolutionMatrix:    initial,
		SwitchAssignments: assignments,
		ColumnsLit:        litColumns(switchStates, initial, c.GridSize),
		MaxAttempts:       c.MaxAttempts,
		RoundsToPlay:      rounds,
		Penalty:           penalty(cfg, 4),
	}

	return &game.PuzzleState{
		PuzzleID: cfg.ID,
		Type:     TypeCircuitSwitches,
		Status:   "active",
		Data:     data,
	}, nil
}

// litColumns computes the lit state of every column as an XOR fold over the
// active switches wired to it. This is deliberately not an OR: toggling an
// extra correct switch can unlight an already-lit column.
func litColumns(switchStates []bool, matrix [][]bool, gridSize int) []bool {
	columns := make([]bool, gridSize)
	for col := 0; col < gridSize; col++ {
		for sw := 0; sw < len(switchStates); sw++ {
			if switchStates[sw] && col < len(matrix[sw]) && matrix[sw][col] {
				columns[col] = !columns[col]
			}
		}
	}
	return columns
}

type toggleSwitchPayload struct {
	SwitchIndex int `json:"switchIndex"`
}

func (h *circuitSwitchesHandler) HandleAction(state *game.PuzzleState, playerID, action string, payload json.RawMessage) float64 {
	data, ok := state.Data.(*circuitSwitchesData)
	if !ok {
		return 0
	}

	switch action {
	case "toggle_switch":
		var p toggleSwitchPayload
		if !decodePayload(payload, &p) {
			return 0
		}
		// Players may only flip their own switches.
		if !slices.Contains(data.SwitchAssignments[playerID], p.SwitchIndex) {
			return 0
		}
		if p.SwitchIndex < 0 || p.SwitchIndex >= len(data.SwitchStates) {
			return 0
		}

		data.SwitchStates[p.SwitchIndex] = !data.SwitchStates[p.SwitchIndex]
		data.ColumnsLit = litColumns(data.SwitchStates, data.SolutionMatrix, data.GridSize)
		return 0

	case "check_solution":
		data.Attempts++
		for _, lit := range data.ColumnsLit {
			if !lit {
				return data.Penalty
			}
		}

		data.BoardsSolved++
		if data.BoardsSolved < data.RoundsToPlay {
			data.CurrentRound++
			data.SolutionMatrix = data.Matrices[data.CurrentRound]
			data.SwitchStates = make([]bool, len(data.SolutionMatrix))
			data.ColumnsLit = litColumns(data.SwitchStates, data.SolutionMatrix, data.GridSize)
		}
		return 0
	}

	return 0
}

func (h *circuitSwitchesHandler) CheckWin(state *game.PuzzleState) bool {
	data, ok := state.Data.(*circuitSwitchesData)
	if !ok {
		return false
	}
	return data.BoardsSolved >= data.RoundsToPlay
}

type circuitView struct {
	GridSize     int    `json:"gridSize"`
	ColumnsLit   []bool `json:"columnsLit"`
	MySwitches   []int  `json:"mySwitches"`
	SwitchStates []bool `json:"switchStates"`
	Attempts     int    `json:"attempts"`
	MaxAttempts  int    `json:"maxAttempts"`
	CurrentRound int    `json:"currentRound"`
	RoundsToPlay int    `json:"roundsToPlay"`
	BoardsSolved int    `json:"boardsSolved"`
}

// Every role sees the board, but only their own switch indices; the wiring
// matrix itself is never projected to anyone.
func (h *circuitSwitchesHandler) PlayerView(state *game.PuzzleState, playerID, role string, cfg *game.PuzzleConfig) game.PlayerView {
	view := baseView(state, playerID, role, cfg)
	data, ok := state.Data.(*circuitSwitchesData)
	if !ok {
		return view
	}

	mine := data.SwitchAssignments[playerID]
	if mine == nil {
		mine = []int{}
	}

	view.View = circuitView{
		GridSize:     data.GridSize,
		ColumnsLit:   data.ColumnsLit,
		MySwitches:   mine,
		SwitchStates: data.SwitchStates,
		Attempts:     data.Attempts,
		MaxAttempts:  data.MaxAttempts,
		CurrentRound: data.CurrentRound,
		RoundsToPlay: data.RoundsToPlay,
		BoardsSolved: data.BoardsSolved,
	}
	return view
}
