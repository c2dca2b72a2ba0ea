/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package puzzles

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/Seednode/puzzlebox/game"
)

// The Architect sees the full solution blueprint; Builders see only their
// own unplaced pieces plus the public board of correctly placed ones.
const RoleArchitect = "Architect"

var rotations = []int{0, 90, 180, 270}

type gridAssemblyConfig struct {
	GridCols    int `mapstructure:"grid_cols"`
	GridRows    int `mapstructure:"grid_rows"`
	TotalPieces int `mapstructure:"total_pieces"`
}

type assemblyPiece struct {
	ID         int    `json:"id"`
	OwnerID    string `json:"ownerId"`
	CorrectCol int    `json:"correctCol"`
	CorrectRow int    `json:"correctRow"`
	CorrectRot int    `json:"correctRot"`
	PlacedCol  int    `json:"placedCol"`
	PlacedRow  int    `json:"placedRow"`
	PlacedRot  int    `json:"placedRot"`
	IsPlaced   bool   `json:"isPlaced"`
}

type gridAssemblyData struct {
	GridCols        int             `json:"gridCols"`
	GridRows        int             `json:"gridRows"`
	Pieces          []assemblyPiece `json:"pieces"`
	TotalPieces     int             `json:"totalPieces"`
	PlacedCorrectly int             `json:"placedCorrectly"`
	WrongPlacements int             `json:"wrongPlacements"`
	Penalty         float64         `json:"penalty"`
}

type gridAssemblyHandler struct{}

func (h *gridAssemblyHandler) NewData() any {
	return &gridAssemblyData{}
}

func (h *gridAssemblyHandler) Init(players []game.Player, cfg *game.PuzzleConfig) (*game.PuzzleState, error) {
	var c gridAssemblyConfig
	if err := decodeConfig(cfg, &c); err != nil {
		return nil, err
	}
	if c.GridCols <= 0 || c.GridRows <= 0 {
		return nil, fmt.Errorf("puzzle %q: invalid grid dimensions", cfg.ID)
	}

	total := c.TotalPieces
	if total <= 0 || total > c.GridCols*c.GridRows {
		total = c.GridCols * c.GridRows
	}

	// Pieces are dealt round-robin across players in roster order.
	pieces := make([]assemblyPiece, 0, total)
	id := 0
	for row := 0; row < c.GridRows && id < total; row++ {
		for col := 0; col < c.GridCols && id < total; col++ {
			pieces = append(pieces, assemblyPiece{
				ID:         id,
				OwnerID:    players[id%len(players)].ID,
				CorrectCol: col,
				CorrectRow: row,
				CorrectRot: rotations[rand.Intn(len(rotations))],
			})
			id++
		}
	}

	data := &gridAssemblyData{
		GridCols:    c.GridCols,
		GridRows:    c.GridRows,
		Pieces:      pieces,
		TotalPieces: total,
		Penalty:     penalty(cfg, 2),
	}

	return &game.PuzzleState{
		PuzzleID: cfg.ID,
		Type:     TypeGridAssembly,
		Status:   "active",
		Data:     data,
	}, nil
}

type placePiecePayload struct {
	PieceID  int `json:"pieceId"`
	Col      int `json:"col"`
	Row      int `json:"row"`
	Rotation int `json:"rotation"`
}

type removePiecePayload struct {
	PieceID int `json:"pieceId"`
}

func (h *gridAssemblyHandler) HandleAction(state *game.PuzzleState, playerID, action string, payload json.RawMessage) float64 {
	data, ok := state.Data.(*gridAssemblyData)
	if !ok {
		return 0
	}

	switch action {
	case "place_piece":
		var p placePiecePayload
		if !decodePayload(payload, &p) {
			return 0
		}

		piece := data.piece(p.PieceID)
		if piece == nil || piece.OwnerID != playerID {
			return 0
		}

		// Position and rotation must both match for a placement to stick.
		if p.Col == piece.CorrectCol && p.Row == piece.CorrectRow && p.Rotation == piece.CorrectRot {
			piece.IsPlaced = true
			piece.PlacedCol = p.Col
			piece.PlacedRow = p.Row
			piece.PlacedRot = p.Rotation
			data.recount()
			return 0
		}

		data.WrongPlacements++
		return data.Penalty

	case "remove_piece":
		var p removePiecePayload
		if !decodePayload(payload, &p) {
			return 0
		}

		piece := data.piece(p.PieceID)
		if piece == nil || piece.OwnerID != playerID {
			return 0
		}

		piece.IsPlaced = false
		piece.PlacedCol = 0
		piece.PlacedRow = 0
		piece.PlacedRot = 0
		data.recount()
		return 0
	}

	return 0
}

func (d *gridAssemblyData) piece(id int) *assemblyPiece {
	for i := range d.Pieces {
		if d.Pieces[i].ID == id {
			return &d.Pieces[i]
		}
	}
	return nil
}

func (d *gridAssemblyData) recount() {
	count := 0
	for i := range d.Pieces {
		if d.Pieces[i].IsPlaced {
			count++
		}
	}
	d.PlacedCorrectly = count
}

func (h *gridAssemblyHandler) CheckWin(state *game.PuzzleState) bool {
	data, ok := state.Data.(*gridAssemblyData)
	if !ok {
		return false
	}
	return data.PlacedCorrectly == data.TotalPieces
}

type blueprintEntry struct {
	ID       int  `json:"id"`
	Col      int  `json:"col"`
	Row      int  `json:"row"`
	Rotation int  `json:"rotation"`
	IsPlaced bool `json:"isPlaced"`
}

type inventoryPiece struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

type placedPiece struct {
	ID       int `json:"id"`
	Col      int `json:"col"`
	Row      int `json:"row"`
	Rotation int `json:"rotation"`
}

type architectAssemblyView struct {
	GridCols        int              `json:"gridCols"`
	GridRows        int              `json:"gridRows"`
	Blueprint       []blueprintEntry `json:"blueprint"`
	TotalPieces     int              `json:"totalPieces"`
	PlacedCorrectly int              `json:"placedCorrectly"`
}

type builderAssemblyView struct {
	GridCols        int              `json:"gridCols"`
	GridRows        int              `json:"gridRows"`
	MyPieces        []inventoryPiece `json:"myPieces"`
	PlacedPieces    []placedPiece    `json:"placedPieces"`
	TotalPieces     int              `json:"totalPieces"`
	PlacedCorrectly int              `json:"placedCorrectly"`
}

func (h *gridAssemblyHandler) PlayerView(state *game.PuzzleState, playerID, role string, cfg *game.PuzzleConfig) game.PlayerView {
	view := baseView(state, playerID, role, cfg)
	data, ok := state.Data.(*gridAssemblyData)
	if !ok {
		return view
	}

	if role == RoleArchitect {
		blueprint := make([]blueprintEntry, 0, len(data.Pieces))
		for _, p := range data.Pieces {
			blueprint = append(blueprint, blueprintEntry{
				ID:       p.ID,
				Col:      p.CorrectCol,
				Row:      p.CorrectRow,
				Rotation: p.CorrectRot,
				IsPlaced: p.IsPlaced,
			})
		}
		view.View = architectAssemblyView{
			GridCols:        data.GridCols,
			GridRows:        data.GridRows,
			Blueprint:       blueprint,
			TotalPieces:     data.TotalPieces,
			PlacedCorrectly: data.PlacedCorrectly,
		}
		return view
	}

	mine := []inventoryPiece{}
	placed := []placedPiece{}
	for _, p := range data.Pieces {
		if p.IsPlaced {
			placed = append(placed, placedPiece{ID: p.ID, Col: p.PlacedCol, Row: p.PlacedRow, Rotation: p.PlacedRot})
			continue
		}
		if p.OwnerID == playerID {
			mine = append(mine, inventoryPiece{ID: p.ID, Label: fmt.Sprintf("Fragment %d", p.ID+1)})
		}
	}

	view.View = builderAssemblyView{
		GridCols:        data.GridCols,
		GridRows:        data.GridRows,
		MyPieces:        mine,
		PlacedPieces:    placed,
		TotalPieces:     data.TotalPieces,
		PlacedCorrectly: data.PlacedCorrectly,
	}
	return view
}
