/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// Handler is implemented once per puzzle type. The engine drives the puzzle
// lifecycle exclusively through this interface.
type Handler interface {
	// Init builds the type-specific initial state for the given players and
	// config, partitioning ownership among players where applicable. An error
	// means the config is unusable for this handler; the engine skips the
	// puzzle.
	Init(players []Player, cfg *PuzzleConfig) (*PuzzleState, error)

	// HandleAction applies a player action to the state and returns the
	// non-negative corruption delta. Unknown actions, malformed payloads, and
	// actions against sub-objects the player does not own must leave the
	// state untouched and return zero.
	HandleAction(state *PuzzleState, playerID, action string, payload json.RawMessage) float64

	// CheckWin reports whether the puzzle is solved. Side-effect free.
	CheckWin(state *PuzzleState) bool

	// PlayerView projects the subset of state the given role may see. Views
	// for different roles of the same state must withhold solution data from
	// at least one of them.
	PlayerView(state *PuzzleState, playerID, role string, cfg *PuzzleConfig) PlayerView

	// NewData returns a pointer to a zero value of the handler's state type,
	// used to re-hydrate a persisted snapshot's opaque data field.
	NewData() any
}

// Registry maps puzzle type tags to handlers. It is populated once at
// startup, before any room can start a game.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	log      zerolog.Logger
}

func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		log:      log,
	}
}

// Register binds a handler to a puzzle type tag. Registering the same tag
// twice replaces the previous handler.
func (r *Registry) Register(puzzleType string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[puzzleType] = h
	r.log.Debug().Str("type", puzzleType).Msg("registered puzzle handler")
}

// Get resolves a handler by puzzle type tag.
func (r *Registry) Get(puzzleType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[puzzleType]
	return h, ok
}

// Types returns the registered type tags, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Validate fails fast when a level references a puzzle type with no
// registered handler. Called at startup for every loaded level.
func (r *Registry) Validate(level *LevelConfig) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range level.Puzzles {
		p := &level.Puzzles[i]
		if _, ok := r.handlers[p.Type]; !ok {
			return fmt.Errorf("level %q puzzle %q: no handler registered for type %q", level.ID, p.ID, p.Type)
		}
	}
	return nil
}

// DecodeGameState unmarshals a persisted snapshot, re-hydrating the opaque
// puzzle data through the handler registered for its type. States persisted
// with no active puzzle round-trip unchanged.
func DecodeGameState(raw []byte, reg *Registry) (*GameState, error) {
	var aux struct {
		GameState
		PuzzleState *struct {
			PuzzleID string          `json:"puzzleId"`
			Type     string          `json:"type"`
			Status   string          `json:"status"`
			Data     json.RawMessage `json:"data"`
		} `json:"puzzleState"`
	}

	if err := json.Unmarshal(raw, &aux); err != nil {
		return nil, err
	}

	state := aux.GameState
	state.PuzzleState = nil

	if aux.PuzzleState != nil {
		h, ok := reg.Get(aux.PuzzleState.Type)
		if !ok {
			return nil, fmt.Errorf("snapshot references unregistered puzzle type %q", aux.PuzzleState.Type)
		}

		data := h.NewData()
		if err := json.Unmarshal(aux.PuzzleState.Data, data); err != nil {
			return nil, fmt.Errorf("decoding %q puzzle data: %w", aux.PuzzleState.Type, err)
		}

		state.PuzzleState = &PuzzleState{
			PuzzleID: aux.PuzzleState.PuzzleID,
			Type:     aux.PuzzleState.Type,
			Status:   aux.PuzzleState.Status,
			Data:     data,
		}
	}

	return &state, nil
}
