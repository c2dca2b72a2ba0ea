/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"encoding/json"
	"sync"
	"time"
)

// Phase is the room-wide state machine position. Transitions are driven
// exclusively by the Engine.
type Phase string

const (
	PhaseLobby      Phase = "lobby"
	PhaseLevelIntro Phase = "level_intro"
	PhaseBriefing   Phase = "briefing"
	PhasePlaying    Phase = "playing"
	PhaseTransition Phase = "puzzle_transition"
	PhaseVictory    Phase = "victory"
	PhaseDefeat     Phase = "defeat"
)

// GlitchState is the shared corruption meter. Value only ever moves through
// Engine.addGlitchLocked, which clamps it at MaxValue.
type GlitchState struct {
	Value     float64 `json:"value"`
	MaxValue  float64 `json:"maxValue"`
	DecayRate float64 `json:"decayRate"`
}

// TimerState is a snapshot of the authoritative countdown.
type TimerState struct {
	TotalSeconds     int  `json:"totalSeconds"`
	RemainingSeconds int  `json:"remainingSeconds"`
	Running          bool `json:"running"`
}

// RoleAssignment pairs a player with the role they hold for the active puzzle.
type RoleAssignment struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Role       string `json:"role"`
}

// PuzzleState wraps the handler-owned state of the active puzzle. Data is
// opaque to the engine; it is shaped, read, and mutated only by the handler
// registered for Type.
type PuzzleState struct {
	PuzzleID string `json:"puzzleId"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	Data     any    `json:"data"`
}

// PlayerView is the role-filtered projection of puzzle state delivered
// privately to a single player.
type PlayerView struct {
	PlayerID    string `json:"playerId"`
	Role        string `json:"role"`
	PuzzleID    string `json:"puzzleId"`
	PuzzleType  string `json:"puzzleType"`
	PuzzleTitle string `json:"puzzleTitle"`
	View        any    `json:"viewData"`
}

// GameState is the authoritative per-room game state. One instance per room,
// mutated only by the Engine while holding the room lock. Every field is
// JSON-serializable so a snapshot can survive a process restart.
type GameState struct {
	Phase              Phase            `json:"phase"`
	LevelID            string           `json:"levelId"`
	CurrentPuzzleIndex int              `json:"currentPuzzleIndex"`
	TotalPuzzles       int              `json:"totalPuzzles"`
	Glitch             GlitchState      `json:"glitch"`
	Timer              TimerState       `json:"timer"`
	PuzzleState        *PuzzleState     `json:"puzzleState"`
	RoleAssignments    []RoleAssignment `json:"roleAssignments"`
	StartedAt          int64            `json:"startedAt"`
	CompletedPuzzles   []string         `json:"completedPuzzles"`
	ReadyPlayers       []string         `json:"readyPlayers"`
}

func newGameState() *GameState {
	return &GameState{
		Phase:            PhaseLobby,
		Glitch:           GlitchState{MaxValue: 100},
		RoleAssignments:  []RoleAssignment{},
		CompletedPuzzles: []string{},
		ReadyPlayers:     []string{},
	}
}

// markReady records a ready signal, idempotently. Returns the current count.
func (s *GameState) markReady(playerID string) int {
	for _, id := range s.ReadyPlayers {
		if id == playerID {
			return len(s.ReadyPlayers)
		}
	}
	s.ReadyPlayers = append(s.ReadyPlayers, playerID)
	return len(s.ReadyPlayers)
}

// Player holds what the server stores per connection.
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	RoomCode  string `json:"roomCode"`
	Role      string `json:"role,omitempty"`
	IsHost    bool   `json:"isHost"`
	Connected bool   `json:"connected"`
}

// Room groups players into one game session, identified by a short code.
// Membership and State are guarded by mu; the Engine and the Directory are
// the only writers.
type Room struct {
	code      string
	hostID    string
	players   []*Player
	state     *GameState
	createdAt time.Time

	lastActive time.Time

	mu sync.Mutex
}

// Code returns the room's join code.
func (r *Room) Code() string {
	return r.code
}

// HostID returns the current host's player id.
func (r *Room) HostID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID
}

// IsHost reports whether the given player id currently holds the host flag.
func (r *Room) IsHost(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID == playerID
}

// Players returns a copy of the connected player list, in join order.
func (r *Room) Players() []Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connectedPlayersLocked()
}

func (r *Room) connectedPlayersLocked() []Player {
	out := make([]Player, 0, len(r.players))
	for _, p := range r.players {
		if p.Connected {
			out = append(out, *p)
		}
	}
	return out
}

func (r *Room) connectedPlayerPtrsLocked() []*Player {
	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if p.Connected {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) playerLocked(playerID string) *Player {
	for _, p := range r.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// Snapshot serializes the room's GameState. Used by the persistence layer
// and by tests; the engine holds the lock for the duration of the marshal.
func (r *Room) Snapshot() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return json.Marshal(r.state)
}

// StateCopy returns a shallow copy of the room's GameState for read-only
// inspection. PuzzleState.Data is shared; callers must not mutate it.
func (r *Room) StateCopy() GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.state
}
