/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

// Inbound event names (client → server).
const (
	EventCreateRoom    = "room:create"
	EventJoinRoom      = "room:join"
	EventLeaveRoom     = "room:leave"
	EventStartGame     = "game:start"
	EventIntroComplete = "game:intro_complete"
	EventPlayerReady   = "game:ready"
	EventPuzzleAction  = "puzzle:action"
	EventToggleDebug   = "debug:toggle"
	EventJumpToPuzzle  = "debug:jump"
)

// Outbound event names (server → client).
const (
	EventRoomCreated     = "room:created"
	EventRoomJoined      = "room:joined"
	EventPlayerList      = "room:players"
	EventRoomError       = "room:error"
	EventGameStarted     = "game:started"
	EventPhaseChange     = "game:phase"
	EventBriefing        = "game:briefing"
	EventReadyUpdate     = "game:ready_update"
	EventRolesAssigned   = "roles:assigned"
	EventPuzzleStart     = "puzzle:start"
	EventPuzzleUpdate    = "puzzle:update"
	EventPuzzleCompleted = "puzzle:completed"
	EventGlitchUpdate    = "glitch:update"
	EventTimerUpdate     = "timer:update"
	EventVictory         = "game:victory"
	EventDefeat          = "game:defeat"
	EventDebugUpdate     = "debug:update"
)

// Emitter is the wire transport the engine produces into. Broadcast fans out
// to every connection subscribed to a room; Send routes to exactly one
// player's connection. Implementations must preserve per-room FIFO ordering
// relative to the engine's calls.
type Emitter interface {
	Broadcast(roomCode, event string, payload any)
	Send(playerID, event string, payload any)
}

type RoomErrorPayload struct {
	Message string `json:"message"`
}

type PlayerListPayload struct {
	Players []Player `json:"players"`
}

type GameStartedPayload struct {
	LevelID         string   `json:"levelId"`
	LevelTitle      string   `json:"levelTitle"`
	LevelStory      string   `json:"levelStory"`
	LevelIntroAudio string   `json:"levelIntroAudio"`
	BackgroundMusic string   `json:"backgroundMusic"`
	ThemeCSS        []string `json:"themeCss"`
	TotalPuzzles    int      `json:"totalPuzzles"`
	TimerSeconds    int      `json:"timerSeconds"`
}

type PhaseChangePayload struct {
	Phase       Phase `json:"phase"`
	PuzzleIndex int   `json:"puzzleIndex"`
}

type BriefingPayload struct {
	PuzzleTitle      string `json:"puzzleTitle"`
	BriefingText     string `json:"briefingText"`
	PuzzleIndex      int    `json:"puzzleIndex"`
	TotalPuzzles     int    `json:"totalPuzzles"`
	TotalRoomPlayers int    `json:"totalRoomPlayers"`
}

type ReadyUpdatePayload struct {
	ReadyCount   int `json:"readyCount"`
	TotalPlayers int `json:"totalPlayers"`
}

type RolesAssignedPayload struct {
	Roles []RoleAssignment `json:"roles"`
}

type PuzzleStartPayload struct {
	PuzzleID    string           `json:"puzzleId"`
	PuzzleType  string           `json:"puzzleType"`
	PuzzleTitle string           `json:"puzzleTitle"`
	Roles       []RoleAssignment `json:"roles"`
	PlayerView  PlayerView       `json:"playerView"`
}

type PuzzleUpdatePayload struct {
	PuzzleID   string     `json:"puzzleId"`
	PlayerView PlayerView `json:"playerView"`
}

type PuzzleCompletedPayload struct {
	PuzzleID     string `json:"puzzleId"`
	PuzzleIndex  int    `json:"puzzleIndex"`
	TotalPuzzles int    `json:"totalPuzzles"`
}

type GlitchUpdatePayload struct {
	Glitch GlitchState `json:"glitch"`
}

type TimerUpdatePayload struct {
	Timer TimerState `json:"timer"`
}

type VictoryPayload struct {
	ElapsedSeconds   int     `json:"elapsedSeconds"`
	GlitchFinal      float64 `json:"glitchFinal"`
	PuzzlesCompleted int     `json:"puzzlesCompleted"`
}

// DefeatReason distinguishes which loss condition fired.
type DefeatReason string

const (
	DefeatTimer  DefeatReason = "timer"
	DefeatGlitch DefeatReason = "glitch"
)

type DefeatPayload struct {
	Reason             DefeatReason `json:"reason"`
	PuzzlesCompleted   int          `json:"puzzlesCompleted"`
	PuzzleReachedIndex int          `json:"puzzleReachedIndex"`
}

type DebugUpdatePayload struct {
	Enabled  bool         `json:"enabled"`
	AllViews []PlayerView `json:"allViews"`
}
