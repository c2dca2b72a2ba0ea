/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// GameResult is the summary row persisted when a game ends.
type GameResult struct {
	RoomCode         string
	LevelID          string
	Outcome          Phase
	Reason           DefeatReason
	ElapsedSeconds   int
	GlitchFinal      float64
	PuzzlesCompleted int
	PlayerNames      []string
	PlayedAt         time.Time
}

// GameStore is the optional persistence collaborator. All calls are
// best-effort from the engine's point of view; failures are logged and never
// block gameplay.
type GameStore interface {
	SaveSnapshot(ctx context.Context, roomCode string, state []byte) error
	LoadSnapshot(ctx context.Context, roomCode string) ([]byte, error)
	DeleteSnapshot(ctx context.Context, roomCode string) error
	PruneSnapshots(ctx context.Context, olderThan time.Duration) (int64, error)
	SaveResult(ctx context.Context, result GameResult) error
}

const defaultTransitionDelay = 3 * time.Second

// Engine advances rooms through the game's phase state machine. All state
// mutation for a room happens under that room's lock, so inbound actions and
// timer callbacks are serialized per room while distinct rooms proceed in
// parallel. Public operations are defensive no-ops when a prerequisite
// (room, level, handler, config) is missing: a race between a disconnect and
// an in-flight action is expected, not exceptional.
type Engine struct {
	levels   LevelResolver
	registry *Registry
	emit     Emitter
	store    GameStore // nil disables persistence
	log      zerolog.Logger

	transitionDelay time.Duration

	tmu    sync.Mutex
	timers map[string]*Timer
}

func NewEngine(levels LevelResolver, registry *Registry, emit Emitter, store GameStore, log zerolog.Logger) *Engine {
	return &Engine{
		levels:          levels,
		registry:        registry,
		emit:            emit,
		store:           store,
		log:             log,
		transitionDelay: defaultTransitionDelay,
		timers:          make(map[string]*Timer),
	}
}

// SetTransitionDelay overrides the pause between puzzle completion and the
// next briefing.
func (e *Engine) SetTransitionDelay(d time.Duration) {
	e.transitionDelay = d
}

// StartGame validates the level and player count, resets the room's state,
// starts the authoritative timer, and enters level_intro. Validation
// failures are reported to the requesting player only and leave the room
// untouched. Accepted from the lobby and from both terminal phases (a
// rematch restarts the machine).
func (e *Engine) StartGame(room *Room, senderID, levelID string, startIndex int) {
	if room == nil {
		return
	}

	level, ok := e.levels.GetLevel(levelID)
	if !ok {
		level, ok = e.levels.DefaultLevel()
	}
	if !ok {
		e.emit.Send(senderID, EventRoomError, RoomErrorPayload{Message: "No level selected"})
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	switch room.state.Phase {
	case PhaseLobby, PhaseVictory, PhaseDefeat:
	default:
		e.emit.Send(senderID, EventRoomError, RoomErrorPayload{Message: "Game already in progress"})
		return
	}

	players := room.connectedPlayersLocked()
	if len(players) < level.MinPlayers {
		e.emit.Send(senderID, EventRoomError, RoomErrorPayload{
			Message: fmt.Sprintf("Need at least %d players (have %d)", level.MinPlayers, len(players)),
		})
		return
	}

	if startIndex < 0 || startIndex >= len(level.Puzzles) {
		startIndex = 0
	}

	state := room.state
	state.Phase = PhaseLevelIntro
	state.LevelID = level.ID
	state.CurrentPuzzleIndex = startIndex
	state.TotalPuzzles = len(level.Puzzles)
	state.Glitch = GlitchState{Value: 0, MaxValue: level.GlitchMax, DecayRate: level.GlitchDecayRate}
	state.Timer = TimerState{TotalSeconds: level.TimerSeconds, RemainingSeconds: level.TimerSeconds}
	state.PuzzleState = nil
	state.RoleAssignments = []RoleAssignment{}
	state.StartedAt = time.Now().UnixMilli()
	state.CompletedPuzzles = []string{}
	state.ReadyPlayers = []string{}

	e.emit.Broadcast(room.code, EventGameStarted, GameStartedPayload{
		LevelID:         level.ID,
		LevelTitle:      level.Title,
		LevelStory:      level.Story,
		LevelIntroAudio: level.AudioCues.Intro,
		BackgroundMusic: level.AudioCues.Background,
		ThemeCSS:        level.ThemeCSS,
		TotalPuzzles:    len(level.Puzzles),
		TimerSeconds:    level.TimerSeconds,
	})
	e.emit.Broadcast(room.code, EventPhaseChange, PhaseChangePayload{Phase: PhaseLevelIntro, PuzzleIndex: startIndex})

	e.startTimer(room, level.TimerSeconds)

	e.log.Info().Str("room", room.code).Str("level", level.ID).Int("players", len(players)).Msg("game started")
	e.persistLocked(room)

	// The machine now waits in level_intro for the intro barrier.
}

func (e *Engine) startTimer(room *Room, totalSeconds int) {
	e.startTimerAt(room, totalSeconds, totalSeconds)
}

func (e *Engine) startTimerAt(room *Room, totalSeconds, remainingSeconds int) {
	e.tmu.Lock()
	if old, ok := e.timers[room.code]; ok {
		old.Destroy()
	}
	timer := NewTimer(totalSeconds,
		func(snapshot TimerState) { e.timerTick(room, snapshot) },
		func(snapshot TimerState) { e.timerExpired(room) },
	)
	e.timers[room.code] = timer
	e.tmu.Unlock()

	if remainingSeconds != totalSeconds {
		timer.SetRemaining(remainingSeconds)
	}
	timer.Start()
}

func (e *Engine) timerTick(room *Room, snapshot TimerState) {
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.state.Phase == PhaseVictory || room.state.Phase == PhaseDefeat || room.state.Phase == PhaseLobby {
		return
	}

	room.state.Timer = snapshot
	e.emit.Broadcast(room.code, EventTimerUpdate, TimerUpdatePayload{Timer: snapshot})

	// Corruption bleeds off once per tick while a puzzle is live.
	if g := &room.state.Glitch; g.DecayRate > 0 && g.Value > 0 && room.state.Phase == PhasePlaying {
		g.Value = max(0, g.Value-g.DecayRate)
		e.emit.Broadcast(room.code, EventGlitchUpdate, GlitchUpdatePayload{Glitch: *g})
	}
}

func (e *Engine) timerExpired(room *Room) {
	room.mu.Lock()
	defer room.mu.Unlock()
	e.defeatLocked(room, DefeatTimer)
}

// IntroComplete records one player's intro-finished signal. When every
// connected player has signaled, the room advances to the first briefing.
// Repeat signals from the same player are idempotent, and the quorum is
// recomputed against the live player count on every signal.
func (e *Engine) IntroComplete(room *Room, playerID string) {
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.state.Phase != PhaseLevelIntro {
		return
	}

	ready := room.state.markReady(playerID)
	if ready < len(room.connectedPlayersLocked()) {
		return
	}

	level, ok := e.levels.GetLevel(room.state.LevelID)
	if !ok {
		return
	}

	room.state.ReadyPlayers = []string{}
	e.startBriefingLocked(room, level, room.state.CurrentPuzzleIndex)
}

// PlayerReady records one player's briefing-ready signal and broadcasts the
// updated count. When the quorum is met the puzzle starts.
func (e *Engine) PlayerReady(room *Room, playerID string) {
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.state.Phase != PhaseBriefing {
		return
	}

	ready := room.state.markReady(playerID)
	total := len(room.connectedPlayersLocked())

	e.emit.Broadcast(room.code, EventReadyUpdate, ReadyUpdatePayload{ReadyCount: ready, TotalPlayers: total})

	if ready < total {
		return
	}

	level, ok := e.levels.GetLevel(room.state.LevelID)
	if !ok {
		return
	}

	room.state.ReadyPlayers = []string{}
	e.startPuzzleLocked(room, level, room.state.CurrentPuzzleIndex)
}

// startBriefingLocked enters the briefing phase for the given puzzle index.
// An index past the end of the level is the victory signal.
func (e *Engine) startBriefingLocked(room *Room, level *LevelConfig, puzzleIndex int) {
	puzzle := level.Puzzle(puzzleIndex)
	if puzzle == nil {
		e.victoryLocked(room)
		return
	}

	room.state.Phase = PhaseBriefing
	room.state.CurrentPuzzleIndex = puzzleIndex
	room.state.ReadyPlayers = []string{}

	e.emit.Broadcast(room.code, EventPhaseChange, PhaseChangePayload{Phase: PhaseBriefing, PuzzleIndex: puzzleIndex})
	e.emit.Broadcast(room.code, EventBriefing, BriefingPayload{
		PuzzleTitle:      puzzle.Title,
		BriefingText:     puzzle.Briefing,
		PuzzleIndex:      puzzleIndex,
		TotalPuzzles:     len(level.Puzzles),
		TotalRoomPlayers: len(room.connectedPlayersLocked()),
	})

	e.persistLocked(room)
}

// startPuzzleLocked resolves the handler, re-rolls roles, initializes puzzle
// state, and delivers one private view per connected player. A missing
// handler or failed init is a configuration error: logged, and the puzzle is
// skipped to the next briefing.
func (e *Engine) startPuzzleLocked(room *Room, level *LevelConfig, puzzleIndex int) {
	cfg := level.Puzzle(puzzleIndex)
	if cfg == nil {
		return
	}

	handler, ok := e.registry.Get(cfg.Type)
	if !ok {
		e.log.Error().Str("room", room.code).Str("type", cfg.Type).Msg("no handler for puzzle type, skipping")
		e.startBriefingLocked(room, level, puzzleIndex+1)
		return
	}

	roles := AssignRoles(room.connectedPlayerPtrsLocked(), cfg)
	room.state.RoleAssignments = roles

	players := room.connectedPlayersLocked()
	state, err := handler.Init(players, cfg)
	if err != nil {
		e.log.Error().Err(err).Str("room", room.code).Str("puzzle", cfg.ID).Msg("puzzle init failed, skipping")
		e.startBriefingLocked(room, level, puzzleIndex+1)
		return
	}

	room.state.PuzzleState = state
	room.state.Phase = PhasePlaying

	e.emit.Broadcast(room.code, EventPhaseChange, PhaseChangePayload{Phase: PhasePlaying, PuzzleIndex: puzzleIndex})
	e.emit.Broadcast(room.code, EventRolesAssigned, RolesAssignedPayload{Roles: roles})

	for _, player := range players {
		role, ok := roleFor(roles, player.ID)
		if !ok {
			continue
		}
		view := handler.PlayerView(state, player.ID, role, cfg)
		e.emit.Send(player.ID, EventPuzzleStart, PuzzleStartPayload{
			PuzzleID:    cfg.ID,
			PuzzleType:  cfg.Type,
			PuzzleTitle: cfg.Title,
			Roles:       roles,
			PlayerView:  view,
		})
	}

	e.log.Info().
		Str("room", room.code).
		Str("puzzle", cfg.ID).
		Int("index", puzzleIndex).
		Int("total", len(level.Puzzles)).
		Msg("puzzle started")

	e.persistLocked(room)
}

func roleFor(roles []RoleAssignment, playerID string) (string, bool) {
	for _, r := range roles {
		if r.PlayerID == playerID {
			return r.Role, true
		}
	}
	return "", false
}

// PuzzleAction delegates a player action to the active puzzle's handler,
// applies any returned penalty through the corruption chokepoint, redelivers
// per-player views, and advances the machine when the handler reports a win.
// A no-op outside the playing phase.
func (e *Engine) PuzzleAction(room *Room, playerID, action string, payload json.RawMessage) {
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.state.Phase != PhasePlaying || room.state.PuzzleState == nil {
		return
	}

	level, ok := e.levels.GetLevel(room.state.LevelID)
	if !ok {
		return
	}

	cfg := level.Puzzle(room.state.CurrentPuzzleIndex)
	if cfg == nil {
		return
	}

	handler, ok := e.registry.Get(cfg.Type)
	if !ok {
		return
	}

	delta := handler.HandleAction(room.state.PuzzleState, playerID, action, payload)
	if delta > 0 {
		e.addGlitchLocked(room, delta)
		if room.state.Phase != PhasePlaying {
			// Penalty saturated the meter; the room is already in defeat.
			return
		}
	}

	for _, player := range room.connectedPlayersLocked() {
		role, ok := roleFor(room.state.RoleAssignments, player.ID)
		if !ok {
			continue
		}
		view := handler.PlayerView(room.state.PuzzleState, player.ID, role, cfg)
		e.emit.Send(player.ID, EventPuzzleUpdate, PuzzleUpdatePayload{PuzzleID: cfg.ID, PlayerView: view})
	}

	e.persistLocked(room)

	if handler.CheckWin(room.state.PuzzleState) {
		e.puzzleCompleteLocked(room, level)
	}
}

// puzzleCompleteLocked records the solved puzzle, enters the transition
// pause, and schedules the advance to the next briefing or to victory.
func (e *Engine) puzzleCompleteLocked(room *Room, level *LevelConfig) {
	index := room.state.CurrentPuzzleIndex
	cfg := level.Puzzle(index)
	puzzleID := ""
	if cfg != nil {
		puzzleID = cfg.ID
		room.state.CompletedPuzzles = append(room.state.CompletedPuzzles, cfg.ID)
	}

	e.emit.Broadcast(room.code, EventPuzzleCompleted, PuzzleCompletedPayload{
		PuzzleID:     puzzleID,
		PuzzleIndex:  index,
		TotalPuzzles: len(level.Puzzles),
	})

	room.state.Phase = PhaseTransition
	e.emit.Broadcast(room.code, EventPhaseChange, PhaseChangePayload{Phase: PhaseTransition, PuzzleIndex: index})
	e.persistLocked(room)

	next := index + 1
	time.AfterFunc(e.transitionDelay, func() {
		room.mu.Lock()
		defer room.mu.Unlock()

		// Defeat may have landed during the pause.
		if room.state.Phase != PhaseTransition {
			return
		}

		if next >= len(level.Puzzles) {
			e.victoryLocked(room)
		} else {
			e.startBriefingLocked(room, level, next)
		}
	})
}

// addGlitchLocked is the single chokepoint for corruption. It clamps the
// meter at its maximum, broadcasts the new value, and fires defeat when the
// clamp is hit.
func (e *Engine) addGlitchLocked(room *Room, delta float64) {
	g := &room.state.Glitch
	g.Value = min(g.Value+delta, g.MaxValue)

	e.emit.Broadcast(room.code, EventGlitchUpdate, GlitchUpdatePayload{Glitch: *g})

	if g.Value >= g.MaxValue {
		e.defeatLocked(room, DefeatGlitch)
	}
}

// JumpToPuzzle is the operator escape hatch: a direct jump to an arbitrary
// puzzle index, bypassing the completion flow. In-flight puzzle state is
// cleared and the room re-enters through the briefing. Skipped puzzles are
// not marked completed.
func (e *Engine) JumpToPuzzle(room *Room, puzzleIndex int) {
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	level, ok := e.levels.GetLevel(room.state.LevelID)
	if !ok {
		return
	}
	if puzzleIndex < 0 || puzzleIndex >= len(level.Puzzles) {
		return
	}

	e.log.Debug().Str("room", room.code).Int("index", puzzleIndex).Msg("debug jump")

	room.state.PuzzleState = nil
	e.startBriefingLocked(room, level, puzzleIndex)
}

// Resync replays the room's current situation to one player, used after a
// reconnect so the client can rebuild its screen without waiting for the next
// broadcast.
func (e *Engine) Resync(room *Room, playerID string) {
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	state := room.state
	if state.Phase == PhaseLobby {
		return
	}

	e.emit.Send(playerID, EventPhaseChange, PhaseChangePayload{Phase: state.Phase, PuzzleIndex: state.CurrentPuzzleIndex})
	e.emit.Send(playerID, EventTimerUpdate, TimerUpdatePayload{Timer: state.Timer})
	e.emit.Send(playerID, EventGlitchUpdate, GlitchUpdatePayload{Glitch: state.Glitch})

	if state.Phase != PhasePlaying || state.PuzzleState == nil {
		return
	}

	level, ok := e.levels.GetLevel(state.LevelID)
	if !ok {
		return
	}
	cfg := level.Puzzle(state.CurrentPuzzleIndex)
	if cfg == nil {
		return
	}
	handler, ok := e.registry.Get(cfg.Type)
	if !ok {
		return
	}
	role, ok := roleFor(state.RoleAssignments, playerID)
	if !ok {
		return
	}

	view := handler.PlayerView(state.PuzzleState, playerID, role, cfg)
	e.emit.Send(playerID, EventPuzzleStart, PuzzleStartPayload{
		PuzzleID:    cfg.ID,
		PuzzleType:  cfg.Type,
		PuzzleTitle: cfg.Title,
		Roles:       state.RoleAssignments,
		PlayerView:  view,
	})
}

// AllPlayerViews returns one view per distinct role of the active puzzle,
// for the debug overlay.
func (e *Engine) AllPlayerViews(room *Room) []PlayerView {
	if room == nil {
		return nil
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.state.PuzzleState == nil {
		return nil
	}

	level, ok := e.levels.GetLevel(room.state.LevelID)
	if !ok {
		return nil
	}
	cfg := level.Puzzle(room.state.CurrentPuzzleIndex)
	if cfg == nil {
		return nil
	}
	handler, ok := e.registry.Get(cfg.Type)
	if !ok {
		return nil
	}

	seen := make(map[string]bool)
	views := make([]PlayerView, 0, len(room.state.RoleAssignments))
	for _, role := range room.state.RoleAssignments {
		if seen[role.Role] {
			continue
		}
		seen[role.Role] = true
		views = append(views, handler.PlayerView(room.state.PuzzleState, role.PlayerID, role.Role, cfg))
	}
	return views
}

func (e *Engine) victoryLocked(room *Room) {
	room.state.Phase = PhaseVictory
	e.stopTimer(room.code)

	elapsed := 0
	if room.state.StartedAt > 0 {
		elapsed = int(time.Now().UnixMilli()-room.state.StartedAt) / 1000
	}

	e.emit.Broadcast(room.code, EventPhaseChange, PhaseChangePayload{
		Phase:       PhaseVictory,
		PuzzleIndex: room.state.CurrentPuzzleIndex,
	})
	e.emit.Broadcast(room.code, EventVictory, VictoryPayload{
		ElapsedSeconds:   elapsed,
		GlitchFinal:      room.state.Glitch.Value,
		PuzzlesCompleted: len(room.state.CompletedPuzzles),
	})

	e.log.Info().Str("room", room.code).Int("elapsed", elapsed).Msg("victory")
	e.finishLocked(room, PhaseVictory, "", elapsed)
}

func (e *Engine) defeatLocked(room *Room, reason DefeatReason) {
	if room.state.Phase == PhaseDefeat || room.state.Phase == PhaseVictory {
		return
	}

	room.state.Phase = PhaseDefeat
	e.stopTimer(room.code)

	e.emit.Broadcast(room.code, EventPhaseChange, PhaseChangePayload{
		Phase:       PhaseDefeat,
		PuzzleIndex: room.state.CurrentPuzzleIndex,
	})
	e.emit.Broadcast(room.code, EventDefeat, DefeatPayload{
		Reason:             reason,
		PuzzlesCompleted:   len(room.state.CompletedPuzzles),
		PuzzleReachedIndex: room.state.CurrentPuzzleIndex,
	})

	elapsed := 0
	if room.state.StartedAt > 0 {
		elapsed = int(time.Now().UnixMilli()-room.state.StartedAt) / 1000
	}

	e.log.Info().Str("room", room.code).Str("reason", string(reason)).Msg("defeat")
	e.finishLocked(room, PhaseDefeat, reason, elapsed)
}

// finishLocked is the shared terminal path: both outcomes release the timer
// and record the result, so there is exactly one cleanup route.
func (e *Engine) finishLocked(room *Room, outcome Phase, reason DefeatReason, elapsed int) {
	e.releaseTimer(room.code)

	if e.store == nil {
		return
	}

	names := make([]string, 0, len(room.players))
	for _, p := range room.players {
		names = append(names, p.Name)
	}

	result := GameResult{
		RoomCode:         room.code,
		LevelID:          room.state.LevelID,
		Outcome:          outcome,
		Reason:           reason,
		ElapsedSeconds:   elapsed,
		GlitchFinal:      room.state.Glitch.Value,
		PuzzlesCompleted: len(room.state.CompletedPuzzles),
		PlayerNames:      names,
		PlayedAt:         time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.store.SaveResult(ctx, result); err != nil {
			e.log.Warn().Err(err).Str("room", result.RoomCode).Msg("failed to record game result")
		}
	}()
}

func (e *Engine) stopTimer(roomCode string) {
	e.tmu.Lock()
	defer e.tmu.Unlock()

	if timer, ok := e.timers[roomCode]; ok {
		timer.Stop()
	}
}

func (e *Engine) releaseTimer(roomCode string) {
	e.tmu.Lock()
	defer e.tmu.Unlock()

	if timer, ok := e.timers[roomCode]; ok {
		timer.Destroy()
		delete(e.timers, roomCode)
	}
}

// ReleaseRoom tears down per-room engine resources. Required on room
// destruction so no periodic work leaks.
func (e *Engine) ReleaseRoom(roomCode string) {
	e.releaseTimer(roomCode)

	if e.store != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := e.store.DeleteSnapshot(ctx, roomCode); err != nil {
				e.log.Debug().Err(err).Str("room", roomCode).Msg("failed to delete room snapshot")
			}
		}()
	}
}

// ReviveRoom rebuilds a room from its persisted snapshot, used when a player
// asks to join a code the directory no longer holds (after a restart or a
// reap). The countdown resumes from the snapshot's remaining time. Returns
// false when persistence is off or no usable snapshot exists, in which case
// the join fails as a normal unknown room.
func (e *Engine) ReviveRoom(dir *Directory, roomCode string) bool {
	if e.store == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snapshot, err := e.store.LoadSnapshot(ctx, roomCode)
	if err != nil {
		e.log.Debug().Err(err).Str("room", roomCode).Msg("no snapshot to revive room from")
		return false
	}

	room, err := dir.Revive(roomCode, snapshot, e.registry)
	if err != nil {
		e.log.Warn().Err(err).Str("room", roomCode).Msg("failed to revive room from snapshot")
		return false
	}

	state := room.StateCopy()
	switch state.Phase {
	case PhaseLevelIntro, PhaseBriefing, PhasePlaying, PhaseTransition:
		if state.Timer.RemainingSeconds > 0 {
			e.startTimerAt(room, state.Timer.TotalSeconds, state.Timer.RemainingSeconds)
		}
	}

	e.log.Info().Str("room", roomCode).Str("phase", string(state.Phase)).Msg("room revived")
	return true
}

// StartSnapshotPruner deletes snapshots that have outlived the given age, on
// half that cadence to match the room reaper, so rows for rooms that will
// never be revived do not accumulate. No-op without a store.
func (e *Engine) StartSnapshotPruner(olderThan time.Duration) {
	if e.store == nil || olderThan <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(olderThan / 2)
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			pruned, err := e.store.PruneSnapshots(ctx, olderThan)
			cancel()

			if err != nil {
				e.log.Warn().Err(err).Msg("failed to prune stale snapshots")
				continue
			}
			if pruned > 0 {
				e.log.Info().Int64("rows", pruned).Msg("pruned stale snapshots")
			}
		}
	}()
}

// persistLocked snapshots the room's state, best-effort. The marshal happens
// under the room lock; the write does not.
func (e *Engine) persistLocked(room *Room) {
	if e.store == nil {
		return
	}

	raw, err := json.Marshal(room.state)
	if err != nil {
		e.log.Warn().Err(err).Str("room", room.code).Msg("failed to marshal state snapshot")
		return
	}

	code := room.code
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.store.SaveSnapshot(ctx, code, raw); err != nil {
			e.log.Debug().Err(err).Str("room", code).Msg("failed to save state snapshot")
		}
	}()
}
