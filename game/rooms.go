/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrGameInProgress = errors.New("game already in progress")
	ErrRoomFull       = errors.New("room is full")
	ErrNameTaken      = errors.New("name already taken")
)

// Memorable room codes, with a random fallback when the word pool is
// exhausted. Ambiguous characters are excluded from the fallback alphabet.
var codeWords = []string{
	"zeus", "hera", "ares", "iris", "echo",
	"gaia", "nyx", "eos", "pan", "fury",
	"muse", "fate", "dawn", "bolt", "myth",
	"lyre", "helm", "veil", "orb", "wisp",
}

const codeAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"

// Directory owns every active room. It is the only component that creates or
// destroys rooms; the engine receives room references and mutates their
// GameState in place.
type Directory struct {
	mu    sync.Mutex
	rooms map[string]*Room

	maxPlayers  int
	idleTimeout time.Duration
	log         zerolog.Logger

	// onReap lets the engine release per-room resources (timers) when the
	// reaper evicts an idle room.
	onReap func(roomCode string)
}

func NewDirectory(maxPlayers int, idleTimeout time.Duration, log zerolog.Logger) *Directory {
	return &Directory{
		rooms:       make(map[string]*Room),
		maxPlayers:  maxPlayers,
		idleTimeout: idleTimeout,
		log:         log,
	}
}

// OnReap registers a callback invoked with the room code whenever the idle
// reaper destroys a room. Must be set before StartReaper.
func (d *Directory) OnReap(fn func(roomCode string)) {
	d.onReap = fn
}

// StartReaper begins evicting rooms idle longer than the directory's
// timeout. No-op when the timeout is zero.
func (d *Directory) StartReaper() {
	if d.idleTimeout <= 0 {
		return
	}
	go d.reaperLoop()
}

func (d *Directory) reaperLoop() {
	ticker := time.NewTicker(d.idleTimeout / 2)
	for range ticker.C {
		cutoff := time.Now().Add(-d.idleTimeout)

		var reaped []string

		d.mu.Lock()
		for code, room := range d.rooms {
			room.mu.Lock()
			last := room.lastActive
			room.mu.Unlock()

			if last.Before(cutoff) {
				delete(d.rooms, code)
				reaped = append(reaped, code)
			}
		}
		d.mu.Unlock()

		for _, code := range reaped {
			d.log.Info().Str("room", code).Msg("reaped idle room")
			if d.onReap != nil {
				d.onReap(code)
			}
		}
	}
}

func (d *Directory) newCodeLocked() string {
	for i := 0; i < 10; i++ {
		word := codeWords[randInt(len(codeWords))]
		if _, exists := d.rooms[word]; !exists {
			return word
		}
	}

	for {
		buf := make([]byte, 4)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, 4)
		for i := range out {
			out[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
		}
		code := string(out)
		if _, exists := d.rooms[code]; !exists {
			return code
		}
	}
}

func randInt(n int) int {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0
	}
	return int(b[0]) % n
}

// Create opens a new room hosted by the given player.
func (d *Directory) Create(hostID, hostName string) *Room {
	d.mu.Lock()
	defer d.mu.Unlock()

	code := d.newCodeLocked()
	now := time.Now()

	room := &Room{
		code:   code,
		hostID: hostID,
		players: []*Player{{
			ID:        hostID,
			Name:      hostName,
			RoomCode:  code,
			IsHost:    true,
			Connected: true,
		}},
		state:      newGameState(),
		createdAt:  now,
		lastActive: now,
	}

	d.rooms[code] = room
	d.log.Info().Str("room", code).Str("host", hostName).Msg("room created")
	return room
}

// Join adds a player to a room. A disconnected player with the same name is
// reconnected instead: their record is rebound to the new connection id,
// keeping role and host status.
func (d *Directory) Join(roomCode, playerID, playerName string) (*Room, *Player, error) {
	d.mu.Lock()
	room, ok := d.rooms[roomCode]
	d.mu.Unlock()
	if !ok {
		return nil, nil, ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	room.lastActive = time.Now()

	// Reconnection by name, allowed in any phase. The roster entry and any
	// live role assignment are rebound to the new connection id.
	for _, p := range room.players {
		if p.Name == playerName && !p.Connected {
			if room.hostID == p.ID {
				room.hostID = playerID
			}
			for i := range room.state.RoleAssignments {
				if room.state.RoleAssignments[i].PlayerID == p.ID {
					room.state.RoleAssignments[i].PlayerID = playerID
				}
			}
			p.ID = playerID
			p.Connected = true
			d.log.Info().Str("room", roomCode).Str("player", playerName).Msg("player reconnected")
			return room, p, nil
		}
	}

	if room.state.Phase != PhaseLobby {
		return nil, nil, ErrGameInProgress
	}

	connected := 0
	for _, p := range room.players {
		if p.Name == playerName {
			return nil, nil, ErrNameTaken
		}
		if p.Connected {
			connected++
		}
	}
	if d.maxPlayers > 0 && connected >= d.maxPlayers {
		return nil, nil, ErrRoomFull
	}

	player := &Player{
		ID:        playerID,
		Name:      playerName,
		RoomCode:  roomCode,
		Connected: true,
	}
	room.players = append(room.players, player)

	d.log.Info().Str("room", roomCode).Str("player", playerName).Msg("player joined")
	return room, player, nil
}

// Leave removes a player outright. The host flag moves to the next player
// still present; the room is destroyed once nobody is left.
func (d *Directory) Leave(roomCode, playerID string) (*Room, bool) {
	d.mu.Lock()
	room, ok := d.rooms[roomCode]
	d.mu.Unlock()
	if !ok {
		return nil, false
	}

	room.mu.Lock()

	dst := room.players[:0]
	for _, p := range room.players {
		if p.ID == playerID {
			continue
		}
		dst = append(dst, p)
	}
	room.players = dst
	room.lastActive = time.Now()

	if len(room.players) == 0 {
		room.mu.Unlock()

		d.mu.Lock()
		delete(d.rooms, roomCode)
		d.mu.Unlock()

		d.log.Info().Str("room", roomCode).Msg("room destroyed (empty)")
		return nil, true
	}

	if room.hostID == playerID {
		room.players[0].IsHost = true
		room.hostID = room.players[0].ID
		d.log.Info().Str("room", roomCode).Str("host", room.players[0].Name).Msg("host reassigned")
	}

	room.mu.Unlock()
	return room, false
}

// SetConnected soft-removes (or restores) a player. Disconnected players
// stay on the roster so they can reconnect by name.
func (d *Directory) SetConnected(roomCode, playerID string, connected bool) *Room {
	d.mu.Lock()
	room, ok := d.rooms[roomCode]
	d.mu.Unlock()
	if !ok {
		return nil
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if p := room.playerLocked(playerID); p != nil {
		p.Connected = connected
		room.lastActive = time.Now()
	}
	return room
}

// Get resolves a room by code.
func (d *Directory) Get(roomCode string) (*Room, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[roomCode]
	return room, ok
}

// PlayerRoom finds the room containing the given player id, if any.
func (d *Directory) PlayerRoom(playerID string) (*Room, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, room := range d.rooms {
		room.mu.Lock()
		p := room.playerLocked(playerID)
		room.mu.Unlock()
		if p != nil {
			return room, true
		}
	}
	return nil, false
}

// Revive rebuilds a lost room from a persisted snapshot, decoding the opaque
// puzzle data through the registry. Everyone named in the snapshot's role
// assignments is seated as disconnected, so the normal reconnect-by-name path
// rebinds them as they return; the first seat holds the host flag until then.
func (d *Directory) Revive(roomCode string, snapshot []byte, reg *Registry) (*Room, error) {
	state, err := DecodeGameState(snapshot, reg)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	room := &Room{
		code:       roomCode,
		state:      state,
		createdAt:  now,
		lastActive: now,
	}

	seen := make(map[string]bool)
	for _, ra := range state.RoleAssignments {
		if ra.PlayerName == "" || seen[ra.PlayerName] {
			continue
		}
		seen[ra.PlayerName] = true
		room.players = append(room.players, &Player{
			ID:       ra.PlayerID,
			Name:     ra.PlayerName,
			RoomCode: roomCode,
			Role:     ra.Role,
		})
	}
	if len(room.players) == 0 {
		return nil, fmt.Errorf("snapshot for room %q seats no players", roomCode)
	}

	room.hostID = room.players[0].ID
	room.players[0].IsHost = true

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.rooms[roomCode]; exists {
		return nil, fmt.Errorf("room %q is already active", roomCode)
	}
	d.rooms[roomCode] = room

	d.log.Info().Str("room", roomCode).Int("seats", len(room.players)).Msg("room revived from snapshot")
	return room, nil
}

// Len reports the number of active rooms.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rooms)
}
