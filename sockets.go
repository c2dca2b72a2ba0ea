/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"github.com/Seednode/puzzlebox/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// envelope is the wire frame for every message in both directions.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan outEnvelope

	id       string
	roomCode string
	debug    bool
}

// Sockets owns every live connection and implements game.Emitter. It keeps
// its own room subscription index so the engine can broadcast while holding a
// room's lock without ever touching this mutex ordering in reverse.
type Sockets struct {
	mu    sync.Mutex
	conns map[string]*wsClient
	rooms map[string]map[*wsClient]bool

	directory *game.Directory
	engine    *game.Engine
	log       zerolog.Logger
}

func newSockets(directory *game.Directory, log zerolog.Logger) *Sockets {
	return &Sockets{
		conns:     make(map[string]*wsClient),
		rooms:     make(map[string]map[*wsClient]bool),
		directory: directory,
		log:       log,
	}
}

// setEngine breaks the construction cycle: the engine needs an Emitter and
// the socket layer needs the engine.
func (s *Sockets) setEngine(engine *game.Engine) {
	s.engine = engine
}

// Broadcast fans an event out to every connection subscribed to a room. Slow
// consumers are dropped rather than blocking the room.
func (s *Sockets) Broadcast(roomCode, event string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.rooms[roomCode] {
		select {
		case client.send <- outEnvelope{Event: event, Data: payload}:
		default:
			s.dropLocked(client)
		}
	}
}

// Send routes an event to exactly one player's connection.
func (s *Sockets) Send(playerID, event string, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, ok := s.conns[playerID]
	if !ok {
		return
	}

	select {
	case client.send <- outEnvelope{Event: event, Data: payload}:
	default:
		s.dropLocked(client)
	}
}

func (s *Sockets) dropLocked(client *wsClient) {
	delete(s.conns, client.id)
	if client.roomCode != "" {
		delete(s.rooms[client.roomCode], client)
	}
	close(client.send)
}

func (s *Sockets) subscribe(client *wsClient, roomCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if client.roomCode != "" {
		delete(s.rooms[client.roomCode], client)
	}
	client.roomCode = roomCode

	if _, ok := s.rooms[roomCode]; !ok {
		s.rooms[roomCode] = make(map[*wsClient]bool)
	}
	s.rooms[roomCode][client] = true
}

func (s *Sockets) unsubscribe(client *wsClient) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if client.roomCode != "" {
		delete(s.rooms[client.roomCode], client)
		if len(s.rooms[client.roomCode]) == 0 {
			delete(s.rooms, client.roomCode)
		}
	}
	client.roomCode = ""
}

// rebind updates the connection index after a reconnect-by-name, which
// reuses the old roster entry under the new connection id.
func (s *Sockets) rebind(client *wsClient, playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if playerID != client.id {
		delete(s.conns, client.id)
		client.id = playerID
		s.conns[playerID] = client
	}
}

// serveWS upgrades a connection and runs the read loop until it drops.
func (s *Sockets) serveWS(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Debug().Err(err).Str("remote", realIP(r)).Msg("websocket upgrade failed")
			return
		}

		client := &wsClient{
			conn: conn,
			send: make(chan outEnvelope, 32),
			id:   uuid.NewString(),
		}

		s.mu.Lock()
		s.conns[client.id] = client
		s.mu.Unlock()

		s.log.Debug().Str("conn", client.id).Str("remote", realIP(r)).Msg("connection opened")

		go client.writePump()
		s.readPump(client)
	}
}

func (c *wsClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (s *Sockets) readPump(client *wsClient) {
	defer s.disconnect(client)

	for {
		var msg envelope
		if err := client.conn.ReadJSON(&msg); err != nil {
			return
		}
		s.dispatch(client, msg)
	}
}

// disconnect soft-removes the player: the roster entry stays so they can
// reconnect by name, but the connection and its subscriptions are gone.
func (s *Sockets) disconnect(client *wsClient) {
	_ = client.conn.Close()

	s.mu.Lock()
	if _, ok := s.conns[client.id]; ok {
		delete(s.conns, client.id)
		close(client.send)
	}
	roomCode := client.roomCode
	if roomCode != "" {
		delete(s.rooms[roomCode], client)
	}
	s.mu.Unlock()

	if roomCode == "" {
		return
	}

	room := s.directory.SetConnected(roomCode, client.id, false)
	if room != nil {
		s.Broadcast(roomCode, game.EventPlayerList, game.PlayerListPayload{Players: room.Players()})
	}

	s.log.Debug().Str("conn", client.id).Str("room", roomCode).Msg("connection closed")
}

type createRoomRequest struct {
	PlayerName string `json:"playerName"`
}

type joinRoomRequest struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type startGameRequest struct {
	LevelID    string `json:"levelId"`
	StartIndex int    `json:"startIndex"`
}

type puzzleActionRequest struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type debugToggleRequest struct {
	Enabled bool `json:"enabled"`
}

type debugJumpRequest struct {
	PuzzleIndex int `json:"puzzleIndex"`
}

type roomCreatedPayload struct {
	RoomCode string        `json:"roomCode"`
	PlayerID string        `json:"playerId"`
	Players  []game.Player `json:"players"`
}

type roomJoinedPayload struct {
	RoomCode string        `json:"roomCode"`
	PlayerID string        `json:"playerId"`
	IsHost   bool          `json:"isHost"`
	Players  []game.Player `json:"players"`
}

func (s *Sockets) dispatch(client *wsClient, msg envelope) {
	switch msg.Event {
	case game.EventCreateRoom:
		var req createRoomRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil || req.PlayerName == "" {
			s.Send(client.id, game.EventRoomError, game.RoomErrorPayload{Message: "A player name is required"})
			return
		}

		room := s.directory.Create(client.id, req.PlayerName)
		s.subscribe(client, room.Code())

		s.Send(client.id, game.EventRoomCreated, roomCreatedPayload{
			RoomCode: room.Code(),
			PlayerID: client.id,
			Players:  room.Players(),
		})

	case game.EventJoinRoom:
		var req joinRoomRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil || req.PlayerName == "" || req.RoomCode == "" {
			s.Send(client.id, game.EventRoomError, game.RoomErrorPayload{Message: "A room code and player name are required"})
			return
		}

		room, player, err := s.directory.Join(req.RoomCode, client.id, req.PlayerName)
		if errors.Is(err, game.ErrRoomNotFound) && s.engine.ReviveRoom(s.directory, req.RoomCode) {
			// The room only existed as a persisted snapshot; it is back now
			// and the join retries against its restored roster.
			room, player, err = s.directory.Join(req.RoomCode, client.id, req.PlayerName)
		}
		if err != nil {
			s.Send(client.id, game.EventRoomError, game.RoomErrorPayload{Message: joinErrorMessage(err)})
			return
		}

		// Reconnection reuses the previous roster entry, which may carry a
		// different id than this connection started with.
		s.rebind(client, player.ID)
		s.subscribe(client, room.Code())

		s.Send(client.id, game.EventRoomJoined, roomJoinedPayload{
			RoomCode: room.Code(),
			PlayerID: player.ID,
			IsHost:   player.IsHost,
			Players:  room.Players(),
		})
		s.Broadcast(room.Code(), game.EventPlayerList, game.PlayerListPayload{Players: room.Players()})

		s.engine.Resync(room, player.ID)

	case game.EventLeaveRoom:
		roomCode := client.roomCode
		if roomCode == "" {
			return
		}

		s.unsubscribe(client)

		room, destroyed := s.directory.Leave(roomCode, client.id)
		if destroyed {
			s.engine.ReleaseRoom(roomCode)
			return
		}
		if room != nil {
			s.Broadcast(roomCode, game.EventPlayerList, game.PlayerListPayload{Players: room.Players()})
		}

	case game.EventStartGame:
		room, ok := s.directory.Get(client.roomCode)
		if !ok {
			return
		}
		if !room.IsHost(client.id) {
			s.Send(client.id, game.EventRoomError, game.RoomErrorPayload{Message: "Only the host can start the game"})
			return
		}

		var req startGameRequest
		_ = json.Unmarshal(msg.Data, &req)

		s.engine.StartGame(room, client.id, req.LevelID, req.StartIndex)

	case game.EventIntroComplete:
		if room, ok := s.directory.Get(client.roomCode); ok {
			s.engine.IntroComplete(room, client.id)
		}

	case game.EventPlayerReady:
		if room, ok := s.directory.Get(client.roomCode); ok {
			s.engine.PlayerReady(room, client.id)
		}

	case game.EventPuzzleAction:
		var req puzzleActionRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil || req.Action == "" {
			return
		}
		if room, ok := s.directory.Get(client.roomCode); ok {
			s.engine.PuzzleAction(room, client.id, req.Action, req.Payload)
			s.refreshDebug(room)
		}

	case game.EventToggleDebug:
		var req debugToggleRequest
		_ = json.Unmarshal(msg.Data, &req)

		client.debug = req.Enabled

		var views []game.PlayerView
		if req.Enabled {
			if room, ok := s.directory.Get(client.roomCode); ok {
				views = s.engine.AllPlayerViews(room)
			}
		}
		s.Send(client.id, game.EventDebugUpdate, game.DebugUpdatePayload{Enabled: req.Enabled, AllViews: views})

	case game.EventJumpToPuzzle:
		var req debugJumpRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			return
		}
		if room, ok := s.directory.Get(client.roomCode); ok {
			s.engine.JumpToPuzzle(room, req.PuzzleIndex)
			s.refreshDebug(room)
		}

	default:
		// ignore unknown events
	}
}

// refreshDebug re-sends the full per-role view set to any debug-enabled
// connections in the room, so the overlay tracks puzzle state as it changes.
func (s *Sockets) refreshDebug(room *game.Room) {
	s.mu.Lock()
	var targets []string
	for client := range s.rooms[room.Code()] {
		if client.debug {
			targets = append(targets, client.id)
		}
	}
	s.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	views := s.engine.AllPlayerViews(room)
	for _, id := range targets {
		s.Send(id, game.EventDebugUpdate, game.DebugUpdatePayload{Enabled: true, AllViews: views})
	}
}

func joinErrorMessage(err error) string {
	switch err {
	case game.ErrRoomNotFound:
		return "Room not found"
	case game.ErrGameInProgress:
		return "That game has already started"
	case game.ErrRoomFull:
		return "That room is full"
	case game.ErrNameTaken:
		return "That name is already taken"
	}
	return "Unable to join room"
}
