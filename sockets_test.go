/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/puzzlebox/game"
)

type stubResolver struct{}

func (stubResolver) GetLevel(id string) (*game.LevelConfig, bool) { return nil, false }
func (stubResolver) DefaultLevel() (*game.LevelConfig, bool)      { return nil, false }

func TestRefreshDebugTargetsDebugConnectionsOnly(t *testing.T) {
	directory := game.NewDirectory(8, 0, zerolog.Nop())
	s := newSockets(directory, zerolog.Nop())
	s.setEngine(game.NewEngine(stubResolver{}, game.NewRegistry(zerolog.Nop()), s, nil, zerolog.Nop()))

	room := directory.Create("host", "ann")

	watcher := &wsClient{send: make(chan outEnvelope, 4), id: "host", debug: true}
	player := &wsClient{send: make(chan outEnvelope, 4), id: "p2"}
	s.conns[watcher.id] = watcher
	s.conns[player.id] = player
	s.subscribe(watcher, room.Code())
	s.subscribe(player, room.Code())

	s.refreshDebug(room)

	require.Len(t, watcher.send, 1)
	msg := <-watcher.send
	assert.Equal(t, game.EventDebugUpdate, msg.Event)

	// Connections without the overlay enabled get nothing.
	assert.Empty(t, player.send)
}
