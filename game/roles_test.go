/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identityShuffle pins the Fisher-Yates pass to a no-op, so assignments
// follow input order.
func identityShuffle(n int) int {
	return n - 1
}

func testPlayers(names ...string) []*Player {
	out := make([]*Player, 0, len(names))
	for i, name := range names {
		out = append(out, &Player{
			ID:        string(rune('a' + i)),
			Name:      name,
			Connected: true,
		})
	}
	return out
}

func TestAssignRolesFixedThenRemaining(t *testing.T) {
	cfg := &PuzzleConfig{
		Layout: PuzzleLayout{
			Roles: []PuzzleRole{
				{Name: "Caller", Count: "1"},
				{Name: "Catcher", Count: CountRemaining},
			},
		},
	}

	players := testPlayers("ann", "ben", "cam", "dee")
	assignments := assignRolesRand(identityShuffle, players, cfg)

	require.Len(t, assignments, 4)
	assert.Equal(t, "Caller", assignments[0].Role)
	for _, a := range assignments[1:] {
		assert.Equal(t, "Catcher", a.Role)
	}
}

func TestAssignRolesWritesBackToPlayers(t *testing.T) {
	cfg := &PuzzleConfig{
		Layout: PuzzleLayout{
			Roles: []PuzzleRole{
				{Name: "Keyholder", Count: "1"},
				{Name: "Scribe", Count: CountRemaining},
			},
		},
	}

	players := testPlayers("ann", "ben")
	assignRolesRand(identityShuffle, players, cfg)

	assert.Equal(t, "Keyholder", players[0].Role)
	assert.Equal(t, "Scribe", players[1].Role)
}

func TestAssignRolesClampsFixedCounts(t *testing.T) {
	cfg := &PuzzleConfig{
		Layout: PuzzleLayout{
			Roles: []PuzzleRole{
				{Name: "Conductor", Count: "3"},
				{Name: "Performer", Count: CountRemaining},
			},
		},
	}

	// Fewer players than fixed capacity: everyone lands in the fixed role
	// and the remaining role stays empty.
	players := testPlayers("ann", "ben")
	assignments := assignRolesRand(identityShuffle, players, cfg)

	require.Len(t, assignments, 2)
	for _, a := range assignments {
		assert.Equal(t, "Conductor", a.Role)
	}
}

func TestAssignRolesOnlyFixedLeavesExtrasUnassigned(t *testing.T) {
	cfg := &PuzzleConfig{
		Layout: PuzzleLayout{
			Roles: []PuzzleRole{
				{Name: "Operator", Count: "2"},
			},
		},
	}

	players := testPlayers("ann", "ben", "cam")
	assignments := assignRolesRand(identityShuffle, players, cfg)

	assert.Len(t, assignments, 2)
}

func TestAssignRolesReshufflesPerCall(t *testing.T) {
	cfg := &PuzzleConfig{
		Layout: PuzzleLayout{
			Roles: []PuzzleRole{
				{Name: "Caller", Count: "1"},
				{Name: "Catcher", Count: CountRemaining},
			},
		},
	}

	// Always swapping with index 0 reverses the natural order, so the Caller
	// must differ from the identity-shuffle pick.
	players := testPlayers("ann", "ben", "cam")
	reversed := assignRolesRand(func(int) int { return 0 }, players, cfg)
	natural := assignRolesRand(identityShuffle, players, cfg)

	assert.NotEqual(t, natural[0].PlayerID, reversed[0].PlayerID)
}

func TestRoleCountParsing(t *testing.T) {
	assert.True(t, CountRemaining.Remaining())
	assert.Equal(t, 0, CountRemaining.Fixed())
	assert.Equal(t, 3, RoleCount("3").Fixed())
	assert.Equal(t, 0, RoleCount("-1").Fixed())
	assert.Equal(t, 0, RoleCount("junk").Fixed())
}
