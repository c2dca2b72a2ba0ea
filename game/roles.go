/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "math/rand"

// AssignRoles distributes the puzzle's roles across the given players. The
// player list is shuffled fresh on every call, so roles re-roll per puzzle.
// Fixed-count roles consume players first, clamped to the remaining pool; a
// single "remaining" role then absorbs everyone left. With more fixed
// capacity than players, trailing roles simply stay unfilled.
//
// As a side effect the assigned role name is written back onto each player
// record for display purposes.
func AssignRoles(players []*Player, cfg *PuzzleConfig) []RoleAssignment {
	return assignRolesRand(rand.Intn, players, cfg)
}

// assignRolesRand takes the random source explicitly so tests can pin the
// shuffle.
func assignRolesRand(intn func(int) int, players []*Player, cfg *PuzzleConfig) []RoleAssignment {
	shuffled := make([]*Player, len(players))
	copy(shuffled, players)

	// Fisher-Yates
	for i := len(shuffled) - 1; i > 0; i-- {
		j := intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	assignments := make([]RoleAssignment, 0, len(players))
	next := 0

	assign := func(p *Player, role string) {
		assignments = append(assignments, RoleAssignment{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Role:       role,
		})
		p.Role = role
	}

	for _, def := range cfg.Layout.Roles {
		if def.Count.Remaining() {
			continue
		}
		count := def.Count.Fixed()
		for i := 0; i < count && next < len(shuffled); i++ {
			assign(shuffled[next], def.Name)
			next++
		}
	}

	for _, def := range cfg.Layout.Roles {
		if !def.Count.Remaining() {
			continue
		}
		for next < len(shuffled) {
			assign(shuffled[next], def.Name)
			next++
		}
		break
	}

	return assignments
}
