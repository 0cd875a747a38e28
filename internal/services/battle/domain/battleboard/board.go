// Package battleboard defines the tactical hex grid battles are fought on and
// the terrain-specific elevation and hazard layouts for each masterboard
// terrain.
package battleboard

import (
	"fmt"

	"github.com/louisbranch/warlord/internal/services/battle/domain/masterboard"
)

// Board is the immutable tactical layout for one terrain.
type Board struct {
	terrain    masterboard.Terrain
	elevations map[int]int
	hazards    map[int]Hazard
	// upper hex -> lower hex -> hazard
	edgeHazards   map[int]map[int]EdgeHazard
	doubleWallHex int
}

// Terrain returns the masterboard terrain this board belongs to.
func (b *Board) Terrain() masterboard.Terrain {
	return b.terrain
}

// Elevation returns the height of hex, zero when unset.
func (b *Board) Elevation(hex int) int {
	return b.elevations[hex]
}

// Hazard returns the hazard on hex, HazardNone when unset.
func (b *Board) Hazard(hex int) Hazard {
	return b.hazards[hex]
}

// EdgeHazard returns the hazard crossed when moving from lower up into upper.
// The lookup is directional; swapping the arguments asks about the other face.
func (b *Board) EdgeHazard(lower, upper int) EdgeHazard {
	return b.edgeHazards[upper][lower]
}

// EdgeHazardBetween returns the hazard on the shared edge of two hexes in
// whichever direction it is declared.
func (b *Board) EdgeHazardBetween(a, c int) EdgeHazard {
	if hazard := b.EdgeHazard(a, c); hazard != EdgeNone {
		return hazard
	}
	return b.EdgeHazard(c, a)
}

// EdgeHazards returns the hazards declared on the lower faces of upper.
func (b *Board) EdgeHazards(upper int) map[int]EdgeHazard {
	out := make(map[int]EdgeHazard, len(b.edgeHazards[upper]))
	for lower, hazard := range b.edgeHazards[upper] {
		out[lower] = hazard
	}
	return out
}

// DoubleWallHex returns the hex enclosed by two rings of walls, if any.
func (b *Board) DoubleWallHex() (int, bool) {
	return b.doubleWallHex, b.doubleWallHex != 0
}

// findDoubleWallHex returns the upper side of a wall whose lower side is itself
// the upper side of another wall.
func findDoubleWallHex(edgeHazards map[int]map[int]EdgeHazard) (int, error) {
	found := 0
	for upper, lowers := range edgeHazards {
		for lower, hazard := range lowers {
			if hazard != EdgeWall || !hasWallBelow(edgeHazards, lower) {
				continue
			}
			if found != 0 && found != upper {
				return 0, fmt.Errorf("hexes %d and %d are both double walled", found, upper)
			}
			found = upper
		}
	}
	return found, nil
}

func hasWallBelow(edgeHazards map[int]map[int]EdgeHazard, upper int) bool {
	for _, hazard := range edgeHazards[upper] {
		if hazard == EdgeWall {
			return true
		}
	}
	return false
}
