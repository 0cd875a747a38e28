package battleboard

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownHex indicates a tactical hex id that is not on the battle board.
var ErrUnknownHex = errors.New("unknown battle hex")

// Removed marks a creature that has left the battlefield.
const Removed = 0

// Entry pseudo-hexes sit off the board, one per side of the grid. Creatures
// waiting to enter a battle stand on them.
const (
	EntryTop         = 36
	EntryBottom      = 37
	EntryLowerRight  = 38
	EntryUpperLeft   = 39
	EntryLowerLeft   = 40
	EntryUpperRight  = 41
	firstEntryHex    = EntryTop
	lastEntryHex     = EntryUpperRight
	directionCount   = 6
	missingNeighbour = 0
)

var boardHexes = []int{
	2, 3, 4,
	7, 8, 9, 10,
	13, 14, 15, 16, 17,
	18, 19, 20, 21, 22, 23,
	25, 26, 27, 28, 29,
	31, 32, 33, 34,
}

var entryAdjacency = map[int][]int{
	EntryTop:        {2, 3, 4},
	EntryBottom:     {31, 32, 33, 34},
	EntryLowerRight: {23, 29, 34},
	EntryUpperLeft:  {2, 7, 13, 18},
	EntryLowerLeft:  {18, 25, 31},
	EntryUpperRight: {4, 10, 17, 23},
}

// neighbours holds, for every board hex, the neighbour in each direction or
// missingNeighbour when the direction leaves the board.
var neighbours = buildNeighbours()

var adjacency = buildAdjacency()

// offsets returns the id deltas for the six directions around a hex, starting
// above-left and turning clockwise. Rows alternate their horizontal shift. The
// three exceptions stop rows from wrapping into each other.
func offsets(hex int) [directionCount]int {
	var dists [directionCount]int
	if (hex/6)%2 == 0 {
		dists = [directionCount]int{-7, -6, 1, 6, 5, -1}
	} else {
		dists = [directionCount]int{-6, -5, 1, 7, 6, -1}
	}
	switch hex {
	case 17:
		dists[2] = 99
	case 18:
		dists[5] = 99
	case 23:
		dists[1] = 99
	}
	return dists
}

func buildNeighbours() map[int][directionCount]int {
	out := make(map[int][directionCount]int, len(boardHexes))
	for _, hex := range boardHexes {
		var row [directionCount]int
		for dir, dist := range offsets(hex) {
			if IsBoardHex(hex + dist) {
				row[dir] = hex + dist
			}
		}
		out[hex] = row
	}
	return out
}

func buildAdjacency() map[int][]int {
	out := make(map[int][]int, len(boardHexes)+len(entryAdjacency))
	for hex, row := range neighbours {
		for _, adjacent := range row {
			if adjacent != missingNeighbour {
				out[hex] = append(out[hex], adjacent)
			}
		}
	}
	for hex, adjacent := range entryAdjacency {
		out[hex] = slices.Clone(adjacent)
	}
	return out
}

// BoardHexes returns the playable hexes in ascending order.
func BoardHexes() []int {
	return slices.Clone(boardHexes)
}

// IsBoardHex reports whether hex is a playable hex.
func IsBoardHex(hex int) bool {
	_, found := slices.BinarySearch(boardHexes, hex)
	return found
}

// IsEntryHex reports whether hex is one of the off-board entry hexes.
func IsEntryHex(hex int) bool {
	return hex >= firstEntryHex && hex <= lastEntryHex
}

// Adjacent returns the hexes reachable in one step from hex. Entry hexes only
// have outgoing adjacency.
func Adjacent(hex int) ([]int, error) {
	adjacent, ok := adjacency[hex]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHex, hex)
	}
	return slices.Clone(adjacent), nil
}

// IsAdjacent reports whether b is one step away from a.
func IsAdjacent(a, b int) bool {
	return slices.Contains(adjacency[a], b)
}

// Neighbour returns the hex in the given direction from hex, counted clockwise
// from above-left.
func Neighbour(hex, direction int) (int, bool) {
	row, ok := neighbours[hex]
	if !ok {
		return 0, false
	}
	next := row[((direction%directionCount)+directionCount)%directionCount]
	return next, next != missingNeighbour
}

// RelationToHex returns the direction index of adjacent around hex, counted
// clockwise from above-left, or -1 when the two hexes do not touch.
func RelationToHex(hex, adjacent int) int {
	if !IsBoardHex(hex) || !IsBoardHex(adjacent) {
		return -1
	}
	for dir, dist := range offsets(hex) {
		if hex+dist == adjacent {
			return dir
		}
	}
	return -1
}

// Distance returns the number of steps between two board hexes.
func Distance(a, b int) int {
	ax, ay, az := cube(a)
	bx, by, bz := cube(b)
	return max(abs(ax-bx), abs(ay-by), abs(az-bz))
}

func cube(hex int) (int, int, int) {
	row, col := hex/6, hex%6
	x := col - (row-(row&1))/2
	z := row
	return x, -x - z, z
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
