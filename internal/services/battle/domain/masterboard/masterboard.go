package masterboard

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
)

// ErrUnknownLocation indicates a hex id that is not part of the masterboard.
var ErrUnknownLocation = errors.New("unknown masterboard location")

// MovementRule restricts when an edge may be followed.
type MovementRule int

const (
	RuleArrow MovementRule = iota
	RuleSquare
	RuleCircle
)

func (r MovementRule) String() string {
	switch r {
	case RuleArrow:
		return "arrow"
	case RuleSquare:
		return "square"
	case RuleCircle:
		return "circle"
	default:
		return fmt.Sprintf("rule(%d)", int(r))
	}
}

// HexEdge names a side of a triangular hex, counted clockwise from the id.
type HexEdge int

const (
	EdgeFirst HexEdge = iota
	EdgeSecond
	EdgeThird
)

// ParseHexEdge resolves a hex edge from "first", "second" or "third".
func ParseHexEdge(value string) (HexEdge, error) {
	switch value {
	case "first":
		return EdgeFirst, nil
	case "second":
		return EdgeSecond, nil
	case "third":
		return EdgeThird, nil
	default:
		return 0, fmt.Errorf("hex edge %q is not supported", value)
	}
}

func (e HexEdge) String() string {
	switch e {
	case EdgeFirst:
		return "first"
	case EdgeSecond:
		return "second"
	case EdgeThird:
		return "third"
	default:
		return fmt.Sprintf("edge(%d)", int(e))
	}
}

// Area groups masterboard hexes into rings.
type Area int

const (
	AreaTower Area = iota
	AreaUpper
	AreaMiddle
	AreaLower
)

// maxEdges is the number of sides on a masterboard hex.
const maxEdges = 3

// Edge is a directed connection out of a hex.
type Edge struct {
	To   int
	Rule MovementRule
	Side HexEdge
}

// Hex is one masterboard location.
type Hex struct {
	ID      int
	Terrain Terrain
	Edges   []Edge
}

// Area reports which ring of the board the hex belongs to.
func (h Hex) Area() Area {
	switch {
	case h.ID <= 42:
		return AreaMiddle
	case h.ID > 100 && h.ID <= 142:
		return AreaLower
	case h.ID >= 1000:
		return AreaUpper
	default:
		return AreaTower
	}
}

// Side reports which of the six board sectors the hex belongs to.
func (h Hex) Side() int {
	switch h.Area() {
	case AreaTower:
		return h.ID/100 - 1
	case AreaUpper:
		return h.ID/1000 - 1
	case AreaMiddle:
		return floorDiv(h.ID+2, 7) % 6
	default:
		return floorDiv(h.ID-98, 7) % 6
	}
}

// SideIndex reports the position of the hex within its sector.
func (h Hex) SideIndex() int {
	switch h.Area() {
	case AreaMiddle:
		return floorMod(h.ID+2, 7)
	case AreaLower:
		return floorMod(h.ID-98, 7)
	default:
		return 0
	}
}

// Movement returns the edges a stack may follow out of the hex. The first step
// of a move prefers square edges when the hex has any, otherwise arrows and
// circles; later steps follow arrows only.
func (h Hex) Movement(initial bool) []Edge {
	var squares, arrows, circles []Edge
	for _, edge := range h.Edges {
		switch edge.Rule {
		case RuleSquare:
			squares = append(squares, edge)
		case RuleArrow:
			arrows = append(arrows, edge)
		case RuleCircle:
			circles = append(circles, edge)
		}
	}
	if !initial {
		return arrows
	}
	if len(squares) > 0 {
		return squares
	}
	return append(arrows, circles...)
}

// Board is the immutable masterboard graph.
type Board struct {
	hexes map[int]Hex
}

var defaultBoard = sync.OnceValue(build)

// Default returns the process-wide masterboard.
func Default() *Board {
	return defaultBoard()
}

// Hex returns the hex with the given id.
func (b *Board) Hex(id int) (Hex, error) {
	hex, ok := b.hexes[id]
	if !ok {
		return Hex{}, fmt.Errorf("%w: %d", ErrUnknownLocation, id)
	}
	hex.Edges = slices.Clone(hex.Edges)
	return hex, nil
}

// Edges returns the directed edges out of a hex.
func (b *Board) Edges(id int) ([]Edge, error) {
	hex, err := b.Hex(id)
	if err != nil {
		return nil, err
	}
	return hex.Edges, nil
}

// Movement returns the legal edges out of a hex for a first or later step.
func (b *Board) Movement(id int, initial bool) ([]Edge, error) {
	hex, err := b.Hex(id)
	if err != nil {
		return nil, err
	}
	return hex.Movement(initial), nil
}

// Terrain returns the terrain of a hex.
func (b *Board) Terrain(id int) (Terrain, error) {
	hex, ok := b.hexes[id]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownLocation, id)
	}
	return hex.Terrain, nil
}

// HexIDs returns every hex id in ascending order.
func (b *Board) HexIDs() []int {
	ids := make([]int, 0, len(b.hexes))
	for id := range b.hexes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Paths enumerates every path of exactly roll steps starting at from. The
// first step follows Movement(true) and later steps Movement(false); a path
// never steps straight back onto the hex it just left. Returned paths exclude
// the starting hex.
func (b *Board) Paths(from, roll int) ([][]int, error) {
	start, err := b.Hex(from)
	if err != nil {
		return nil, err
	}
	if roll < 1 || roll > 6 {
		return nil, fmt.Errorf("roll must be between 1 and 6, got %d", roll)
	}

	type pending struct {
		path []int
		prev int
	}
	stack := make([]pending, 0, maxEdges)
	for _, edge := range start.Movement(true) {
		stack = append(stack, pending{path: []int{edge.To}, prev: from})
	}

	var paths [][]int
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(next.path) == roll {
			paths = append(paths, next.path)
			continue
		}
		current := next.path[len(next.path)-1]
		for _, edge := range b.hexes[current].Movement(false) {
			if edge.To == next.prev {
				continue
			}
			stack = append(stack, pending{
				path: append(slices.Clone(next.path), edge.To),
				prev: current,
			})
		}
	}
	sort.Slice(paths, func(i, j int) bool {
		return slices.Compare(paths[i], paths[j]) < 0
	})
	return paths, nil
}

type builder struct {
	hexes map[int]*Hex
}

func (b *builder) add(id int, terrain Terrain) {
	if _, exists := b.hexes[id]; exists {
		panic(fmt.Sprintf("masterboard: hex %d declared twice", id))
	}
	b.hexes[id] = &Hex{ID: id, Terrain: terrain}
}

func (b *builder) connect(from, to int, side HexEdge, rule MovementRule) {
	hex, ok := b.hexes[from]
	if !ok {
		panic(fmt.Sprintf("masterboard: edge from undeclared hex %d", from))
	}
	if _, ok := b.hexes[to]; !ok {
		panic(fmt.Sprintf("masterboard: edge from %d to undeclared hex %d", from, to))
	}
	if len(hex.Edges) >= maxEdges {
		panic(fmt.Sprintf("masterboard: hex %d already has %d edges", from, maxEdges))
	}
	hex.Edges = append(hex.Edges, Edge{To: to, Rule: rule, Side: side})
}

func build() *Board {
	b := &builder{hexes: map[int]*Hex{}}

	for id := 100; id <= 600; id += 100 {
		b.add(id, TerrainTower)
	}
	terrain := TerrainMountains
	for id := 1000; id <= 6000; id += 1000 {
		b.add(id, terrain)
		terrain = terrain.pair()
	}

	middleOrdering := []Terrain{
		TerrainPlains, TerrainWoods, TerrainBrush, TerrainHills,
		TerrainJungle, TerrainPlains, TerrainDesert,
	}
	for id := 1; id <= 42; id++ {
		b.add(id, middleOrdering[(id-1)%7].maybePair((id-1)/7))
	}

	// Slots 3 and 6 of each lower sector rotate through a fixed triple.
	lowerOrdering := map[int]Terrain{
		0: TerrainPlains, 1: TerrainBrush, 2: TerrainMarsh,
		4: TerrainPlains, 5: TerrainBrush,
	}
	lowerTriples := []Terrain{TerrainJungle, TerrainSwamp, TerrainDesert}
	for id := 101; id <= 142; id++ {
		local := (id - 101) % 7
		sector := (id - 101) / 7
		if terrain, ok := lowerOrdering[local]; ok {
			b.add(id, terrain.maybePair(sector))
			continue
		}
		if local == 6 {
			sector += 2
		}
		b.add(id, lowerTriples[sector%3])
	}

	for side := 0; side <= 5; side++ {
		tower := (side + 1) * 100
		b.connect(tower, 101+side*7, EdgeSecond, RuleArrow)
		b.connect(tower, 3+side*7, EdgeFirst, RuleArrow)
		b.connect(tower, (41+side*7)%42, EdgeThird, RuleArrow)

		upper := (side + 1) * 1000
		b.connect(upper, (floorMod(side-1, 6)+1)*1000, EdgeFirst, RuleArrow)
		b.connect(upper, (floorMod(side+1, 6)+1)*1000, EdgeThird, RuleArrow)
		b.connect(upper, side*7+1, EdgeSecond, RuleSquare)
	}

	middleSides := []HexEdge{EdgeThird, EdgeSecond, EdgeThird, EdgeFirst, EdgeFirst, EdgeSecond, EdgeFirst}
	lowerSides := []HexEdge{EdgeThird, EdgeFirst, EdgeThird, EdgeFirst, EdgeFirst, EdgeThird, EdgeFirst}
	for id := 1; id <= 42; id++ {
		local := (id - 1) % 7
		b.connect(id, id%42+1, middleSides[local], RuleArrow)
		b.connect(id+100, id%42+101, lowerSides[local], RuleArrow)
	}

	for sector := 1; sector <= 6; sector++ {
		base := (sector-1)*7 + 1
		b.connect(base, sector*1000, EdgeSecond, RuleCircle)
		b.connect(base+1, (base+1)%42+5, EdgeFirst, RuleCircle)
		b.connect(base+2, sector*100, EdgeFirst, RuleCircle)
		b.connect(base+3, base+3+99, EdgeSecond, RuleSquare)
		b.connect(base+4, base+4+101, EdgeSecond, RuleSquare)
		b.connect(base+5, (sector%6+1)*100, EdgeThird, RuleCircle)
		b.connect(base+6, base+6-5, EdgeThird, RuleCircle)

		lower := (sector-1)*7 + 101
		b.connect(lower, sector*100, EdgeSecond, RuleCircle)
		b.connect(lower+2, lower+2-99, EdgeSecond, RuleCircle)
		b.connect(lower+5, lower+5-101, EdgeSecond, RuleCircle)
	}

	board := &Board{hexes: make(map[int]Hex, len(b.hexes))}
	for id, hex := range b.hexes {
		board.hexes[id] = *hex
	}
	return board
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return ((a % b) + b) % b
}
