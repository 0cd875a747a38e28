package battleboard

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"github.com/louisbranch/warlord/internal/services/battle/domain/masterboard"
	"gopkg.in/yaml.v3"
)

//go:embed boards/*.yaml
var embeddedBoards embed.FS

var defaultBoards = sync.OnceValue(func() map[masterboard.Terrain]*Board {
	sub, err := fs.Sub(embeddedBoards, "boards")
	if err != nil {
		panic(fmt.Sprintf("battleboard: %v", err))
	}
	boards, err := Load(sub)
	if err != nil {
		panic(fmt.Sprintf("battleboard: %v", err))
	}
	for _, terrain := range masterboard.Terrains() {
		if _, ok := boards[terrain]; !ok {
			panic(fmt.Sprintf("battleboard: no board for terrain %s", terrain))
		}
	}
	return boards
})

// ForTerrain returns the shared board for terrain.
func ForTerrain(terrain masterboard.Terrain) (*Board, error) {
	board, ok := defaultBoards()[terrain]
	if !ok {
		return nil, fmt.Errorf("no battle board for terrain %s", terrain)
	}
	return board, nil
}

type boardFile struct {
	Terrain     string                   `yaml:"terrain"`
	Elevations  map[int][]int            `yaml:"elevations"`
	Hazards     map[string][]int         `yaml:"hazards"`
	EdgeHazards map[int]map[string][]int `yaml:"edge_hazards"`
}

// Load parses every *.yaml board definition at the root of fsys.
func Load(fsys fs.FS) (map[masterboard.Terrain]*Board, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	sort.Strings(names)

	boards := make(map[masterboard.Terrain]*Board, len(names))
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		board, err := parseBoard(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if _, exists := boards[board.terrain]; exists {
			return nil, fmt.Errorf("parse %s: duplicate board for terrain %s", name, board.terrain)
		}
		boards[board.terrain] = board
	}
	return boards, nil
}

func parseBoard(raw []byte) (*Board, error) {
	var payload boardFile
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&payload); err != nil {
		return nil, err
	}

	terrain, err := masterboard.ParseTerrain(payload.Terrain)
	if err != nil {
		return nil, err
	}
	board := &Board{
		terrain:     terrain,
		elevations:  map[int]int{},
		hazards:     map[int]Hazard{},
		edgeHazards: map[int]map[int]EdgeHazard{},
	}

	for elevation, hexes := range payload.Elevations {
		if elevation < 0 {
			return nil, fmt.Errorf("elevation %d is negative", elevation)
		}
		for _, hex := range hexes {
			if err := requireBoardHex(hex); err != nil {
				return nil, fmt.Errorf("elevation %d: %w", elevation, err)
			}
			if _, exists := board.elevations[hex]; exists {
				return nil, fmt.Errorf("hex %d has more than one elevation", hex)
			}
			board.elevations[hex] = elevation
		}
	}

	for name, hexes := range payload.Hazards {
		hazard, err := ParseHazard(name)
		if err != nil {
			return nil, err
		}
		if hazard == HazardNone {
			return nil, fmt.Errorf("hazard %q cannot be declared", name)
		}
		for _, hex := range hexes {
			if err := requireBoardHex(hex); err != nil {
				return nil, fmt.Errorf("hazard %s: %w", name, err)
			}
			if _, exists := board.hazards[hex]; exists {
				return nil, fmt.Errorf("hex %d has more than one hazard", hex)
			}
			board.hazards[hex] = hazard
		}
	}

	for upper, byName := range payload.EdgeHazards {
		if err := requireBoardHex(upper); err != nil {
			return nil, fmt.Errorf("edge hazards: %w", err)
		}
		lowers := map[int]EdgeHazard{}
		for name, hexes := range byName {
			hazard, err := ParseEdgeHazard(name)
			if err != nil {
				return nil, err
			}
			if hazard == EdgeNone {
				return nil, fmt.Errorf("edge hazard %q cannot be declared", name)
			}
			for _, lower := range hexes {
				if RelationToHex(upper, lower) < 0 {
					return nil, fmt.Errorf("edge hazard %s: hexes %d and %d are not adjacent", name, upper, lower)
				}
				if board.elevations[upper] <= board.elevations[lower] {
					return nil, fmt.Errorf("edge hazard %s: hex %d is not above hex %d", name, upper, lower)
				}
				if _, exists := lowers[lower]; exists {
					return nil, fmt.Errorf("edge %d/%d declared twice", upper, lower)
				}
				lowers[lower] = hazard
			}
		}
		board.edgeHazards[upper] = lowers
	}

	board.doubleWallHex, err = findDoubleWallHex(board.edgeHazards)
	if err != nil {
		return nil, err
	}
	return board, nil
}

func requireBoardHex(hex int) error {
	if !IsBoardHex(hex) {
		return fmt.Errorf("%w: %d", ErrUnknownHex, hex)
	}
	return nil
}
