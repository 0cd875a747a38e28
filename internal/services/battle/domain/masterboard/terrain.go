package masterboard

import (
	"fmt"
	"strings"
)

// Terrain identifies the landscape of a masterboard hex and selects the battle
// board used for encounters fought there.
type Terrain int

const (
	TerrainPlains Terrain = iota
	TerrainMarsh
	TerrainWoods
	TerrainHills
	TerrainDesert
	TerrainSwamp
	TerrainMountains
	TerrainTundra
	TerrainBrush
	TerrainJungle
	TerrainTower
)

var terrainNames = map[Terrain]string{
	TerrainPlains:    "plains",
	TerrainMarsh:     "marsh",
	TerrainWoods:     "woods",
	TerrainHills:     "hills",
	TerrainDesert:    "desert",
	TerrainSwamp:     "swamp",
	TerrainMountains: "mountains",
	TerrainTundra:    "tundra",
	TerrainBrush:     "brush",
	TerrainJungle:    "jungle",
	TerrainTower:     "tower",
}

// Terrains lists every terrain in declaration order.
func Terrains() []Terrain {
	out := make([]Terrain, 0, len(terrainNames))
	for t := TerrainPlains; t <= TerrainTower; t++ {
		out = append(out, t)
	}
	return out
}

func (t Terrain) String() string {
	if name, ok := terrainNames[t]; ok {
		return name
	}
	return fmt.Sprintf("terrain(%d)", int(t))
}

// ParseTerrain resolves a terrain from its lowercase name.
func ParseTerrain(value string) (Terrain, error) {
	needle := strings.ToLower(strings.TrimSpace(value))
	for terrain, name := range terrainNames {
		if name == needle {
			return terrain, nil
		}
	}
	return 0, fmt.Errorf("terrain %q is not supported", value)
}

// pair returns the terrain sharing a masterboard slot with t. Brush, jungle and
// tower have no pair.
func (t Terrain) pair() Terrain {
	if t >= TerrainBrush {
		return t
	}
	return t ^ 1
}

// maybePair returns the paired terrain when n is odd.
func (t Terrain) maybePair(n int) Terrain {
	if n%2 == 1 {
		return t.pair()
	}
	return t
}
