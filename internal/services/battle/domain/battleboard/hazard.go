package battleboard

import "fmt"

// Hazard is a terrain feature occupying a tactical hex.
type Hazard int

const (
	HazardNone Hazard = iota
	HazardBog
	HazardBramble
	HazardDrift
	HazardSand
	HazardTree
	HazardVolcano
)

var hazardNames = map[Hazard]string{
	HazardNone:    "none",
	HazardBog:     "bog",
	HazardBramble: "bramble",
	HazardDrift:   "drift",
	HazardSand:    "sand",
	HazardTree:    "tree",
	HazardVolcano: "volcano",
}

func (h Hazard) String() string {
	if name, ok := hazardNames[h]; ok {
		return name
	}
	return fmt.Sprintf("hazard(%d)", int(h))
}

// ParseHazard resolves a hazard from its lowercase name.
func ParseHazard(value string) (Hazard, error) {
	for hazard, name := range hazardNames {
		if name == value {
			return hazard, nil
		}
	}
	return HazardNone, fmt.Errorf("hazard %q is not supported", value)
}

// EdgeHazard is a directional feature on the boundary between two hexes.
type EdgeHazard int

const (
	EdgeNone EdgeHazard = iota
	EdgeCliff
	EdgeDune
	EdgeSlope
	EdgeWall
)

var edgeHazardNames = map[EdgeHazard]string{
	EdgeNone:  "none",
	EdgeCliff: "cliff",
	EdgeDune:  "dune",
	EdgeSlope: "slope",
	EdgeWall:  "wall",
}

func (h EdgeHazard) String() string {
	if name, ok := edgeHazardNames[h]; ok {
		return name
	}
	return fmt.Sprintf("edge_hazard(%d)", int(h))
}

// ParseEdgeHazard resolves an edge hazard from its lowercase name.
func ParseEdgeHazard(value string) (EdgeHazard, error) {
	for hazard, name := range edgeHazardNames {
		if name == value {
			return hazard, nil
		}
	}
	return EdgeNone, fmt.Errorf("edge hazard %q is not supported", value)
}
