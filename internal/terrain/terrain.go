// Package terrain names the terrain kinds a board hex can carry and fills
// uncharted hexes procedurally.
package terrain

import "strings"

// Type is a terrain kind.
type Type uint8

const (
	Unknown  Type = iota // No data, or a label the board does not recognize
	Plains               // Open grassland and farmland
	Forest               // Woods, jungle
	Mountain             // Peaks and hills
	Coast                // Shoreline
	River                // Rivers, fords
	Desert               // Sand and badlands
	Swamp                // Marsh, bog, fen
	Tundra               // Snow and ice
	Ocean                // Open water
)

var names = [...]string{
	Unknown:  "Unknown",
	Plains:   "Plains",
	Forest:   "Forest",
	Mountain: "Mountain",
	Coast:    "Coast",
	River:    "River",
	Desert:   "Desert",
	Swamp:    "Swamp",
	Tundra:   "Tundra",
	Ocean:    "Ocean",
}

// Sheet authors use many words for the same thing.
var aliases = map[string]Type{
	"plains":    Plains,
	"plain":     Plains,
	"grassland": Plains,
	"grass":     Plains,
	"farmland":  Plains,
	"forest":    Forest,
	"woods":     Forest,
	"jungle":    Forest,
	"mountain":  Mountain,
	"mountains": Mountain,
	"hills":     Mountain,
	"hill":      Mountain,
	"coast":     Coast,
	"beach":     Coast,
	"shore":     Coast,
	"river":     River,
	"lake":      River,
	"desert":    Desert,
	"badlands":  Desert,
	"swamp":     Swamp,
	"marsh":     Swamp,
	"bog":       Swamp,
	"tundra":    Tundra,
	"snow":      Tundra,
	"ice":       Tundra,
	"ocean":     Ocean,
	"sea":       Ocean,
	"water":     Ocean,
}

// Parse maps a free-text sheet label to a Type. Unrecognized labels are Unknown.
func Parse(label string) Type {
	return aliases[strings.ToLower(strings.TrimSpace(label))]
}

// Name returns a human-readable name for a terrain type.
func (t Type) Name() string {
	if int(t) < len(names) {
		return names[t]
	}
	return names[Unknown]
}

func (t Type) String() string {
	return t.Name()
}

// MarshalText encodes the type by name.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(t.Name())), nil
}

// UnmarshalText decodes a type by name or alias.
func (t *Type) UnmarshalText(b []byte) error {
	*t = Parse(string(b))
	return nil
}

// Counts returns a histogram of terrain types.
func Counts(types []Type) map[Type]int {
	counts := make(map[Type]int)
	for _, t := range types {
		counts[t]++
	}
	return counts
}
