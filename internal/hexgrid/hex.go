// Package hexgrid provides the hex grid geometry and spiral indexing used to
// place spreadsheet rows on the campaign board.
// Uses axial coordinates (q, r) with flat-top hexes.
//
// Sheet rows carry no coordinates. Row N of the published sheet is joined to
// spiral index N, so the spiral order is a contract with the data source:
// reordering either side silently moves every note on the map.
package hexgrid

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// AxialCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type AxialCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// Origin is the center hex, spiral index 0.
var Origin = AxialCoord{}

// S returns the implicit third cube coordinate.
func (c AxialCoord) S() int {
	return -c.Q - c.R
}

func (c AxialCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Q, c.R)
}

// NeighborDirections defines the six neighbor offsets in axial coordinates.
var NeighborDirections = [6]AxialCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (c AxialCoord) Neighbors() [6]AxialCoord {
	var result [6]AxialCoord
	for i, dir := range NeighborDirections {
		result[i] = AxialCoord{Q: c.Q + dir.Q, R: c.R + dir.R}
	}
	return result
}

// Distance returns the hex distance between two coordinates.
// The cube deltas always sum to an even number, so the halving is exact.
func Distance(a, b AxialCoord) int {
	dq := a.Q - b.Q
	dr := a.R - b.R
	dy := -dq - dr
	return (abs(dq) + abs(dy) + abs(dr)) / 2
}

// DistanceFromOrigin returns the ring a coordinate sits on.
func DistanceFromOrigin(c AxialCoord) int {
	return Distance(c, Origin)
}

// TotalHexCount returns the number of hexes within radius of the origin.
func TotalHexCount(radius int) int {
	return 1 + 3*radius*(radius+1)
}

func abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}
