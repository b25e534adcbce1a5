package hexgrid

import "sync"

// DefaultMaxRadius is the board radius used by the campaign map.
const DefaultMaxRadius = 22

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the shared table for DefaultMaxRadius.
// Built on first use; later callers never observe a partial table.
func Default() *Table {
	defaultOnce.Do(func() {
		// DefaultMaxRadius is non-negative, NewTable cannot fail.
		defaultTable, _ = NewTable(DefaultMaxRadius)
	})
	return defaultTable
}

// AxialFromIndex looks up index in the default table, falling back to the origin.
func AxialFromIndex(index int) AxialCoord {
	return Default().Coord(index)
}

// AxialToPixel projects c with the default layout.
func AxialToPixel(c AxialCoord) Point {
	return DefaultLayout.ToPixel(c)
}

// HexagonPoints returns the default-size corners around (cx, cy).
func HexagonPoints(cx, cy float64) Polygon {
	return DefaultLayout.Corners(Point{X: cx, Y: cy})
}
