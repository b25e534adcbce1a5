package hexgrid

import (
	"errors"
	"fmt"
	"sort"
)

// ErrIndexOutOfRange is returned by strict lookups past the configured radius.
var ErrIndexOutOfRange = errors.New("spiral index out of range")

// referenceLayout fixes the tie-break angles so the order never depends on
// the size a board happens to be rendered at.
var referenceLayout = Layout{Size: DefaultHexSize}

// Table maps spiral indexes to coordinates for one radius.
// It is immutable after NewTable returns and safe for concurrent readers.
type Table struct {
	radius int
	strict bool
	coords []AxialCoord
	index  map[AxialCoord]int
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithStrictBounds marks the table strict. Binders then reject rows past the
// last index instead of stacking them on the origin. Coord keeps its
// fallback either way; Lookup always reports the error.
func WithStrictBounds() TableOption {
	return func(t *Table) { t.strict = true }
}

// NewTable builds the spiral table for maxRadius.
func NewTable(maxRadius int, opts ...TableOption) (*Table, error) {
	if maxRadius < 0 {
		return nil, fmt.Errorf("negative radius %d", maxRadius)
	}
	t := &Table{radius: maxRadius}
	for _, opt := range opts {
		opt(t)
	}

	t.coords = BuildSpiral(maxRadius)
	t.index = make(map[AxialCoord]int, len(t.coords))
	for i, c := range t.coords {
		t.index[c] = i
	}
	return t, nil
}

// BuildSpiral returns every coordinate within maxRadius, ordered ring by ring
// from the origin and clockwise from north within each ring.
func BuildSpiral(maxRadius int) []AxialCoord {
	if maxRadius < 0 {
		return nil
	}

	type entry struct {
		coord AxialCoord
		ring  int
		angle float64
	}

	all := make([]entry, 0, TotalHexCount(maxRadius))
	for q := -maxRadius; q <= maxRadius; q++ {
		for r := -maxRadius; r <= maxRadius; r++ {
			c := AxialCoord{Q: q, R: r}
			d := DistanceFromOrigin(c)
			if d > maxRadius {
				continue
			}
			all = append(all, entry{
				coord: c,
				ring:  d,
				angle: northAngle(referenceLayout.ToPixel(c)),
			})
		}
	}

	// Distinct hexes on one ring never share a bearing, so the order is total.
	sort.Slice(all, func(i, j int) bool {
		if all[i].ring != all[j].ring {
			return all[i].ring < all[j].ring
		}
		return all[i].angle < all[j].angle
	})

	coords := make([]AxialCoord, len(all))
	for i, e := range all {
		coords[i] = e.coord
	}
	return coords
}

// Radius returns the radius the table was built for.
func (t *Table) Radius() int {
	return t.radius
}

// Len returns the number of hexes in the table.
func (t *Table) Len() int {
	return len(t.coords)
}

// Strict reports whether the table was built WithStrictBounds.
func (t *Table) Strict() bool {
	return t.strict
}

// Coord returns the coordinate at a spiral index.
// Indexes outside [0, Len()) fall back to the origin.
func (t *Table) Coord(index int) AxialCoord {
	if index < 0 || index >= len(t.coords) {
		return Origin
	}
	return t.coords[index]
}

// Lookup is the strict form of Coord.
func (t *Table) Lookup(index int) (AxialCoord, error) {
	if index < 0 || index >= len(t.coords) {
		return Origin, fmt.Errorf("index %d (table holds %d): %w", index, len(t.coords), ErrIndexOutOfRange)
	}
	return t.coords[index], nil
}

// Index returns the spiral index of a coordinate, or false if it lies
// outside the table radius.
func (t *Table) Index(c AxialCoord) (int, bool) {
	i, ok := t.index[c]
	return i, ok
}

// Contains reports whether the coordinate is within the table radius.
func (t *Table) Contains(c AxialCoord) bool {
	return DistanceFromOrigin(c) <= t.radius
}

// Coords returns a copy of the table in spiral order.
func (t *Table) Coords() []AxialCoord {
	out := make([]AxialCoord, len(t.coords))
	copy(out, t.coords)
	return out
}

// Ring returns the contiguous block of coordinates on ring k.
// Returns nil for rings outside the table.
func (t *Table) Ring(k int) []AxialCoord {
	if k < 0 || k > t.radius {
		return nil
	}
	start := 0
	if k > 0 {
		start = TotalHexCount(k - 1)
	}
	end := TotalHexCount(k)
	out := make([]AxialCoord, end-start)
	copy(out, t.coords[start:end])
	return out
}

// String returns a summary of the table.
func (t *Table) String() string {
	return fmt.Sprintf("Table(radius=%d, hexes=%d, strict=%t)", t.radius, len(t.coords), t.strict)
}
