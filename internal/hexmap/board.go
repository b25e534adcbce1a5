// Package hexmap joins sheet rows to spiral indexes and produces the GM and
// Player views of the board.
package hexmap

import (
	"fmt"
	"log/slog"

	"github.com/talgya/hexmapp/internal/hexgrid"
	"github.com/talgya/hexmapp/internal/sheet"
	"github.com/talgya/hexmapp/internal/terrain"
)

// Cell is one hex of the board with its sheet data and geometry.
type Cell struct {
	Index        int                `json:"index"`
	Coord        hexgrid.AxialCoord `json:"coord"`
	Center       hexgrid.Point      `json:"center"`
	Corners      hexgrid.Polygon    `json:"corners"`
	Terrain      terrain.Type       `json:"terrain"`
	TerrainLabel string             `json:"terrain_label,omitempty"`
	Visible      bool               `json:"visible"`
	Notes        string             `json:"notes,omitempty"`
	Fields       map[string]string  `json:"fields,omitempty"`
	Generated    bool               `json:"generated,omitempty"` // No sheet row; terrain is procedural
	Overflow     bool               `json:"overflow,omitempty"`  // Sheet row past the last spiral index
	Fogged       bool               `json:"fogged,omitempty"`
}

// Board is an immutable join of one sheet load against a spiral table.
type Board struct {
	Radius   int     `json:"radius"`
	HexSize  float64 `json:"hex_size"`
	Cells    []Cell  `json:"cells"`
	Overflow []Cell  `json:"overflow,omitempty"`
	Rows     int     `json:"rows"`

	table *hexgrid.Table
}

// Bind places records[i] on spiral index i. Hexes without a row get
// procedural terrain from filler (which may be nil). Rows past the table
// land on the fallback coordinate, or fail the bind on a strict table.
func Bind(table *hexgrid.Table, layout hexgrid.Layout, records []sheet.Record, filler *terrain.Filler) (*Board, error) {
	if table.Strict() && len(records) > table.Len() {
		_, err := table.Lookup(len(records) - 1)
		return nil, fmt.Errorf("sheet has %d rows for %d hexes: %w", len(records), table.Len(), err)
	}

	b := &Board{
		Radius:  table.Radius(),
		HexSize: layout.Size,
		Cells:   make([]Cell, table.Len()),
		Rows:    len(records),
		table:   table,
	}

	for i := 0; i < table.Len(); i++ {
		if i < len(records) {
			b.Cells[i] = recordCell(table, layout, i, records[i])
			continue
		}
		c := geometryCell(table, layout, i)
		c.Terrain = filler.At(c.Coord)
		c.Generated = true
		b.Cells[i] = c
	}

	if extra := len(records) - table.Len(); extra > 0 {
		slog.Warn("sheet rows beyond board radius placed at fallback coordinate",
			"rows", len(records), "hexes", table.Len(), "overflow", extra)
		for i := table.Len(); i < len(records); i++ {
			c := recordCell(table, layout, i, records[i])
			c.Overflow = true
			b.Overflow = append(b.Overflow, c)
		}
	}

	return b, nil
}

func geometryCell(table *hexgrid.Table, layout hexgrid.Layout, index int) Cell {
	coord := table.Coord(index)
	center := layout.ToPixel(coord)
	return Cell{
		Index:   index,
		Coord:   coord,
		Center:  center,
		Corners: layout.Corners(center),
	}
}

func recordCell(table *hexgrid.Table, layout hexgrid.Layout, index int, r sheet.Record) Cell {
	c := geometryCell(table, layout, index)
	c.TerrainLabel = r.Terrain()
	c.Terrain = terrain.Parse(c.TerrainLabel)
	c.Visible = r.Visible()
	c.Notes = r.Notes()
	c.Fields = r.Fields
	return c
}

// Cell returns the cell at a spiral index.
func (b *Board) Cell(index int) (Cell, bool) {
	if index < 0 || index >= len(b.Cells) {
		return Cell{}, false
	}
	return b.Cells[index], true
}

// CellAt returns the cell at a coordinate.
func (b *Board) CellAt(c hexgrid.AxialCoord) (Cell, bool) {
	i, ok := b.table.Index(c)
	if !ok {
		return Cell{}, false
	}
	return b.Cell(i)
}

// Counts returns a terrain histogram over the board.
func (b *Board) Counts() map[terrain.Type]int {
	types := make([]terrain.Type, len(b.Cells))
	for i, c := range b.Cells {
		types[i] = c.Terrain
	}
	return terrain.Counts(types)
}

// String returns a summary of the board.
func (b *Board) String() string {
	return fmt.Sprintf("Board(radius=%d, hexes=%d, rows=%d, overflow=%d)",
		b.Radius, len(b.Cells), b.Rows, len(b.Overflow))
}
