package hexmap

import "github.com/talgya/hexmapp/internal/terrain"

// ViewMode selects who the board is rendered for.
type ViewMode string

const (
	PlayerView ViewMode = "player"
	GMView     ViewMode = "gm"
)

// View is the board as one audience sees it.
type View struct {
	Mode     ViewMode `json:"mode"`
	Radius   int      `json:"radius"`
	HexSize  float64  `json:"hex_size"`
	Cells    []Cell   `json:"cells"`
	Overflow []Cell   `json:"overflow,omitempty"`
}

// View renders the board for mode. Players always get fog and never see
// the contents of hidden or generated hexes. The GM sees everything; with
// showFog set, hidden hexes are marked so the GM can preview the player map.
func (b *Board) View(mode ViewMode, showFog bool) View {
	v := View{
		Mode:    mode,
		Radius:  b.Radius,
		HexSize: b.HexSize,
		Cells:   make([]Cell, len(b.Cells)),
	}
	for i, c := range b.Cells {
		v.Cells[i] = viewCell(c, mode, showFog)
	}
	if mode == GMView {
		v.Overflow = b.Overflow
	}
	return v
}

// ViewCell applies the same rules as View to a single cell.
func ViewCell(c Cell, mode ViewMode, showFog bool) Cell {
	return viewCell(c, mode, showFog)
}

func viewCell(c Cell, mode ViewMode, showFog bool) Cell {
	hidden := !c.Visible || c.Generated
	if mode != GMView {
		if !hidden {
			return c
		}
		return Cell{
			Index:   c.Index,
			Coord:   c.Coord,
			Center:  c.Center,
			Corners: c.Corners,
			Terrain: terrain.Unknown,
			Fogged:  true,
		}
	}
	c.Fogged = showFog && hidden
	return c
}
